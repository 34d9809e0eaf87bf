package notification

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/example/ec-storefront/internal/email"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/rs/zerolog"
)

// ReceiptSender delivers a payment receipt to the buyer.
type ReceiptSender interface {
	SendPaymentReceipt(to, transactionID string, receipt payment.Receipt) error
}

// Handler processes events for sending notifications
type Handler struct {
	mailer ReceiptSender
	logger zerolog.Logger
}

func NewHandler(mailer ReceiptSender, logger zerolog.Logger) *Handler {
	return &Handler{
		mailer: mailer,
		logger: logger.With().Str("component", "notifier").Logger(),
	}
}

// HandleEvent processes an event from Kafka. Only successful payments send
// mail; other events are ignored.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var event store.Event
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error().Err(err).Bytes("key", key).Msg("unmarshal event")
		return err
	}

	if event.EventType == payment.EventPaymentSucceeded {
		return h.handlePaymentSucceeded(event)
	}
	return nil
}

func (h *Handler) handlePaymentSucceeded(event store.Event) error {
	var e payment.PaymentSucceeded
	if err := json.Unmarshal(event.Data, &e); err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("unmarshal PaymentSucceeded")
		return err
	}

	logger := h.logger.With().Str("attempt_id", e.AttemptID).Str("buyer_id", e.BuyerID).Logger()
	logger.Info().Str("draft_id", e.Receipt.DraftID).Msg("processing PaymentSucceeded")

	err := h.mailer.SendPaymentReceipt(e.Receipt.BuyerEmail, e.TransactionID, e.Receipt)
	if errors.Is(err, email.ErrNoRecipient) {
		// nothing to retry without an address
		logger.Warn().Msg("buyer has no email address, receipt skipped")
		return nil
	}
	if err != nil {
		logger.Error().Err(err).Msg("send receipt")
		return err
	}

	logger.Info().Str("to", e.Receipt.BuyerEmail).Msg("receipt email sent")
	return nil
}
