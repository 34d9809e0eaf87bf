package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/rs/zerolog"
)

var (
	ErrNoDraft          = errors.New("no order draft to pay for")
	ErrInitiationDenied = errors.New("mobile money initiation was not accepted")
)

// PaymentSubmissionError means the payment could not be handed to the shop
// backend or the provider. AttemptID names the attempt it happened on.
type PaymentSubmissionError struct {
	AttemptID string
	Err       error
}

func (e *PaymentSubmissionError) Error() string {
	return fmt.Sprintf("payment submission failed for attempt %s: %v", e.AttemptID, e.Err)
}

func (e *PaymentSubmissionError) Unwrap() error { return e.Err }

// Gateway is the remote shop backend.
type Gateway interface {
	CreateOrder(ctx context.Context, sub order.Submission) error
	InitiateMobileMoney(ctx context.Context, req payment.MobileMoneyRequest) (payment.MobileMoneyInitiation, error)
	MobileMoneyStatus(ctx context.Context, transactionID string) (payment.ProviderStatus, error)
}

type DraftSlot interface {
	Read(ctx context.Context, buyerID string) (order.Draft, bool, error)
	Clear(ctx context.Context, buyerID string) error
}

// CheckoutCleaner empties the buyer's cart and coupon once an order is paid.
type CheckoutCleaner interface {
	ClearCheckout(ctx context.Context, buyerID string) error
}

type Config struct {
	CardProcessingDelay time.Duration
	PollInterval        time.Duration
	MaxPolls            int
}

func DefaultConfig() Config {
	return Config{
		CardProcessingDelay: 2 * time.Second,
		PollInterval:        5 * time.Second,
		MaxPolls:            60,
	}
}

// Dispatcher runs card and mobile money payments for order drafts.
type Dispatcher struct {
	attempts *payment.Service
	gateway  Gateway
	drafts   DraftSlot
	checkout CheckoutCleaner
	cfg      Config
	logger   zerolog.Logger

	tasks   *taskGroup
	updates *broadcaster
	now     func() time.Time
}

func New(attempts *payment.Service, gateway Gateway, drafts DraftSlot, checkout CheckoutCleaner, cfg Config, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		attempts: attempts,
		gateway:  gateway,
		drafts:   drafts,
		checkout: checkout,
		cfg:      cfg,
		logger:   logger.With().Str("component", "payment-dispatcher").Logger(),
		tasks:    newTaskGroup(),
		updates:  newBroadcaster(),
		now:      time.Now,
	}
}

// Attempt loads an attempt by replaying its events.
func (d *Dispatcher) Attempt(ctx context.Context, attemptID string) (*payment.Attempt, error) {
	return d.attempts.Get(ctx, attemptID)
}

// Await blocks until the attempt's confirmation task ends or ctx is done,
// then returns the attempt as stored.
func (d *Dispatcher) Await(ctx context.Context, attemptID string) (*payment.Attempt, error) {
	if done, ok := d.tasks.done(attemptID); ok {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return d.attempts.Get(ctx, attemptID)
}

// Subscribe streams snapshots of the attempt as it changes. The returned
// func must be called to stop receiving.
func (d *Dispatcher) Subscribe(attemptID string) (<-chan payment.Attempt, func()) {
	return d.updates.subscribe(attemptID)
}

// Cancel stops confirming the attempt. The attempt stays pending.
func (d *Dispatcher) Cancel(attemptID string) bool {
	cancelled := d.tasks.cancel(attemptID)
	if cancelled {
		d.logger.Info().Str("attempt_id", attemptID).Msg("confirmation polling cancelled")
	}
	return cancelled
}

// Close cancels every running confirmation task and waits for them.
func (d *Dispatcher) Close() {
	d.tasks.close()
}

func (d *Dispatcher) loadDraft(ctx context.Context, buyerID string) (order.Draft, error) {
	draft, found, err := d.drafts.Read(ctx, buyerID)
	if err != nil {
		return order.Draft{}, fmt.Errorf("read draft: %w", err)
	}
	if !found {
		return order.Draft{}, ErrNoDraft
	}
	return draft, nil
}

// complete records success and clears the buyer's checkout state. Cleanup
// failures are logged; the payment itself already went through.
func (d *Dispatcher) complete(ctx context.Context, buyerID, attemptID, transactionID string, draft order.Draft, paymentType string) (*payment.Attempt, error) {
	attempt, err := d.attempts.Succeed(ctx, attemptID, transactionID, payment.NewReceipt(draft, paymentType))
	if err != nil {
		return nil, err
	}
	d.publish(attempt)

	if err := d.drafts.Clear(ctx, buyerID); err != nil {
		d.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("failed to clear order draft")
	}
	if err := d.checkout.ClearCheckout(ctx, buyerID); err != nil {
		d.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("failed to clear cart")
	}
	d.logger.Info().
		Str("attempt_id", attemptID).
		Str("transaction_id", transactionID).
		Str("amount", attempt.Amount.StringFixed(2)).
		Msg("payment succeeded")
	return attempt, nil
}

func (d *Dispatcher) fail(ctx context.Context, attemptID string, reason payment.FailureReason, cause error) *payment.Attempt {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	attempt, err := d.attempts.Fail(ctx, attemptID, reason, detail)
	if err != nil {
		d.logger.Error().Err(err).Str("attempt_id", attemptID).Msg("failed to record payment failure")
		return nil
	}
	d.publish(attempt)
	d.logger.Warn().Str("attempt_id", attemptID).Str("reason", string(reason)).Str("detail", detail).Msg("payment failed")
	return attempt
}

func (d *Dispatcher) publish(attempt *payment.Attempt) {
	if attempt != nil {
		d.updates.publish(*attempt)
	}
}
