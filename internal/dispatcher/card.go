package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
)

// PayByCard validates the card, waits the processing delay and submits the
// paid order. A failed submission leaves the attempt submitting; the buyer
// retries with a new attempt.
func (d *Dispatcher) PayByCard(ctx context.Context, buyerID string, card payment.Card) (*payment.Attempt, error) {
	if err := card.Validate(); err != nil {
		return nil, err
	}
	draft, err := d.loadDraft(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	cardType := payment.DetectCardType(card.Number)
	attempt, err := d.attempts.Initiate(ctx, payment.Initiation{
		BuyerID:  buyerID,
		DraftID:  draft.ID,
		Method:   payment.MethodCard,
		Amount:   draft.Total,
		CardType: cardType,
		Last4:    card.Last4(),
	})
	if err != nil {
		return nil, err
	}
	d.publish(attempt)
	logger := d.logger.With().Str("attempt_id", attempt.ID).Str("buyer_id", buyerID).Logger()

	if err := sleep(ctx, d.cfg.CardProcessingDelay); err != nil {
		return attempt, &PaymentSubmissionError{AttemptID: attempt.ID, Err: err}
	}

	info := order.PaymentInfo{
		ID:       fmt.Sprintf("CARD_%d", d.now().UnixMilli()),
		Status:   string(payment.StatusSuccess),
		Type:     payment.CardPaymentType,
		Last4:    attempt.Last4,
		CardType: cardType,
	}
	if err := d.gateway.CreateOrder(ctx, order.NewSubmission(draft, info)); err != nil {
		logger.Warn().Err(err).Msg("card order submission failed")
		return attempt, &PaymentSubmissionError{AttemptID: attempt.ID, Err: err}
	}
	return d.complete(ctx, buyerID, attempt.ID, info.ID, draft, payment.CardPaymentType)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
