package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
)

type MobileMoney struct {
	Phone    string `json:"phone"`
	Provider string `json:"provider"`
}

func (m MobileMoney) validate() (payment.Provider, error) {
	provider, providerErr := payment.ParseProvider(m.Provider)
	return provider, errors.Join(payment.ValidatePhone(m.Phone), providerErr)
}

// PayByMobileMoney asks the provider to charge the buyer's phone, submits
// the order as pending and starts polling for confirmation. It returns the
// pending attempt; the outcome arrives through Await or Subscribe.
func (d *Dispatcher) PayByMobileMoney(ctx context.Context, buyerID string, req MobileMoney) (*payment.Attempt, error) {
	provider, err := req.validate()
	if err != nil {
		return nil, err
	}
	phone := strings.TrimSpace(req.Phone)
	draft, err := d.loadDraft(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	attempt, err := d.attempts.Initiate(ctx, payment.Initiation{
		BuyerID:  buyerID,
		DraftID:  draft.ID,
		Method:   payment.MethodMobileMoney,
		Provider: provider,
		Amount:   draft.Total,
		Phone:    phone,
	})
	if err != nil {
		return nil, err
	}
	d.publish(attempt)

	init, err := d.gateway.InitiateMobileMoney(ctx, payment.MobileMoneyRequest{
		Phone:    phone,
		Amount:   draft.Total,
		Provider: provider,
	})
	if err == nil && !init.Success {
		err = fmt.Errorf("%w: %s", ErrInitiationDenied, init.Message)
	}
	if err != nil {
		return d.submissionFailed(ctx, attempt, payment.ReasonInitiationFailed, err)
	}

	attempt, err = d.attempts.MarkPending(ctx, attempt.ID, init.TransactionID)
	if err != nil {
		return nil, err
	}
	d.publish(attempt)

	info := order.PaymentInfo{
		ID:          init.TransactionID,
		Status:      string(payment.StatusPending),
		Type:        provider.PaymentType(),
		PhoneNumber: phone,
	}
	if err := d.gateway.CreateOrder(ctx, order.NewSubmission(draft, info)); err != nil {
		return d.submissionFailed(ctx, attempt, payment.ReasonSubmissionFailed, err)
	}

	attemptID, txID := attempt.ID, init.TransactionID
	started := d.tasks.start(attemptID, func(taskCtx context.Context) {
		d.pollConfirmation(taskCtx, buyerID, attemptID, txID, draft, provider.PaymentType())
	})
	if !started {
		d.logger.Warn().Str("attempt_id", attemptID).Msg("dispatcher is shutting down; confirmation polling not started")
		return attempt, nil
	}
	d.logger.Info().Str("attempt_id", attemptID).Str("transaction_id", txID).Str("provider", string(provider)).Msg("mobile money payment pending")
	return attempt, nil
}

func (d *Dispatcher) submissionFailed(ctx context.Context, attempt *payment.Attempt, reason payment.FailureReason, cause error) (*payment.Attempt, error) {
	if failed := d.fail(ctx, attempt.ID, reason, cause); failed != nil {
		attempt = failed
	}
	return attempt, &PaymentSubmissionError{AttemptID: attempt.ID, Err: cause}
}

// pollConfirmation checks the provider status right away and then every
// PollInterval until a terminal status, MaxPolls checks, or cancellation.
// Transport errors count as a check.
func (d *Dispatcher) pollConfirmation(ctx context.Context, buyerID, attemptID, transactionID string, draft order.Draft, paymentType string) {
	logger := d.logger.With().Str("attempt_id", attemptID).Str("transaction_id", transactionID).Logger()
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for polls := 1; ; polls++ {
		status, err := d.gateway.MobileMoneyStatus(ctx, transactionID)
		if ctx.Err() != nil {
			logger.Info().Msg("confirmation polling stopped")
			return
		}

		switch {
		case err != nil:
			logger.Warn().Err(err).Int("poll", polls).Msg("mobile money status check failed")
		case status == payment.ProviderSuccess:
			if _, err := d.complete(ctx, buyerID, attemptID, transactionID, draft, paymentType); err != nil {
				logger.Error().Err(err).Msg("failed to record mobile money success")
			}
			return
		case status == payment.ProviderFailed:
			d.fail(ctx, attemptID, payment.ReasonProviderDeclined, nil)
			return
		default:
			logger.Debug().Int("poll", polls).Msg("mobile money payment still pending")
		}

		if polls >= d.cfg.MaxPolls {
			d.fail(ctx, attemptID, payment.ReasonConfirmationTimedOut, fmt.Errorf("no confirmation after %d checks", polls))
			return
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("confirmation polling stopped")
			return
		case <-ticker.C:
		}
	}
}
