package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/domain/aggregate"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateType = "PaymentAttempt"

type Method string

const (
	MethodCard        Method = "card"
	MethodMobileMoney Method = "mobile_money"
)

type Status string

const (
	StatusSubmitting Status = "submitting"
	StatusPending    Status = "pending"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// FailureReason classifies why an attempt failed.
type FailureReason string

const (
	ReasonInitiationFailed     FailureReason = "initiation_failed"
	ReasonSubmissionFailed     FailureReason = "submission_failed"
	ReasonProviderDeclined     FailureReason = "provider_declined"
	ReasonConfirmationTimedOut FailureReason = "confirmation_timeout"
)

var (
	ErrAttemptNotFound     = errors.New("payment attempt not found")
	ErrInvalidTransition   = errors.New("invalid payment status transition")
	ErrPaymentFailed       = errors.New("payment failed")
	ErrConfirmationTimeout = errors.New("payment confirmation timed out")
	ErrSubmissionFailed    = errors.New("payment submission failed")
)

// validTransitions defines allowed state transitions
var validTransitions = map[Status][]Status{
	StatusSubmitting: {StatusPending, StatusSuccess, StatusFailed},
	StatusPending:    {StatusSuccess, StatusFailed},
	StatusSuccess:    {}, // terminal state
	StatusFailed:     {}, // terminal state
}

// Attempt is one try at paying for an order draft.
type Attempt struct {
	ID            string          `json:"id"`
	BuyerID       string          `json:"buyer_id"`
	DraftID       string          `json:"draft_id"`
	Method        Method          `json:"method"`
	Provider      Provider        `json:"provider,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Status        Status          `json:"status"`
	FailureReason FailureReason   `json:"failure_reason,omitempty"`
	FailureDetail string          `json:"failure_detail,omitempty"`
	CardType      string          `json:"card_type,omitempty"`
	Last4         string          `json:"last4,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// Aggregate interface implementation
func (a *Attempt) GetID() string    { return a.ID }
func (a *Attempt) GetVersion() int  { return a.Version }
func (a *Attempt) SetVersion(v int) { a.Version = v }

// CanTransitionTo checks if the attempt can move to the target status
func (a *Attempt) CanTransitionTo(target Status) bool {
	for _, s := range validTransitions[a.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// PaymentType is the label sent with the order, e.g. "Credit Card".
func (a *Attempt) PaymentType() string {
	if a.Method == MethodMobileMoney {
		return a.Provider.PaymentType()
	}
	return CardPaymentType
}

// Err returns the error matching a failed attempt, nil otherwise.
func (a *Attempt) Err() error {
	if a.Status != StatusFailed {
		return nil
	}
	var base error
	switch a.FailureReason {
	case ReasonProviderDeclined:
		base = ErrPaymentFailed
	case ReasonConfirmationTimedOut:
		base = ErrConfirmationTimeout
	default:
		base = ErrSubmissionFailed
	}
	if a.FailureDetail == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, a.FailureDetail)
}

// ApplyEvent applies a single event to the attempt state (implements aggregate.Aggregate)
func (a *Attempt) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventPaymentInitiated:
		var data PaymentInitiated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		a.ID = data.AttemptID
		a.BuyerID = data.BuyerID
		a.DraftID = data.DraftID
		a.Method = data.Method
		a.Provider = data.Provider
		a.Amount = data.Amount
		a.CardType = data.CardType
		a.Last4 = data.Last4
		a.Phone = data.Phone
		a.Status = StatusSubmitting
		a.CreatedAt = data.InitiatedAt
		a.UpdatedAt = data.InitiatedAt
	case EventPaymentPending:
		var data PaymentPending
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		a.TransactionID = data.TransactionID
		a.Status = StatusPending
		a.UpdatedAt = data.PendingAt
	case EventPaymentSucceeded:
		var data PaymentSucceeded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		a.TransactionID = data.TransactionID
		a.Status = StatusSuccess
		a.UpdatedAt = data.SucceededAt
	case EventPaymentFailed:
		var data PaymentFailed
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		a.Status = StatusFailed
		a.FailureReason = data.Reason
		a.FailureDetail = data.Detail
		a.UpdatedAt = data.FailedAt
	default:
		return fmt.Errorf("unknown event type %q", event.EventType)
	}
	a.Version = event.Version
	return nil
}

// Initiation describes a new attempt.
type Initiation struct {
	BuyerID  string
	DraftID  string
	Method   Method
	Provider Provider
	Amount   decimal.Decimal
	CardType string
	Last4    string
	Phone    string
}

type Service struct {
	eventStore store.EventStoreInterface
	now        func() time.Time
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) Get(ctx context.Context, attemptID string) (*Attempt, error) {
	attempt, found, err := aggregate.LoadAggregate(ctx, s.eventStore, attemptID, func() *Attempt {
		return &Attempt{}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *Service) Initiate(ctx context.Context, in Initiation) (*Attempt, error) {
	event := PaymentInitiated{
		AttemptID:   uuid.New().String(),
		BuyerID:     in.BuyerID,
		DraftID:     in.DraftID,
		Method:      in.Method,
		Provider:    in.Provider,
		Amount:      in.Amount,
		CardType:    in.CardType,
		Last4:       in.Last4,
		Phone:       in.Phone,
		InitiatedAt: s.now(),
	}
	attempt := &Attempt{}
	if err := s.record(ctx, attempt, event.AttemptID, EventPaymentInitiated, event); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *Service) MarkPending(ctx context.Context, attemptID, transactionID string) (*Attempt, error) {
	return s.transition(ctx, attemptID, StatusPending, EventPaymentPending, func(*Attempt) any {
		return PaymentPending{
			AttemptID:     attemptID,
			TransactionID: transactionID,
			PendingAt:     s.now(),
		}
	})
}

func (s *Service) Succeed(ctx context.Context, attemptID, transactionID string, receipt Receipt) (*Attempt, error) {
	return s.transition(ctx, attemptID, StatusSuccess, EventPaymentSucceeded, func(a *Attempt) any {
		return PaymentSucceeded{
			AttemptID:     attemptID,
			BuyerID:       a.BuyerID,
			TransactionID: transactionID,
			Receipt:       receipt,
			SucceededAt:   s.now(),
		}
	})
}

func (s *Service) Fail(ctx context.Context, attemptID string, reason FailureReason, detail string) (*Attempt, error) {
	return s.transition(ctx, attemptID, StatusFailed, EventPaymentFailed, func(*Attempt) any {
		return PaymentFailed{
			AttemptID: attemptID,
			Reason:    reason,
			Detail:    detail,
			FailedAt:  s.now(),
		}
	})
}

func (s *Service) transition(ctx context.Context, attemptID string, target Status, eventType string, build func(*Attempt) any) (*Attempt, error) {
	attempt, err := s.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.CanTransitionTo(target) {
		return nil, fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, attempt.Status, target)
	}
	if err := s.record(ctx, attempt, attemptID, eventType, build(attempt)); err != nil {
		return nil, err
	}
	return attempt, nil
}

// record appends the event and applies the stored copy to attempt.
func (s *Service) record(ctx context.Context, attempt *Attempt, attemptID, eventType string, data any) error {
	stored, err := s.eventStore.Append(ctx, attemptID, AggregateType, eventType, data)
	if err != nil {
		return fmt.Errorf("append %s: %w", eventType, err)
	}
	if stored == nil {
		return fmt.Errorf("append %s: event store returned no event", eventType)
	}
	return attempt.ApplyEvent(*stored)
}
