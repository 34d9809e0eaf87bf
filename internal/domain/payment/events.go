package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventPaymentInitiated = "PaymentInitiated"
	EventPaymentPending   = "PaymentPending"
	EventPaymentSucceeded = "PaymentSucceeded"
	EventPaymentFailed    = "PaymentFailed"
)

type PaymentInitiated struct {
	AttemptID   string          `json:"attempt_id"`
	BuyerID     string          `json:"buyer_id"`
	DraftID     string          `json:"draft_id"`
	Method      Method          `json:"method"`
	Provider    Provider        `json:"provider,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	CardType    string          `json:"card_type,omitempty"`
	Last4       string          `json:"last4,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	InitiatedAt time.Time       `json:"initiated_at"`
}

type PaymentPending struct {
	AttemptID     string    `json:"attempt_id"`
	TransactionID string    `json:"transaction_id"`
	PendingAt     time.Time `json:"pending_at"`
}

// PaymentSucceeded carries the receipt so consumers need no other lookup.
type PaymentSucceeded struct {
	AttemptID     string    `json:"attempt_id"`
	BuyerID       string    `json:"buyer_id"`
	TransactionID string    `json:"transaction_id"`
	Receipt       Receipt   `json:"receipt"`
	SucceededAt   time.Time `json:"succeeded_at"`
}

type PaymentFailed struct {
	AttemptID string        `json:"attempt_id"`
	Reason    FailureReason `json:"reason"`
	Detail    string        `json:"detail,omitempty"`
	FailedAt  time.Time     `json:"failed_at"`
}
