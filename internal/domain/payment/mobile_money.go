package payment

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Provider string

const (
	ProviderMTN    Provider = "mtn"
	ProviderAirtel Provider = "airtel"
)

const phoneDigits = 10

// ParseProvider accepts a provider name in any case.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderMTN, ProviderAirtel:
		return p, nil
	default:
		return "", invalid("provider", fmt.Sprintf("unsupported mobile money provider %q", name))
	}
}

// PaymentType is the label recorded on the order, e.g. "MTN Mobile Money".
func (p Provider) PaymentType() string {
	return strings.ToUpper(string(p)) + " Mobile Money"
}

// ValidatePhone requires exactly 10 digits.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) != phoneDigits || !digitsPattern.MatchString(phone) {
		return invalid("phone", fmt.Sprintf("phone number must be exactly %d digits", phoneDigits))
	}
	return nil
}

// ProviderStatus is the confirmation state reported by the provider.
type ProviderStatus string

const (
	ProviderPending ProviderStatus = "pending"
	ProviderSuccess ProviderStatus = "success"
	ProviderFailed  ProviderStatus = "failed"
)

// MobileMoneyRequest asks the provider to charge the buyer's phone.
type MobileMoneyRequest struct {
	Phone    string
	Amount   decimal.Decimal
	Provider Provider
}

// MobileMoneyInitiation is the provider's answer to a MobileMoneyRequest.
type MobileMoneyInitiation struct {
	Success       bool
	TransactionID string
	Message       string
}
