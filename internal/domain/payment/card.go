package payment

import (
	"errors"
	"regexp"
	"strings"
)

const CardPaymentType = "Credit Card"

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/([0-9]{2})$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)

	// Checked in order; the first match names the card.
	cardPatterns = []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"visa", regexp.MustCompile(`^4`)},
		{"mastercard", regexp.MustCompile(`^5[1-5]`)},
		{"amex", regexp.MustCompile(`^3[47]`)},
		{"discover", regexp.MustCompile(`^6(?:011|5)`)},
	}
)

// Card is the card payment form. Number may contain spaces or dashes.
type Card struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
	Name   string `json:"name"`
}

// Digits returns the card number with separators removed.
func (c Card) Digits() string {
	return strings.NewReplacer(" ", "", "-", "").Replace(c.Number)
}

func (c Card) Last4() string {
	d := c.Digits()
	if len(d) < 4 {
		return d
	}
	return d[len(d)-4:]
}

// Validate checks the form locally. Every failing field is reported; use
// FieldErrors to list them.
func (c Card) Validate() error {
	var errs []error

	digits := c.Digits()
	switch {
	case !digitsPattern.MatchString(digits):
		errs = append(errs, invalid("number", "card number must contain only digits"))
	case len(digits) < 15 || len(digits) > 16:
		errs = append(errs, invalid("number", "card number must be 15 or 16 digits"))
	}

	if !expiryPattern.MatchString(strings.TrimSpace(c.Expiry)) {
		errs = append(errs, invalid("expiry", "expiry must be MM/YY with month 01-12"))
	}

	cvc := strings.TrimSpace(c.CVC)
	if !digitsPattern.MatchString(cvc) || len(cvc) < 3 || len(cvc) > 4 {
		errs = append(errs, invalid("cvc", "cvc must be 3 or 4 digits"))
	}

	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, invalid("name", "cardholder name is required"))
	}

	return errors.Join(errs...)
}

// DetectCardType names the card network from the number prefix. Empty when
// fewer than 4 digits are known or no network matches.
func DetectCardType(number string) string {
	digits := Card{Number: number}.Digits()
	if len(digits) < 4 {
		return ""
	}
	for _, p := range cardPatterns {
		if p.pattern.MatchString(digits) {
			return p.name
		}
	}
	return ""
}
