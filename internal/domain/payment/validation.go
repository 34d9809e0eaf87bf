package payment

import (
	"errors"
	"fmt"
)

// ValidationError reports one rejected payment form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// FieldErrors unpacks every ValidationError contained in err.
func FieldErrors(err error) []*ValidationError {
	if err == nil {
		return nil
	}
	var out []*ValidationError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, FieldErrors(e)...)
		}
		return out
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		out = append(out, verr)
	}
	return out
}
