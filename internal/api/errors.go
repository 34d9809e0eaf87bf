package api

import (
	"errors"
	"net/http"

	"github.com/example/ec-storefront/internal/dispatcher"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/coupon"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/example/ec-storefront/internal/domain/pricing"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error     string       `json:"error"`
	Fields    []fieldError `json:"fields,omitempty"`
	AttemptID string       `json:"attempt_id,omitempty"`
}

var statusByError = []struct {
	err    error
	status int
}{
	{cart.ErrInvalidQuantity, http.StatusUnprocessableEntity},
	{cart.ErrInvalidProduct, http.StatusUnprocessableEntity},
	{cart.ErrInvalidPrice, http.StatusUnprocessableEntity},
	{cart.ErrAlreadyInCart, http.StatusConflict},
	{cart.ErrOutOfStock, http.StatusConflict},
	{cart.ErrItemNotFound, http.StatusNotFound},
	{cart.ErrNotInWishlist, http.StatusNotFound},
	{coupon.ErrInvalidCoupon, http.StatusUnprocessableEntity},
	{coupon.ErrCouponNotApplicable, http.StatusUnprocessableEntity},
	{pricing.ErrUnknownDeliveryMethod, http.StatusBadRequest},
	{order.ErrIncompleteAddress, http.StatusUnprocessableEntity},
	{order.ErrEmptyOrder, http.StatusConflict},
	{dispatcher.ErrNoDraft, http.StatusConflict},
	{payment.ErrAttemptNotFound, http.StatusNotFound},
}

// statusFor maps a command or query error to an HTTP status.
func statusFor(err error) int {
	var subErr *dispatcher.PaymentSubmissionError
	if errors.As(err, &subErr) {
		return http.StatusBadGateway
	}
	if len(payment.FieldErrors(err)) > 0 {
		return http.StatusUnprocessableEntity
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return m.status
		}
	}
	return http.StatusInternalServerError
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		resp.Error = "internal error"
	}
	for _, fe := range payment.FieldErrors(err) {
		resp.Fields = append(resp.Fields, fieldError{Field: fe.Field, Message: fe.Message})
	}
	var subErr *dispatcher.PaymentSubmissionError
	if errors.As(err, &subErr) {
		resp.AttemptID = subErr.AttemptID
	}
	respondJSON(w, status, resp)
}
