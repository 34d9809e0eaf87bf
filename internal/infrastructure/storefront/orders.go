package storefront

import (
	"context"
	"net/http"

	"github.com/example/ec-storefront/internal/domain/order"
)

// CreateOrder submits a paid (or pending) order to the shop backend.
func (c *Client) CreateOrder(ctx context.Context, sub order.Submission) error {
	_, err := c.do(ctx, http.MethodPost, "/order/create-order", sub)
	if err != nil {
		c.logger.Error().Err(err).Str("payment_id", sub.PaymentInfo.ID).Msg("order creation failed")
	}
	return err
}
