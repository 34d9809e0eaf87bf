package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/example/ec-storefront/internal/domain/coupon"
	"github.com/shopspring/decimal"
)

type couponReply struct {
	CouponCode *struct {
		Name   string      `json:"name"`
		ShopID string      `json:"shopId"`
		Value  json.Number `json:"value"`
	} `json:"couponCode"`
}

// LookupCoupon implements coupon.Lookup.
func (c *Client) LookupCoupon(ctx context.Context, code string) (coupon.Coupon, error) {
	data, err := c.do(ctx, http.MethodGet, "/coupon/get-coupon-value/"+escape(code), nil)
	if errors.Is(err, errNotFound) {
		return coupon.Coupon{}, coupon.ErrCouponNotFound
	}
	if err != nil {
		return coupon.Coupon{}, err
	}

	var body couponReply
	if err := decode(data, &body); err != nil {
		return coupon.Coupon{}, err
	}
	if body.CouponCode == nil {
		return coupon.Coupon{}, coupon.ErrCouponNotFound
	}

	value, err := decimal.NewFromString(body.CouponCode.Value.String())
	if err != nil {
		return coupon.Coupon{}, fmt.Errorf("%w: value %q", coupon.ErrMalformedCoupon, body.CouponCode.Value)
	}
	name := body.CouponCode.Name
	if name == "" {
		name = code
	}
	return coupon.Coupon{Code: name, ShopID: body.CouponCode.ShopID, Value: value}, nil
}
