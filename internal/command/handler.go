package command

import (
	"context"
	"time"

	"github.com/example/ec-storefront/internal/dispatcher"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/coupon"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/example/ec-storefront/internal/draft"
	"github.com/example/ec-storefront/internal/session"
	"github.com/rs/zerolog"
)

type Handler struct {
	sessions *session.Store
	coupons  *coupon.Resolver
	drafts   *draft.Slot
	payments *dispatcher.Dispatcher
	logger   zerolog.Logger
	now      func() time.Time
}

func NewHandler(
	sessions *session.Store,
	coupons *coupon.Resolver,
	drafts *draft.Slot,
	payments *dispatcher.Dispatcher,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		sessions: sessions,
		coupons:  coupons,
		drafts:   drafts,
		payments: payments,
		logger:   logger.With().Str("component", "command").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddToCart adds a product snapshot to the cart
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (session.State, error) {
	return h.updateCart(ctx, cmd.BuyerID, func(c cart.Cart) (cart.Cart, error) {
		return c.Add(cmd.Item)
	})
}

func (h *Handler) UpdateCartQuantity(ctx context.Context, cmd UpdateCartQuantity) (session.State, error) {
	return h.updateCart(ctx, cmd.BuyerID, func(c cart.Cart) (cart.Cart, error) {
		return c.UpdateQuantity(cmd.ProductID, cmd.Quantity)
	})
}

func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) (session.State, error) {
	return h.updateCart(ctx, cmd.BuyerID, func(c cart.Cart) (cart.Cart, error) {
		return c.Remove(cmd.ProductID)
	})
}

func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) (session.State, error) {
	return h.updateCart(ctx, cmd.BuyerID, func(cart.Cart) (cart.Cart, error) {
		return cart.Cart{}, nil
	})
}

// updateCart applies a cart change; any change invalidates the applied coupon.
func (h *Handler) updateCart(ctx context.Context, buyerID string, change func(cart.Cart) (cart.Cart, error)) (session.State, error) {
	return h.sessions.Update(ctx, buyerID, func(st session.State) (session.State, error) {
		next, err := change(st.Cart)
		if err != nil {
			return st, err
		}
		if st.Coupon != nil {
			h.logger.Debug().Str("buyer_id", buyerID).Str("coupon", st.CouponCode()).Msg("cart changed, coupon dropped")
		}
		return st.WithCart(next), nil
	})
}

func (h *Handler) AddToWishlist(ctx context.Context, cmd AddToWishlist) (session.State, error) {
	return h.sessions.Update(ctx, cmd.BuyerID, func(st session.State) (session.State, error) {
		w, err := st.Wishlist.Add(cmd.Item)
		if err != nil {
			return st, err
		}
		return st.WithWishlist(w), nil
	})
}

func (h *Handler) RemoveFromWishlist(ctx context.Context, cmd RemoveFromWishlist) (session.State, error) {
	return h.sessions.Update(ctx, cmd.BuyerID, func(st session.State) (session.State, error) {
		w, err := st.Wishlist.Remove(cmd.ProductID)
		if err != nil {
			return st, err
		}
		return st.WithWishlist(w), nil
	})
}

func (h *Handler) MoveWishlistItemToCart(ctx context.Context, cmd MoveWishlistItemToCart) (session.State, error) {
	return h.sessions.Update(ctx, cmd.BuyerID, func(st session.State) (session.State, error) {
		w, c, err := st.Wishlist.MoveToCart(cmd.ProductID, st.Cart)
		if err != nil {
			return st, err
		}
		return st.WithWishlist(w).WithCart(c), nil
	})
}

// ApplyCoupon resolves the code against the current cart and replaces any
// applied coupon. On failure the session keeps its previous coupon.
func (h *Handler) ApplyCoupon(ctx context.Context, cmd ApplyCoupon) (*coupon.Applied, error) {
	var applied *coupon.Applied
	_, err := h.sessions.Update(ctx, cmd.BuyerID, func(st session.State) (session.State, error) {
		a, err := h.coupons.Resolve(ctx, cmd.Code, st.Cart.Items)
		if err != nil {
			return st, err
		}
		applied = a
		return st.WithCoupon(*a), nil
	})
	if err != nil {
		h.logger.Info().Err(err).Str("buyer_id", cmd.BuyerID).Msg("coupon rejected")
		return nil, err
	}
	return applied, nil
}

func (h *Handler) RemoveCoupon(ctx context.Context, cmd RemoveCoupon) (session.State, error) {
	return h.sessions.Update(ctx, cmd.BuyerID, func(st session.State) (session.State, error) {
		return st.WithoutCoupon(), nil
	})
}

// SubmitShipping prices the current cart for the chosen delivery method and
// stores the result as the buyer's order draft.
func (h *Handler) SubmitShipping(ctx context.Context, cmd SubmitShipping) (order.Draft, error) {
	method, err := pricing.ParseDeliveryMethod(cmd.DeliveryMethod)
	if err != nil {
		return order.Draft{}, err
	}
	if err := cmd.Address.Validate(); err != nil {
		return order.Draft{}, err
	}

	st, err := h.sessions.Load(ctx, cmd.Buyer.ID)
	if err != nil {
		return order.Draft{}, err
	}
	quote, err := pricing.Calculate(st.Cart.Items, method, st.Discount())
	if err != nil {
		return order.Draft{}, err
	}
	if quote.Clamped {
		h.logger.Warn().Str("buyer_id", cmd.Buyer.ID).Str("discount", quote.Discount.String()).Msg("discount exceeds order value, total clamped to zero")
	}

	d, err := order.NewDraft(cmd.Buyer, st.Cart.Items, quote, st.CouponCode(), cmd.Address, h.now())
	if err != nil {
		return order.Draft{}, err
	}
	if err := h.drafts.Write(ctx, cmd.Buyer.ID, d); err != nil {
		return order.Draft{}, err
	}
	h.logger.Info().Str("buyer_id", cmd.Buyer.ID).Str("draft_id", d.ID).Str("total", d.Total.StringFixed(2)).Msg("order draft saved")
	return d, nil
}

func (h *Handler) PayByCard(ctx context.Context, cmd PayByCard) (*payment.Attempt, error) {
	return h.payments.PayByCard(ctx, cmd.BuyerID, cmd.Card)
}

func (h *Handler) PayByMobileMoney(ctx context.Context, cmd PayByMobileMoney) (*payment.Attempt, error) {
	return h.payments.PayByMobileMoney(ctx, cmd.BuyerID, cmd.MobileMoney)
}

// CancelPayment stops confirmation polling for one of the buyer's attempts.
func (h *Handler) CancelPayment(ctx context.Context, cmd CancelPayment) (*payment.Attempt, error) {
	attempt, err := h.payments.Attempt(ctx, cmd.AttemptID)
	if err != nil {
		return nil, err
	}
	if attempt.BuyerID != cmd.BuyerID {
		return nil, payment.ErrAttemptNotFound
	}
	h.payments.Cancel(cmd.AttemptID)
	return h.payments.Attempt(ctx, cmd.AttemptID)
}
