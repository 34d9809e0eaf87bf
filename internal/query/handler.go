package query

import (
	"context"

	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/example/ec-storefront/internal/domain/pricing"
	"github.com/example/ec-storefront/internal/draft"
	"github.com/example/ec-storefront/internal/session"
	"github.com/rs/zerolog"
)

type Handler struct {
	sessions *session.Store
	drafts   *draft.Slot
	payments *payment.Service
	logger   zerolog.Logger
}

func NewHandler(sessions *session.Store, drafts *draft.Slot, payments *payment.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		drafts:   drafts,
		payments: payments,
		logger:   logger.With().Str("component", "query").Logger(),
	}
}

// Cart
func (h *Handler) GetCart(ctx context.Context, buyerID string) (*CartReadModel, error) {
	st, err := h.sessions.Load(ctx, buyerID)
	if err != nil {
		h.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("load cart")
		return nil, err
	}
	return NewCartReadModel(st), nil
}

// Wishlist
func (h *Handler) GetWishlist(ctx context.Context, buyerID string) (*WishlistReadModel, error) {
	st, err := h.sessions.Load(ctx, buyerID)
	if err != nil {
		h.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("load wishlist")
		return nil, err
	}
	return NewWishlistReadModel(st), nil
}

// GetQuote prices the current cart for a delivery method with the applied
// coupon. An empty method means standard delivery.
func (h *Handler) GetQuote(ctx context.Context, buyerID, method string) (*QuoteReadModel, error) {
	m, err := pricing.ParseDeliveryMethod(method)
	if err != nil {
		return nil, err
	}
	st, err := h.sessions.Load(ctx, buyerID)
	if err != nil {
		h.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("load session for quote")
		return nil, err
	}
	q, err := pricing.Calculate(st.Cart.Items, m, st.Discount())
	if err != nil {
		return nil, err
	}
	return &QuoteReadModel{DisplayQuote: q.Display(), CouponCode: st.CouponCode()}, nil
}

// GetDraft returns the buyer's order draft, if one is stored.
func (h *Handler) GetDraft(ctx context.Context, buyerID string) (*DraftReadModel, bool, error) {
	d, found, err := h.drafts.Read(ctx, buyerID)
	if err != nil {
		h.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("read draft")
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	return NewDraftReadModel(d), true, nil
}

// GetPayment returns one of the buyer's payment attempts. Attempts owned by
// other buyers are reported as not found.
func (h *Handler) GetPayment(ctx context.Context, buyerID, attemptID string) (*PaymentReadModel, error) {
	a, err := h.payments.Get(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.BuyerID != buyerID {
		return nil, payment.ErrAttemptNotFound
	}
	return NewPaymentReadModel(a), nil
}
