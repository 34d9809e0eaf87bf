package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/dispatcher"
	"github.com/example/ec-storefront/internal/domain/cart"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
	"github.com/example/ec-storefront/internal/query"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

var errBadRequest = errors.New("malformed request body")

// PaymentFeed streams attempt updates to websocket clients.
type PaymentFeed interface {
	Subscribe(attemptID string) (<-chan payment.Attempt, func())
}

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	feed         PaymentFeed
	logger       zerolog.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, feed PaymentFeed, logger zerolog.Logger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		feed:         feed,
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	rm, err := h.queryHandler.GetCart(r.Context(), middleware.GetBuyerID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rm)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var item cart.LineItem
	if !h.decode(w, r, &item) {
		return
	}
	cmd := command.AddToCart{BuyerID: middleware.GetBuyerID(r.Context()), Item: item}
	if _, err := h.cmdHandler.AddToCart(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetCart(w, r)
}

func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	cmd := command.UpdateCartQuantity{
		BuyerID:   middleware.GetBuyerID(r.Context()),
		ProductID: chi.URLParam(r, "productID"),
		Quantity:  req.Quantity,
	}
	if _, err := h.cmdHandler.UpdateCartQuantity(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetCart(w, r)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveFromCart{
		BuyerID:   middleware.GetBuyerID(r.Context()),
		ProductID: chi.URLParam(r, "productID"),
	}
	if _, err := h.cmdHandler.RemoveFromCart(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetCart(w, r)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if _, err := h.cmdHandler.ClearCart(r.Context(), command.ClearCart{BuyerID: middleware.GetBuyerID(r.Context())}); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetCart(w, r)
}

// Wishlist Handlers

func (h *Handlers) GetWishlist(w http.ResponseWriter, r *http.Request) {
	rm, err := h.queryHandler.GetWishlist(r.Context(), middleware.GetBuyerID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rm)
}

func (h *Handlers) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	var item cart.WishlistItem
	if !h.decode(w, r, &item) {
		return
	}
	cmd := command.AddToWishlist{BuyerID: middleware.GetBuyerID(r.Context()), Item: item}
	if _, err := h.cmdHandler.AddToWishlist(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetWishlist(w, r)
}

func (h *Handlers) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	cmd := command.RemoveFromWishlist{
		BuyerID:   middleware.GetBuyerID(r.Context()),
		ProductID: chi.URLParam(r, "productID"),
	}
	if _, err := h.cmdHandler.RemoveFromWishlist(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetWishlist(w, r)
}

func (h *Handlers) MoveToCart(w http.ResponseWriter, r *http.Request) {
	cmd := command.MoveWishlistItemToCart{
		BuyerID:   middleware.GetBuyerID(r.Context()),
		ProductID: chi.URLParam(r, "productID"),
	}
	if _, err := h.cmdHandler.MoveWishlistItemToCart(r.Context(), cmd); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.GetCart(w, r)
}

// Checkout Handlers

func (h *Handlers) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.queryHandler.GetQuote(r.Context(), middleware.GetBuyerID(r.Context()), r.URL.Query().Get("delivery_method"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (h *Handlers) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	applied, err := h.cmdHandler.ApplyCoupon(r.Context(), command.ApplyCoupon{
		BuyerID: middleware.GetBuyerID(r.Context()),
		Code:    req.Code,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, query.CouponReadModel{
		Code:     applied.Coupon.Code,
		ShopID:   applied.Coupon.ShopID,
		Percent:  applied.Coupon.Value.String(),
		Discount: applied.Discount.StringFixed(2),
	})
}

func (h *Handlers) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	if _, err := h.cmdHandler.RemoveCoupon(r.Context(), command.RemoveCoupon{BuyerID: middleware.GetBuyerID(r.Context())}); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// shippingRequest leaves country and city as pointers so that an omitted
// field takes the default while an explicit empty value is rejected.
type shippingRequest struct {
	Address1            string  `json:"address1"`
	Address2            string  `json:"address2"`
	Country             *string `json:"country"`
	City                *string `json:"city"`
	DeliveryMethod      string  `json:"deliveryMethod"`
	SpecialInstructions string  `json:"specialInstructions"`
}

func (req shippingRequest) address() order.ShippingAddress {
	addr := order.ShippingAddress{
		Address1:            req.Address1,
		Address2:            req.Address2,
		Country:             order.DefaultCountry,
		City:                order.DefaultCity,
		SpecialInstructions: req.SpecialInstructions,
	}
	if req.Country != nil {
		addr.Country = *req.Country
	}
	if req.City != nil {
		addr.City = *req.City
	}
	return addr
}

func (h *Handlers) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	buyer, ok := middleware.GetBuyer(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		return
	}
	var req shippingRequest
	if !h.decode(w, r, &req) {
		return
	}
	d, err := h.cmdHandler.SubmitShipping(r.Context(), command.SubmitShipping{
		Buyer:          buyer,
		Address:        req.address(),
		DeliveryMethod: req.DeliveryMethod,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, query.NewDraftReadModel(d))
}

func (h *Handlers) GetDraft(w http.ResponseWriter, r *http.Request) {
	rm, found, err := h.queryHandler.GetDraft(r.Context(), middleware.GetBuyerID(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !found {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: dispatcher.ErrNoDraft.Error()})
		return
	}
	respondJSON(w, http.StatusOK, rm)
}

// Payment Handlers

func (h *Handlers) PayByCard(w http.ResponseWriter, r *http.Request) {
	var card payment.Card
	if !h.decode(w, r, &card) {
		return
	}
	attempt, err := h.cmdHandler.PayByCard(r.Context(), command.PayByCard{
		BuyerID: middleware.GetBuyerID(r.Context()),
		Card:    card,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, query.NewPaymentReadModel(attempt))
}

func (h *Handlers) PayByMobileMoney(w http.ResponseWriter, r *http.Request) {
	var req dispatcher.MobileMoney
	if !h.decode(w, r, &req) {
		return
	}
	attempt, err := h.cmdHandler.PayByMobileMoney(r.Context(), command.PayByMobileMoney{
		BuyerID:     middleware.GetBuyerID(r.Context()),
		MobileMoney: req,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, query.NewPaymentReadModel(attempt))
}

func (h *Handlers) GetPayment(w http.ResponseWriter, r *http.Request) {
	rm, err := h.queryHandler.GetPayment(r.Context(), middleware.GetBuyerID(r.Context()), chi.URLParam(r, "attemptID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rm)
}

func (h *Handlers) CancelPayment(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.cmdHandler.CancelPayment(r.Context(), command.CancelPayment{
		BuyerID:   middleware.GetBuyerID(r.Context()),
		AttemptID: chi.URLParam(r, "attemptID"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, query.NewPaymentReadModel(attempt))
}

// Helper functions

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: errBadRequest.Error()})
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
