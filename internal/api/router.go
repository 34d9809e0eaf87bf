package api

import (
	"net/http"
	"time"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Handlers   *Handlers
	JWTService *auth.JWTService
	Logger     zerolog.Logger
	// RequestTimeout bounds non-streaming requests. Zero means no limit.
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", h.Health)

	withTimeout := func(next http.Handler) http.Handler { return next }
	if cfg.RequestTimeout > 0 {
		withTimeout = chimw.Timeout(cfg.RequestTimeout)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(cfg.JWTService))

		r.Route("/cart", func(r chi.Router) {
			r.Use(withTimeout)
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddToCart)
			r.Patch("/items/{productID}", h.UpdateCartItem)
			r.Delete("/items/{productID}", h.RemoveFromCart)
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Use(withTimeout)
			r.Get("/", h.GetWishlist)
			r.Post("/items", h.AddToWishlist)
			r.Delete("/items/{productID}", h.RemoveFromWishlist)
			r.Post("/items/{productID}/move-to-cart", h.MoveToCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(withTimeout)
			r.Get("/quote", h.GetQuote)
			r.Post("/coupon", h.ApplyCoupon)
			r.Delete("/coupon", h.RemoveCoupon)
			r.Post("/shipping", h.SubmitShipping)
			r.Get("/draft", h.GetDraft)
		})

		r.Route("/payments", func(r chi.Router) {
			// websocket connections outlive any request timeout
			r.Get("/{attemptID}/stream", h.StreamPayment)

			r.With(withTimeout).Post("/card", h.PayByCard)
			r.With(withTimeout).Post("/mobile-money", h.PayByMobileMoney)
			r.With(withTimeout).Get("/{attemptID}", h.GetPayment)
			r.With(withTimeout).Delete("/{attemptID}", h.CancelPayment)
		})
	})

	return r
}
