package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/order"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ExtractToken reads the JWT from the access_token cookie, the
// Authorization header, or the access_token query parameter, in that order.
// The query parameter exists for websocket clients that cannot set headers.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("access_token")
}

type contextKey string

const (
	BuyerContextKey contextKey = "buyer"
)

// AuthMiddleware validates JWT tokens and adds buyer claims to context
func AuthMiddleware(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r)
			if tokenString == "" {
				respondError(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				respondError(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), BuyerContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(BuyerContextKey).(*auth.Claims)
	return claims, ok
}

// GetBuyer returns the authenticated buyer as recorded on orders.
func GetBuyer(ctx context.Context) (order.Buyer, bool) {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		return order.Buyer{}, false
	}
	return order.Buyer{
		ID:    claims.BuyerID,
		Name:  claims.Name,
		Email: claims.Email,
		Phone: claims.Phone,
	}, true
}

func GetBuyerID(ctx context.Context) string {
	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.BuyerID
}
