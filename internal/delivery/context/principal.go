package context

import (
	"context"

	"authgate/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// SetClaims stores validated access token claims on both echo.Context and
// the request context so handlers and services see the same principal.
func SetClaims(c echo.Context, claims *service.Claims) {
	c.Set(echoClaimsKey, claims)
	c.SetRequest(c.Request().WithContext(WithClaims(c.Request().Context(), claims)))
}

// GetClaims returns the claims set by the bearer middleware, if any.
func GetClaims(c echo.Context) (*service.Claims, bool) {
	claims, ok := c.Get(echoClaimsKey).(*service.Claims)

	return claims, ok && claims != nil
}

// WithClaims returns ctx carrying the caller's claims.
func WithClaims(ctx context.Context, claims *service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaimsFromContext returns the caller's claims from context.Context.
func GetClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)

	return claims, ok && claims != nil
}

// CallerFromContext returns the authenticated username, or "" for anonymous calls.
func CallerFromContext(ctx context.Context) string {
	if claims, ok := GetClaimsFromContext(ctx); ok {
		return claims.Name
	}

	return ""
}
