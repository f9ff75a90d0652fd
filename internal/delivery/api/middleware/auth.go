package middleware

import (
	"strings"

	deliverycontext "authgate/internal/delivery/context"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const bearerScheme = "bearer"

// AuthMiddleware admits requests that carry a valid access token.
type AuthMiddleware struct {
	issuer service.TokenIssuer
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(issuer service.TokenIssuer) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer}
}

// Authenticate validates the bearer token and stores its claims for handlers
// and services. Rejections are rendered by the central error handler.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return errors.Wrap(domainerrors.ErrTokenInvalid, "authorization header is missing")
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, bearerScheme) || strings.TrimSpace(token) == "" {
			return errors.Wrap(domainerrors.ErrTokenInvalid, "authorization header must be a bearer token")
		}

		claims, err := m.issuer.Validate(strings.TrimSpace(token))
		if err != nil {
			return errors.Wrap(err, "bearer token rejected")
		}

		deliverycontext.SetClaims(c, claims)

		return next(c)
	}
}
