package service

import (
	"context"
	"time"

	"authgate/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the claims carried by an access token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// IssuedToken is a signed token together with the values needed to describe it.
type IssuedToken struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer builds, signs and validates access tokens.
type TokenIssuer interface {
	// Issue signs a new access token for the user. Failures are reported as
	// domainerrors.ErrTokenSigningFailed.
	Issue(user *entity.User) (*IssuedToken, error)

	// Validate checks signature, algorithm, issuer, audience and expiry.
	// Any failure is reported as domainerrors.ErrTokenInvalid.
	Validate(tokenString string) (*Claims, error)
}

// ResetTokenService issues and redeems single-use password reset tokens.
type ResetTokenService interface {
	// IssueResetToken binds a token to the user and their current password hash.
	// Callers must have re-verified the user's current password.
	IssueResetToken(user *entity.User) (*IssuedToken, error)

	// RedeemResetToken validates the token and sets newPassword. A redeemed
	// token cannot be redeemed again because the bound hash has changed.
	RedeemResetToken(ctx context.Context, token string, newPassword string) error
}
