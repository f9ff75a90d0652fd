// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"authgate/config"
	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Clock returns the current time. Tokens are stamped and validated against it.
type Clock func() time.Time

// JWTIssuerParams holds dependencies for the access token issuer, injected by Fx.
type JWTIssuerParams struct {
	fx.In

	Config *config.Config
	Clock  Clock `optional:"true"`
}

// jwtIssuer is a concrete implementation of the TokenIssuer interface using HS256 JWTs.
type jwtIssuer struct {
	secret   []byte        // Symmetric key derived from token.secret.
	issuer   string        // Value of the iss claim.
	audience string        // Value of the aud claim.
	ttl      time.Duration // Lifetime of an access token.
	now      Clock
	parser   *jwt.Parser
}

// NewJWTIssuer is the constructor for jwtIssuer.
func NewJWTIssuer(params JWTIssuerParams) (service.TokenIssuer, error) {
	cfg := params.Config.Token
	if cfg.Secret == "" {
		return nil, errors.New("token secret must be provided")
	}
	if cfg.Issuer == "" {
		return nil, errors.New("token issuer must be provided")
	}

	audience := cfg.Audience
	if audience == "" {
		audience = cfg.Issuer
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}

	return &jwtIssuer{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: audience,
		ttl:      ttl,
		now:      now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// Issue creates a signed access token naming the user.
func (s *jwtIssuer) Issue(user *entity.User) (*service.IssuedToken, error) {
	if user == nil || user.Username == "" {
		return nil, domainerrors.ErrTokenSigningFailed.WithDetails("user has no username")
	}

	now := s.now()
	claims := service.Claims{
		Name: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenSigningFailed.WithDetails(err.Error()), "failed to sign access token")
	}

	return &service.IssuedToken{
		Token:     signed,
		ID:        claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Validate parses the token and returns its claims if it is currently valid.
func (s *jwtIssuer) Validate(tokenString string) (*service.Claims, error) {
	claims := &service.Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, err.Error())
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, "token has no subject")
	}

	return claims, nil
}
