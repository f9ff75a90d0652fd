package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"time"

	"authgate/config"
	deliverycontext "authgate/internal/delivery/context"
	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const resetAudienceSuffix = "/password-reset"

// resetClaims ties a reset token to a user and to the password hash they had
// when it was issued.
type resetClaims struct {
	Binding string `json:"phb"`
	jwt.RegisteredClaims
}

// ResetTokenServiceParams holds dependencies for the reset token service, injected by Fx.
type ResetTokenServiceParams struct {
	fx.In

	Config   *config.Config
	UserRepo repository.UserRepository
	Hasher   service.PasswordHasher
	Logger   *slog.Logger
	Clock    Clock `optional:"true"`
}

// resetTokenService implements service.ResetTokenService with self-contained
// tokens. A token is spent once the password hash it is bound to changes, so
// no nonce store is needed.
type resetTokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      Clock
	parser   *jwt.Parser
	userRepo repository.UserRepository
	hasher   service.PasswordHasher
	logger   *slog.Logger
}

// NewResetTokenService is the constructor for resetTokenService.
func NewResetTokenService(params ResetTokenServiceParams) (service.ResetTokenService, error) {
	cfg := params.Config
	if cfg.Reset.Secret == "" {
		return nil, errors.New("reset secret must be provided")
	}
	if cfg.Token.Issuer == "" {
		return nil, errors.New("token issuer must be provided")
	}

	ttl := cfg.Reset.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := params.Clock
	if now == nil {
		now = time.Now
	}
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	audience := cfg.Token.Issuer + resetAudienceSuffix

	return &resetTokenService{
		secret:   []byte(cfg.Reset.Secret),
		issuer:   cfg.Token.Issuer,
		audience: audience,
		ttl:      ttl,
		now:      now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Token.Issuer),
			jwt.WithAudience(audience),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
		userRepo: params.UserRepo,
		hasher:   params.Hasher,
		logger:   logger,
	}, nil
}

func (s *resetTokenService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, s.logger)
}

// IssueResetToken signs a reset token bound to the user's current password hash.
func (s *resetTokenService) IssueResetToken(user *entity.User) (*service.IssuedToken, error) {
	if user == nil || !user.HasPassword() {
		return nil, domainerrors.ErrPasswordNotReset.WithDetails("user has no password to reset")
	}

	now := s.now()
	claims := resetClaims{
		Binding: s.fingerprint(user.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenSigningFailed.WithDetails(err.Error()), "failed to sign reset token")
	}

	return &service.IssuedToken{
		Token:     signed,
		ID:        claims.ID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// RedeemResetToken checks the token against the user's current hash and, if
// it still matches, replaces the password.
func (s *resetTokenService) RedeemResetToken(ctx context.Context, token string, newPassword string) error {
	if newPassword == "" {
		return domainerrors.ErrValidationFailed.WithDetails("new password is required")
	}

	claims := &resetClaims{}
	if _, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errors.Wrap(domainerrors.ErrResetTokenExpired, "reset token expired")
		}

		return errors.Wrap(domainerrors.ErrResetTokenInvalid, err.Error())
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return errors.Wrap(domainerrors.ErrResetTokenInvalid, "reset token subject is not a user id")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrResetTokenInvalid, "reset token user no longer exists")
		}

		return errors.Wrap(err, "failed to load user for password reset")
	}

	if !user.HasPassword() || !hmac.Equal([]byte(claims.Binding), []byte(s.fingerprint(user.PasswordHash))) {
		s.log(ctx).Warn("Reset token binding mismatch", slog.Any("userID", user.ID), slog.String("jti", claims.ID))

		return errors.Wrap(domainerrors.ErrResetTokenInvalid, "password changed since reset token was issued")
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash new password")
	}

	if err := s.userRepo.CompareAndSetPassword(ctx, user.ID, user.PasswordHash, newHash); err != nil {
		if errors.Is(err, repository.ErrPasswordChanged) || errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrResetTokenInvalid, "password changed while redeeming reset token")
		}

		return errors.Wrap(err, "failed to store new password")
	}

	s.log(ctx).Debug("Reset token redeemed", slog.Any("userID", user.ID), slog.String("jti", claims.ID))

	return nil
}

// fingerprint keys the password hash with the reset secret so the token
// never carries the hash itself.
func (s *resetTokenService) fingerprint(passwordHash string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(passwordHash))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
