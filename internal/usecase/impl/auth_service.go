// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	deliverycontext "authgate/internal/delivery/context"
	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"
	"authgate/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	msgPasswordSet   = "Password set successfully!"
	msgPasswordReset = "Password reset successfully!"

	// dummyPassword is hashed once and checked against when the email is
	// unknown, so a miss costs the same bcrypt round as a wrong password.
	dummyPassword = "authgate-timing-equalizer"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	issuer    service.TokenIssuer
	resetSvc  service.ResetTokenService
	validate  *validator.Validate
	dummyHash func() string
	logger    *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenIssuer  service.TokenIssuer
	ResetService service.ResetTokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	hasher := params.Hasher

	return &authService{
		userRepo: params.UserRepo,
		hasher:   hasher,
		issuer:   params.TokenIssuer,
		resetSvc: params.ResetService,
		validate: validator.New(),
		dummyHash: sync.OnceValue(func() string {
			hash, err := hasher.Hash(dummyPassword)
			if err != nil {
				return ""
			}

			return hash
		}),
		logger: params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Login verifies the credentials and issues an access token.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "missing credentials")
	}

	user, err := srv.verifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "login failed")
	}

	issued, err := srv.issuer.Issue(user)
	if err != nil {
		srv.log(ctx).Error("Failed to issue access token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to issue access token")
	}

	srv.log(ctx).Info("User logged in", slog.Any("userID", user.ID), slog.String("jti", issued.ID))

	return &usecase.LoginOutput{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// AddUser creates an account, hashing the optional initial password.
func (srv *authService) AddUser(ctx context.Context, input *usecase.AddUserInput) (*usecase.UserSummary, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("email is required")
	}

	email := entity.NormalizeEmail(input.Email)
	if err := srv.validate.Var(email, "required,email,max=254"); err != nil {
		return nil, domainerrors.ErrValidationFailed.WithDetails("a valid email is required")
	}

	user := &entity.User{
		Email:    email,
		Username: email,
	}

	if input.Password != "" {
		hash, err := srv.hasher.Hash(input.Password)
		if err != nil {
			return nil, errors.Wrap(err, "failed to hash initial password")
		}
		user.PasswordHash = hash
	}

	if err := srv.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Warn("User already exists", slog.String("email", email))

			return nil, errors.Wrap(err, "failed to add user")
		}

		var appErr domainerrors.AppError
		if errors.As(err, &appErr) {
			return nil, errors.Wrap(err, "failed to add user")
		}

		return nil, errors.Wrap(domainerrors.ErrUserCreationFailed.WithDetails(err.Error()), "failed to add user")
	}

	srv.log(ctx).Info("User added",
		slog.Any("userID", user.ID),
		slog.Bool("hasPassword", user.HasPassword()),
		slog.String("by", deliverycontext.CallerFromContext(ctx)),
	)

	return &usecase.UserSummary{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		HasPassword: user.HasPassword(),
		CreatedAt:   user.CreatedAt,
	}, nil
}

// AddPassword sets the password of an existing account, overwriting any previous one.
func (srv *authService) AddPassword(ctx context.Context, input *usecase.AddPasswordInput) (*usecase.StatusOutput, error) {
	if input == nil || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, domainerrors.ErrValidationFailed.WithDetails("email and password are required")
	}

	user, err := srv.userRepo.FindByEmail(ctx, entity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "add password for unknown user")
		}

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	if err := srv.userRepo.SetPassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "user disappeared while adding password")
		}
		srv.log(ctx).Error("Failed to store password", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordNotSet.WithDetails(err.Error()), "failed to store password")
	}

	srv.log(ctx).Info("Password set", slog.Any("userID", user.ID), slog.Bool("replaced", user.HasPassword()))

	return &usecase.StatusOutput{Success: true, Message: msgPasswordSet}, nil
}

// UpdatePassword re-verifies the credentials, then runs the reset protocol in one step.
func (srv *authService) UpdatePassword(ctx context.Context, input *usecase.UpdatePasswordInput) (*usecase.StatusOutput, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "missing credentials")
	}

	user, err := srv.verifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "update password failed")
	}

	if input.PasswordUpdate == "" {
		return nil, domainerrors.ErrPasswordNotReset.WithDetails("passwordUpdate is required")
	}

	issued, err := srv.resetSvc.IssueResetToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue reset token")
	}

	if err := srv.resetSvc.RedeemResetToken(ctx, issued.Token, input.PasswordUpdate); err != nil {
		if errors.Is(err, domainerrors.ErrResetTokenInvalid) || errors.Is(err, domainerrors.ErrResetTokenExpired) {
			srv.log(ctx).Warn("Password changed during update", slog.Any("userID", user.ID))

			return nil, errors.Wrap(domainerrors.ErrPasswordNotReset.WithDetails("password changed concurrently"), err.Error())
		}

		return nil, errors.Wrap(err, "failed to redeem reset token")
	}

	srv.log(ctx).Info("Password updated", slog.Any("userID", user.ID))

	return &usecase.StatusOutput{Success: true, Message: msgPasswordReset}, nil
}

// RequestPasswordReset re-verifies the credentials and hands out a reset
// token for later redemption through ResetPassword.
func (srv *authService) RequestPasswordReset(ctx context.Context, input *usecase.RequestPasswordResetInput) (*usecase.ResetTokenOutput, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "missing credentials")
	}

	user, err := srv.verifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "request password reset failed")
	}

	issued, err := srv.resetSvc.IssueResetToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue reset token")
	}

	srv.log(ctx).Info("Reset token issued", slog.Any("userID", user.ID), slog.String("jti", issued.ID))

	return &usecase.ResetTokenOutput{
		ResetToken: issued.Token,
		ExpiresAt:  issued.ExpiresAt,
	}, nil
}

// ResetPassword redeems a reset token issued by RequestPasswordReset.
func (srv *authService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) (*usecase.StatusOutput, error) {
	if input == nil || input.NewPassword == "" {
		return nil, domainerrors.ErrPasswordNotReset.WithDetails("newPassword is required")
	}
	if input.ResetToken == "" {
		return nil, errors.Wrap(domainerrors.ErrResetTokenInvalid, "reset token is required")
	}

	if err := srv.resetSvc.RedeemResetToken(ctx, input.ResetToken, input.NewPassword); err != nil {
		srv.log(ctx).Warn("Reset token rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to reset password")
	}

	return &usecase.StatusOutput{Success: true, Message: msgPasswordReset}, nil
}

// verifyCredentials returns the user only when the email exists and the
// password matches its stored hash. Every credential failure reports the
// same error.
func (srv *authService) verifyCredentials(ctx context.Context, email, password string) (*entity.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "missing email or password")
	}

	user, err := srv.userRepo.FindByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.hasher.Check(password, srv.dummyHash())
			srv.log(ctx).Warn("Credential check failed", slog.String("reason", "unknown email"))

			return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "user not found")
		}
		srv.log(ctx).Error("Failed to look up user", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to find user by email")
	}

	if !user.HasPassword() {
		srv.hasher.Check(password, srv.dummyHash())
		srv.log(ctx).Warn("Credential check failed", slog.String("reason", "no password set"), slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "no password set")
	}

	if !srv.hasher.Check(password, user.PasswordHash) {
		srv.log(ctx).Warn("Credential check failed", slog.String("reason", "password mismatch"), slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "password mismatch")
	}

	return user, nil
}
