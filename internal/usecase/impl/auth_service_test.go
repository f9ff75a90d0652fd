package impl

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"
	"authgate/internal/domain/service"
	"authgate/internal/infra/auth"
	"authgate/internal/infra/persistence/memory"
	"authgate/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures wires the service to real infrastructure backed by the in-memory store.
type authServiceFixtures struct {
	service usecase.AuthUsecase
	repo    repository.UserRepository
	hasher  service.PasswordHasher
	issuer  service.TokenIssuer
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	t.Helper()

	cfg := newTestConfig()
	logger := newDiscardLogger()
	repo := memory.NewUserRepository()
	hasher := auth.NewBcryptHasher(cfg)

	issuer, err := auth.NewJWTIssuer(auth.JWTIssuerParams{Config: cfg})
	require.NoError(t, err)

	resetSvc, err := auth.NewResetTokenService(auth.ResetTokenServiceParams{
		Config:   cfg,
		UserRepo: repo,
		Hasher:   hasher,
		Logger:   logger,
	})
	require.NoError(t, err)

	svc := NewAuthService(AuthServiceParams{
		UserRepo:     repo,
		Hasher:       hasher,
		TokenIssuer:  issuer,
		ResetService: resetSvc,
		Logger:       logger,
	})

	return authServiceFixtures{
		service: svc,
		repo:    repo,
		hasher:  hasher,
		issuer:  issuer,
	}
}

func (f authServiceFixtures) storedHash(t *testing.T, email string) string {
	t.Helper()

	user, err := f.repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)

	return user.PasswordHash
}

func requireAppError(t *testing.T, err error) domainerrors.AppError {
	t.Helper()

	require.Error(t, err)
	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected an AppError, got %v", err)

	return appErr
}

func TestAuthService_PasswordLifecycle(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	summary, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", summary.Email)
	assert.Equal(t, "a@x.com", summary.Username)
	assert.False(t, summary.HasPassword)

	_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "pw1"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials), "no password set yet")

	status, err := fx.service.AddPassword(ctx, &usecase.AddPasswordInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, &usecase.StatusOutput{Success: true, Message: "Password set successfully!"}, status)

	first, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	claims, err := fx.issuer.Validate(first.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Name)

	status, err = fx.service.UpdatePassword(ctx, &usecase.UpdatePasswordInput{
		Email:          "a@x.com",
		Password:       "pw1",
		PasswordUpdate: "pw2",
	})
	require.NoError(t, err)
	assert.Equal(t, "Password reset successfully!", status.Message)

	_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "pw1"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials), "old password must stop working")

	second, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "pw2"})
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestAuthService_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, missingErr := fx.service.Login(ctx, &usecase.LoginInput{Email: "nobody@x.com", Password: "pw1"})
	_, wrongErr := fx.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "nope"})

	missing := requireAppError(t, missingErr)
	wrong := requireAppError(t, wrongErr)
	assert.Equal(t, wrong.HTTPCode(), missing.HTTPCode())
	assert.Equal(t, wrong.ErrorCode(), missing.ErrorCode())
	assert.Equal(t, wrong.Message(), missing.Message())
	assert.Equal(t, "INVALID_CREDENTIALS", missing.ErrorCode())
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input *usecase.LoginInput
	}{
		{name: "nil input", input: nil},
		{name: "no email", input: &usecase.LoginInput{Password: "pw1"}},
		{name: "no password", input: &usecase.LoginInput{Email: "a@x.com"}},
		{name: "blank email", input: &usecase.LoginInput{Email: "   ", Password: "pw1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := fx.service.Login(ctx, tt.input)
			assert.Nil(t, output)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
		})
	}
}

func TestAuthService_Login_EmailIsCaseInsensitive(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "Mixed@X.com", Password: "pw1"})
	require.NoError(t, err)

	output, err := fx.service.Login(ctx, &usecase.LoginInput{Email: " mixed@x.COM ", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEmpty(t, output.Token)
}

func TestAuthService_AddUser_Duplicate(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com"})
	require.NoError(t, err)

	_, err = fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "A@x.com", Password: "pw"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
	assert.Equal(t, 422, requireAppError(t, err).HTTPCode())
}

func TestAuthService_AddUser_ConcurrentDuplicates(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	const workers = 8
	var created atomic.Int32
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "race@x.com"}); err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
}

func TestAuthService_AddUser_Validation(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	for _, email := range []string{"", "not-an-email", "   "} {
		_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: email})
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed), "email %q", email)
	}

	_, err := fx.service.AddUser(ctx, nil)
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAuthService_AddUser_WithPassword(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	summary, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.True(t, summary.HasPassword)
	assert.False(t, summary.CreatedAt.IsZero())
	assert.NotEqual(t, "pw1", fx.storedHash(t, "a@x.com"))

	_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
}

func TestAuthService_AddPassword_Errors(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddPassword(ctx, &usecase.AddPasswordInput{Email: "nobody@x.com", Password: "pw1"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = fx.service.AddPassword(ctx, &usecase.AddPasswordInput{Email: "a@x.com"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

	_, err = fx.service.AddPassword(ctx, &usecase.AddPasswordInput{Password: "pw1"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
}

func TestAuthService_AddPassword_Overwrites(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = fx.service.AddPassword(ctx, &usecase.AddPasswordInput{Email: "a@x.com", Password: "pw2"})
	require.NoError(t, err)

	_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "pw2"})
	require.NoError(t, err)
}

func TestAuthService_UpdatePassword_MissingUpdateKeepsHash(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	before := fx.storedHash(t, "a@x.com")

	_, err = fx.service.UpdatePassword(ctx, &usecase.UpdatePasswordInput{Email: "a@x.com", Password: "pw1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordNotReset))
	assert.Equal(t, "Failed: Password not reset.", requireAppError(t, err).Message())
	assert.Equal(t, before, fx.storedHash(t, "a@x.com"))
}

func TestAuthService_UpdatePassword_BadCredentialsKeepHash(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	before := fx.storedHash(t, "a@x.com")

	tests := []struct {
		name  string
		input *usecase.UpdatePasswordInput
	}{
		{name: "wrong password", input: &usecase.UpdatePasswordInput{Email: "a@x.com", Password: "bad", PasswordUpdate: "pw2"}},
		{name: "unknown email", input: &usecase.UpdatePasswordInput{Email: "b@x.com", Password: "pw1", PasswordUpdate: "pw2"}},
		{name: "no credentials", input: &usecase.UpdatePasswordInput{PasswordUpdate: "pw2"}},
		{name: "nil input", input: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.service.UpdatePassword(ctx, tt.input)
			assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
		})
	}

	assert.Equal(t, before, fx.storedHash(t, "a@x.com"))
}

func TestAuthService_DeferredReset(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	reset, err := fx.service.RequestPasswordReset(ctx, &usecase.RequestPasswordResetInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEmpty(t, reset.ResetToken)
	assert.False(t, reset.ExpiresAt.IsZero())

	status, err := fx.service.ResetPassword(ctx, &usecase.ResetPasswordInput{ResetToken: reset.ResetToken, NewPassword: "pw2"})
	require.NoError(t, err)
	assert.True(t, status.Success)

	_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "a@x.com", Password: "pw2"})
	require.NoError(t, err)

	// The token is spent.
	_, err = fx.service.ResetPassword(ctx, &usecase.ResetPasswordInput{ResetToken: reset.ResetToken, NewPassword: "pw3"})
	assert.True(t, errors.Is(err, domainerrors.ErrResetTokenInvalid))
}

func TestAuthService_DeferredReset_InvalidatedByAddPassword(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	reset, err := fx.service.RequestPasswordReset(ctx, &usecase.RequestPasswordResetInput{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = fx.service.AddPassword(ctx, &usecase.AddPasswordInput{Email: "a@x.com", Password: "other"})
	require.NoError(t, err)
	before := fx.storedHash(t, "a@x.com")

	_, err = fx.service.ResetPassword(ctx, &usecase.ResetPasswordInput{ResetToken: reset.ResetToken, NewPassword: "pw2"})
	assert.True(t, errors.Is(err, domainerrors.ErrResetTokenInvalid))
	assert.Equal(t, before, fx.storedHash(t, "a@x.com"))
}

func TestAuthService_ResetPassword_Validation(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.ResetPassword(ctx, &usecase.ResetPasswordInput{ResetToken: "whatever"})
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordNotReset))

	_, err = fx.service.ResetPassword(ctx, &usecase.ResetPasswordInput{NewPassword: "pw2"})
	assert.True(t, errors.Is(err, domainerrors.ErrResetTokenInvalid))

	_, err = fx.service.RequestPasswordReset(ctx, &usecase.RequestPasswordResetInput{Email: "nobody@x.com", Password: "pw"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}
