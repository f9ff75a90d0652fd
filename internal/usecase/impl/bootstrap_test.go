package impl

import (
	"context"
	"testing"

	"authgate/config"
	domainerrors "authgate/internal/domain/errors"
	mockUsecase "authgate/internal/mocks/usecase"
	"authgate/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bootstrapConfig() *config.Config {
	cfg := newTestConfig()
	cfg.Auth.Bootstrap = config.BootstrapUser{Email: "admin@x.com", Password: "admin-pw"}

	return cfg
}

func TestEnsureBootstrapUser_CreatesThenSkips(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	cfg := bootstrapConfig()

	require.NoError(t, EnsureBootstrapUser(ctx, cfg, fx.service, newDiscardLogger()))
	require.NoError(t, EnsureBootstrapUser(ctx, cfg, fx.service, newDiscardLogger()))

	out, err := fx.service.Login(ctx, &usecase.LoginInput{Email: "admin@x.com", Password: "admin-pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
}

func TestEnsureBootstrapUser_KeepsExistingPassword(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	_, err := fx.service.AddUser(ctx, &usecase.AddUserInput{Email: "admin@x.com", Password: "rotated"})
	require.NoError(t, err)

	require.NoError(t, EnsureBootstrapUser(ctx, bootstrapConfig(), fx.service, newDiscardLogger()))

	_, err = fx.service.Login(ctx, &usecase.LoginInput{Email: "admin@x.com", Password: "rotated"})
	assert.NoError(t, err)
}

func TestEnsureBootstrapUser_Disabled(t *testing.T) {
	uc := mockUsecase.NewMockAuthUsecase(t)

	assert.NoError(t, EnsureBootstrapUser(context.Background(), newTestConfig(), uc, newDiscardLogger()))
}

func TestEnsureBootstrapUser_StoreFailure(t *testing.T) {
	uc := mockUsecase.NewMockAuthUsecase(t)
	uc.EXPECT().AddUser(context.Background(), &usecase.AddUserInput{Email: "admin@x.com", Password: "admin-pw"}).
		Return(nil, domainerrors.ErrUserCreationFailed)

	err := EnsureBootstrapUser(context.Background(), bootstrapConfig(), uc, newDiscardLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserCreationFailed))
}
