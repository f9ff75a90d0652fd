package impl

import (
	"context"
	"log/slog"

	"authgate/config"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// BootstrapParams holds dependencies for seeding the configured first account.
type BootstrapParams struct {
	fx.In
	fx.Lifecycle

	Config  *config.Config
	Usecase usecase.AuthUsecase
	Logger  *slog.Logger
}

// RegisterBootstrapUser seeds auth.bootstrap on start. The hook is appended
// after the store's own start hook, so migrations have already run.
func RegisterBootstrapUser(params BootstrapParams) {
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return EnsureBootstrapUser(ctx, params.Config, params.Usecase, params.Logger)
		},
	})
}

// EnsureBootstrapUser creates the bootstrap account unless it already exists.
// An existing account keeps its current password.
func EnsureBootstrapUser(ctx context.Context, cfg *config.Config, uc usecase.AuthUsecase, logger *slog.Logger) error {
	if cfg.Auth == nil || cfg.Auth.Bootstrap.Email == "" {
		return nil
	}

	_, err := uc.AddUser(ctx, &usecase.AddUserInput{
		Email:    cfg.Auth.Bootstrap.Email,
		Password: cfg.Auth.Bootstrap.Password,
	})
	switch {
	case err == nil:
		logger.Info("Bootstrap user created", slog.String("email", cfg.Auth.Bootstrap.Email))
	case errors.Is(err, domainerrors.ErrUserAlreadyExists):
		logger.Debug("Bootstrap user already present", slog.String("email", cfg.Auth.Bootstrap.Email))
	default:
		return errors.Wrap(err, "failed to seed bootstrap user")
	}

	return nil
}
