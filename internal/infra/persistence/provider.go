// Package persistence selects the user store backend configured for the process.
package persistence

import (
	"log/slog"

	"authgate/config"
	"authgate/internal/domain/repository"
	"authgate/internal/errors"
	"authgate/internal/infra/persistence/memory"
	"authgate/internal/infra/persistence/postgres"

	"go.uber.org/fx"
)

// Params defines the parameters required to build the user store.
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewUserRepository returns the store named by storage.driver. The
// PostgreSQL pool is only opened when that driver is selected.
func NewUserRepository(params Params) (repository.UserRepository, error) {
	switch params.Config.Storage.Driver {
	case config.StorageDriverMemory:
		params.Logger.Warn("Using in-memory user store; accounts are lost on restart")

		return memory.NewUserRepository(), nil
	case config.StorageDriverPostgres, "":
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}

		return postgres.NewUserRepository(db), nil
	default:
		return nil, errors.Errorf("unknown storage driver: %s", params.Config.Storage.Driver)
	}
}
