// Package memory provides a process-local user store for development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"

	"github.com/google/uuid"
)

// userRepository keeps users in maps guarded by a single mutex, which makes
// every method a single atomic step.
type userRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*entity.User
	byEmail map[string]uuid.UUID
	now     func() time.Time
}

// NewUserRepository creates an empty in-memory UserRepository.
func NewUserRepository() repository.UserRepository {
	return &userRepository{
		byID:    make(map[uuid.UUID]*entity.User),
		byEmail: make(map[string]uuid.UUID),
		now:     time.Now,
	}
}

func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by id")
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	user, ok := repo.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return clone(user), nil
}

func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user by email")
	}

	repo.mu.RLock()
	defer repo.mu.RUnlock()

	id, ok := repo.byEmail[entity.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return clone(repo.byID[id]), nil
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	email := entity.NormalizeEmail(user.Email)

	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, exists := repo.byEmail[email]; exists {
		return domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := repo.now()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now

	repo.byID[user.ID] = clone(user)
	repo.byEmail[email] = user.ID

	return nil
}

func (repo *userRepository) SetPassword(ctx context.Context, id uuid.UUID, newHash string) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to set password")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, ok := repo.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = newHash
	user.UpdatedAt = repo.now()

	return nil
}

func (repo *userRepository) CompareAndSetPassword(ctx context.Context, id uuid.UUID, expectedHash, newHash string) error {
	if err := ctx.Err(); err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to set password")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()

	user, ok := repo.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if user.PasswordHash != expectedHash {
		return repository.ErrPasswordChanged
	}
	user.PasswordHash = newHash
	user.UpdatedAt = repo.now()

	return nil
}

func clone(user *entity.User) *entity.User {
	copied := *user

	return &copied
}
