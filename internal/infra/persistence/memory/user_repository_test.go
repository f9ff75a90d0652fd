package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"authgate/internal/domain/entity"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	user := &entity.User{Email: "  A@X.com ", Username: "a@x.com"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "a@x.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.FindByEmail(ctx, "a@X.COM")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	// Returned users are copies.
	byID.PasswordHash = "mutated"
	again, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, again.PasswordHash)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	_, err := repo.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	assert.ErrorIs(t, repo.SetPassword(ctx, uuid.New(), "h"), repository.ErrUserNotFound)
	assert.ErrorIs(t, repo.CompareAndSetPassword(ctx, uuid.New(), "", "h"), repository.ErrUserNotFound)
}

func TestUserRepository_ConcurrentCreateKeepsEmailUnique(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	const workers = 16
	var created atomic.Int32
	var conflicts atomic.Int32
	var wg sync.WaitGroup

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			err := repo.Create(ctx, &entity.User{Email: "dup@x.com", Username: "dup@x.com"})
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, domainerrors.ErrUserAlreadyExists):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	assert.Equal(t, int32(workers-1), conflicts.Load())
}

func TestUserRepository_CompareAndSetPassword(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	user := &entity.User{Email: "a@x.com", Username: "a@x.com", PasswordHash: "h1"}
	require.NoError(t, repo.Create(ctx, user))

	require.NoError(t, repo.CompareAndSetPassword(ctx, user.ID, "h1", "h2"))
	assert.ErrorIs(t, repo.CompareAndSetPassword(ctx, user.ID, "h1", "h3"), repository.ErrPasswordChanged)

	require.NoError(t, repo.SetPassword(ctx, user.ID, "h4"))
	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "h4", stored.PasswordHash)
}

func TestUserRepository_CancelledContext(t *testing.T) {
	repo := NewUserRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByEmail(ctx, "a@x.com")
	require.Error(t, err)

	var appErr domainerrors.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.True(t, errors.Is(err, context.Canceled))
}
