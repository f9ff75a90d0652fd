// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"authgate/internal/domain/entity"

	"github.com/google/uuid"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrPasswordChanged is returned by CompareAndSetPassword when the stored
	// hash no longer equals the expected one.
	ErrPasswordChanged = errors.New("password hash changed concurrently")
)

// UserRepository defines the standard operations for user persistence.
// Implementations must make Create and each password write atomic for a single row.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single user by their normalized email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new user. It fails with domainerrors.ErrUserAlreadyExists
	// when the email is taken. ID and timestamps are filled in on success.
	Create(ctx context.Context, user *entity.User) error

	// SetPassword replaces the password hash unconditionally.
	SetPassword(ctx context.Context, id uuid.UUID, newHash string) error

	// CompareAndSetPassword replaces the password hash only if it still equals expectedHash.
	CompareAndSetPassword(ctx context.Context, id uuid.UUID, expectedHash, newHash string) error
}
