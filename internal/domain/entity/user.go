// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the account a set of credentials belongs to.
type User struct {
	ID           uuid.UUID // Opaque identity, never reused.
	Email        string    // Unique login identifier, stored normalized.
	Username     string    // Name carried in access token claims. Equal to Email for accounts created here.
	PasswordHash string    // bcrypt hash; empty until a password is set.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether a password has been set for the user.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// NormalizeEmail returns the canonical form used for storage and lookups,
// which makes email uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
