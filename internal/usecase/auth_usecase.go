// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// LoginInput carries the credentials presented by the caller. It is never persisted.
type LoginInput struct {
	Email    string
	Password string
}

// AddUserInput defines the data required to create an account. Password is optional.
type AddUserInput struct {
	Email    string
	Password string
}

// AddPasswordInput sets the password of an existing account.
type AddPasswordInput struct {
	Email    string
	Password string
}

// UpdatePasswordInput re-verifies the current credentials and replaces the
// password with PasswordUpdate.
type UpdatePasswordInput struct {
	Email          string
	Password       string
	PasswordUpdate string
}

// RequestPasswordResetInput re-verifies the current credentials and asks for
// a reset token to be redeemed later.
type RequestPasswordResetInput struct {
	Email    string
	Password string
}

// ResetPasswordInput redeems a previously issued reset token.
type ResetPasswordInput struct {
	ResetToken  string
	NewPassword string
}

// --- Output DTOs ---

// LoginOutput returns the signed access token.
type LoginOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserSummary describes an account without exposing its password hash.
type UserSummary struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	HasPassword bool      `json:"hasPassword"`
	CreatedAt   time.Time `json:"createdAt"`
}

// StatusOutput is the result of a password mutation.
type StatusOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResetTokenOutput returns a reset token for later redemption.
type ResetTokenOutput struct {
	ResetToken string    `json:"resetToken"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// AuthUsecase defines the credential and password operations exposed to the delivery layer.
type AuthUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	AddUser(ctx context.Context, input *AddUserInput) (*UserSummary, error)
	AddPassword(ctx context.Context, input *AddPasswordInput) (*StatusOutput, error)
	UpdatePassword(ctx context.Context, input *UpdatePasswordInput) (*StatusOutput, error)
	RequestPasswordReset(ctx context.Context, input *RequestPasswordResetInput) (*ResetTokenOutput, error)
	ResetPassword(ctx context.Context, input *ResetPasswordInput) (*StatusOutput, error)
}
