// Package handler contains the HTTP handlers for the API.
package handler

import (
	"log/slog"
	"net/http"

	"authgate/internal/delivery/api/response"
	"authgate/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// credentialsRequest is the body accepted by every /api/values route. Each
// operation reads the fields it needs.
type credentialsRequest struct {
	Email          string `json:"email" mod:"trim,lcase" validate:"max=254"`
	Password       string `json:"password" validate:"max=1024"`
	PasswordUpdate string `json:"passwordUpdate" validate:"max=1024"`
	ResetToken     string `json:"resetToken" mod:"trim" validate:"max=4096"`
	NewPassword    string `json:"newPassword" validate:"max=1024"`
}

// addUserRequest is stricter than credentialsRequest: an account needs a real email.
type addUserRequest struct {
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email,max=254"`
	Password string `json:"password" validate:"max=1024"`
}

// AuthHandler exposes AuthUsecase over HTTP.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		uc:     uc,
		logger: logger,
	}
}

func bindRequest(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Request body is not valid JSON").SetInternal(err)
	}

	return errors.WithStack(c.Validate(req))
}

// Login handles POST /api/values/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	output, err := h.uc.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// AddUser handles POST /api/values/addUser.
func (h *AuthHandler) AddUser(c echo.Context) error {
	var req addUserRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	output, err := h.uc.AddUser(c.Request().Context(), &usecase.AddUserInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, output)
}

// AddPassword handles POST /api/values/addPw.
func (h *AuthHandler) AddPassword(c echo.Context) error {
	var req credentialsRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	output, err := h.uc.AddPassword(c.Request().Context(), &usecase.AddPasswordInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// UpdatePassword handles POST /api/values/updatePw.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	var req credentialsRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	output, err := h.uc.UpdatePassword(c.Request().Context(), &usecase.UpdatePasswordInput{
		Email:          req.Email,
		Password:       req.Password,
		PasswordUpdate: req.PasswordUpdate,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// RequestPasswordReset handles POST /api/values/resetPw/request.
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req credentialsRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	output, err := h.uc.RequestPasswordReset(c.Request().Context(), &usecase.RequestPasswordResetInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// ResetPassword handles POST /api/values/resetPw/confirm.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req credentialsRequest
	if err := bindRequest(c, &req); err != nil {
		return err
	}

	output, err := h.uc.ResetPassword(c.Request().Context(), &usecase.ResetPasswordInput{
		ResetToken:  req.ResetToken,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, output)
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
