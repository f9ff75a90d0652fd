package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"authgate/internal/delivery/api/response"
	domainerrors "authgate/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, err error) (*httptest.ResponseRecorder, response.Envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))).HandleHTTPError(err, c)

	var body response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)

	return rec, body
}

func TestErrorMiddleware_AppError(t *testing.T) {
	err := errors.Wrap(domainerrors.ErrValidationFailed.WithDetails("email failed on 'email'"), "add user")

	rec, body := handle(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.Equal(t, "email failed on 'email'", body.Error.Details)
}

func TestErrorMiddleware_UnauthorizedHidesDetails(t *testing.T) {
	rec, body := handle(t, domainerrors.ErrInvalidCredentials.WithDetails("password mismatch"))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password.", body.Error.Message)
	assert.Nil(t, body.Error.Details)
}

func TestErrorMiddleware_HTTPError(t *testing.T) {
	rec, body := handle(t, echo.NewHTTPError(http.StatusBadRequest, "Request body is not valid JSON"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "HTTP_ERROR", body.Error.Code)
	assert.Equal(t, "Request body is not valid JSON", body.Error.Message)
}

func TestErrorMiddleware_UnknownError(t *testing.T) {
	rec, body := handle(t, errors.New("nil map write"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, rec.Body.String(), "nil map write")
}

func TestErrorMiddleware_SkipsCommittedResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	require.NoError(t, c.NoContent(http.StatusNoContent))

	NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))).HandleHTTPError(errors.New("late"), c)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
