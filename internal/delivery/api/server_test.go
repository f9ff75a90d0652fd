package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authgate/config"
	apimiddleware "authgate/internal/delivery/api/middleware"
	"authgate/internal/delivery/api/response"
	"authgate/internal/delivery/api/router"
	"authgate/internal/delivery/api/router/handler"
	deliverycontext "authgate/internal/delivery/context"
	"authgate/internal/infra/auth"
	"authgate/internal/infra/persistence/memory"
	"authgate/internal/usecase"
	"authgate/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	adminEmail    = "admin@x.com"
	adminPassword = "admin-pw"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorInfo `json:"error"`
	Meta  response.MetaInfo   `json:"meta"`
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{BcryptCost: 4},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.Token = config.TokenConfig{
		Secret:   "api_test_access_secret_long_enough",
		Issuer:   "authgate-test",
		Audience: "authgate-test",
		TTL:      time.Hour,
	}
	cfg.Reset = config.ResetConfig{
		Secret: "api_test_reset_secret_long_enough",
		TTL:    time.Hour,
	}

	return cfg
}

// newTestEcho wires the whole stack over the in-memory store and seeds an
// admin account that can obtain a bearer token.
func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := newTestConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := memory.NewUserRepository()
	hasher := auth.NewBcryptHasher(cfg)

	issuer, err := auth.NewJWTIssuer(auth.JWTIssuerParams{Config: cfg})
	require.NoError(t, err)
	resetSvc, err := auth.NewResetTokenService(auth.ResetTokenServiceParams{
		Config:   cfg,
		UserRepo: repo,
		Hasher:   hasher,
		Logger:   logger,
	})
	require.NoError(t, err)

	uc := impl.NewAuthService(impl.AuthServiceParams{
		UserRepo:     repo,
		Hasher:       hasher,
		TokenIssuer:  issuer,
		ResetService: resetSvc,
		Logger:       logger,
	})
	_, err = uc.AddUser(context.Background(), &usecase.AddUserInput{Email: adminEmail, Password: adminPassword})
	require.NoError(t, err)

	return NewEcho(cfg, logger, router.RouterParams{
		AuthHandler:    handler.NewAuthHandler(uc, logger),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(issuer),
	})
}

func post(t *testing.T, e *echo.Echo, path, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return rec, env
}

func login(t *testing.T, e *echo.Echo, email, password string) string {
	t.Helper()

	rec, env := post(t, e, "/api/values/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out usecase.LoginOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.Token)

	return out.Token
}

func TestAPI_Health(t *testing.T) {
	e := newTestEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get(deliverycontext.HeaderXRequestID))
	assert.Contains(t, rec.Body.String(), `"request_id":"req-123"`)
}

func TestAPI_AccountLifecycle(t *testing.T) {
	e := newTestEcho(t)
	adminToken := login(t, e, adminEmail, adminPassword)

	rec, env := post(t, e, "/api/values/addUser", adminToken, map[string]string{"email": "A@x.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var summary usecase.UserSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "a@x.com", summary.Email)
	assert.False(t, summary.HasPassword)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec, _ = post(t, e, "/api/values/addPw", adminToken, map[string]string{"email": "a@x.com", "password": "pw1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Password set successfully!")

	userToken := login(t, e, "a@x.com", "pw1")

	rec, _ = post(t, e, "/api/values/updatePw", userToken, map[string]string{
		"email":          "a@x.com",
		"password":       "pw1",
		"passwordUpdate": "pw2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Password reset successfully!")

	rec, env = post(t, e, "/api/values/login", "", map[string]string{"email": "a@x.com", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	assert.NotEqual(t, userToken, login(t, e, "a@x.com", "pw2"))
}

func TestAPI_DeferredReset(t *testing.T) {
	e := newTestEcho(t)
	adminToken := login(t, e, adminEmail, adminPassword)

	rec, env := post(t, e, "/api/values/resetPw/request", adminToken, map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var reset usecase.ResetTokenOutput
	require.NoError(t, json.Unmarshal(env.Data, &reset))

	body := map[string]string{"resetToken": reset.ResetToken, "newPassword": "new-admin-pw"}
	rec, _ = post(t, e, "/api/values/resetPw/confirm", adminToken, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = post(t, e, "/api/values/resetPw/confirm", adminToken, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "RESET_TOKEN_INVALID", env.Error.Code)

	login(t, e, adminEmail, "new-admin-pw")
}

func TestAPI_LoginFailuresAreIndistinguishable(t *testing.T) {
	e := newTestEcho(t)

	unknownRec, unknown := post(t, e, "/api/values/login", "", map[string]string{"email": "nobody@x.com", "password": "pw"})
	wrongRec, wrong := post(t, e, "/api/values/login", "", map[string]string{"email": adminEmail, "password": "pw"})
	missingRec, missing := post(t, e, "/api/values/login", "", map[string]string{})

	for _, rec := range []*httptest.ResponseRecorder{unknownRec, wrongRec, missingRec} {
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	assert.Equal(t, *wrong.Error, *unknown.Error)
	assert.Equal(t, *wrong.Error, *missing.Error)
	assert.Nil(t, wrong.Error.Details)
}

func TestAPI_BearerRequired(t *testing.T) {
	e := newTestEcho(t)

	paths := []string{
		"/api/values/addUser",
		"/api/values/addPw",
		"/api/values/updatePw",
		"/api/values/resetPw/request",
		"/api/values/resetPw/confirm",
	}

	for _, path := range paths {
		for _, bearer := range []string{"", "not-a-token"} {
			rec, env := post(t, e, path, bearer, map[string]string{"email": "a@x.com", "password": "pw"})
			assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
			require.NotNil(t, env.Error, path)
			assert.Equal(t, "TOKEN_INVALID", env.Error.Code, path)
		}
	}
}

func TestAPI_ErrorMapping(t *testing.T) {
	e := newTestEcho(t)
	adminToken := login(t, e, adminEmail, adminPassword)

	rec, env := post(t, e, "/api/values/addUser", adminToken, map[string]string{"email": adminEmail})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "USER_ALREADY_EXISTS", env.Error.Code)

	rec, env = post(t, e, "/api/values/addUser", adminToken, map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.NotNil(t, env.Error.Details)

	rec, env = post(t, e, "/api/values/updatePw", adminToken, map[string]string{"email": adminEmail, "password": adminPassword})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "PASSWORD_NOT_RESET", env.Error.Code)
	assert.Equal(t, "Failed: Password not reset.", env.Error.Message)

	rec, env = post(t, e, "/api/values/addPw", adminToken, map[string]string{"email": "ghost@x.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Error.Code)

	rec, env = post(t, e, "/api/values/login", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "HTTP_ERROR", env.Error.Code)
}
