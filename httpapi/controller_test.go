package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillhub/identity"
	"github.com/skillhub/identity/httpapi"
	"github.com/skillhub/identity/middleware/gateware"
	"github.com/skillhub/identity/repository"
)

type captureNotifier struct {
	mu        sync.Mutex
	lastOTP   string
	lastReset string
}

func (n *captureNotifier) SendVerificationCode(_ context.Context, _, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastOTP = code
	return nil
}

func (n *captureNotifier) SendPasswordResetLink(_ context.Context, _, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lastReset = token
	return nil
}

func (n *captureNotifier) SendWelcome(_ context.Context, _ string) error { return nil }

func (n *captureNotifier) otp() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.lastOTP
}

type apiFixture struct {
	app      *fiber.App
	notifier *captureNotifier
}

// newAPIFixture wires the full request pipeline the way cmd/server does:
// gate, then routes, over an in-memory store.
func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	store := repository.NewMemoryStore()
	notifier := &captureNotifier{}
	codec := identity.NewTokenService([]byte("test-signing-key"), 15*time.Minute, "skillhub-identity", nil)
	engine := identity.NewEngine(store, codec, notifier)

	app := fiber.New()
	app.Use(gateware.New(gateware.Config{
		Verifier: gateware.VerifierFunc(func(token string) (gateware.AuthClaims, error) {
			return codec.Verify(token)
		}),
		PublicPaths: []string{
			"/healthz",
			"/api/auth/register",
			"/api/auth/login",
			"/api/auth/verify-email",
			"/api/auth/forgot-password",
			"/api/auth/reset-password",
			"/api/auth/refresh-token",
		},
	}))
	httpapi.Register(app, httpapi.NewController(engine, nil))

	return &apiFixture{app: app, notifier: notifier}
}

func (f *apiFixture) post(t *testing.T, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()
	return f.do(t, fiber.MethodPost, path, body, headers...)
}

func (f *apiFixture) do(t *testing.T, method, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	parsed := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp.StatusCode, parsed
}

func (f *apiFixture) registerVerifyLogin(t *testing.T, email, password string) map[string]any {
	t.Helper()

	status, _ := f.post(t, "/api/auth/register", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = f.post(t, "/api/auth/verify-email", `{"email":"`+email+`","otp":"`+f.notifier.otp()+`"}`)
	require.Equal(t, fiber.StatusOK, status)

	status, body := f.post(t, "/api/auth/login", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, fiber.StatusOK, status)
	return body
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(t, fiber.MethodGet, "/healthz", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestRegisterEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.post(t, "/api/auth/register", `{"email":"a@x.com","password":"P@ssw0rd1"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Contains(t, body["message"], "Registration successful")

	// duplicate registration conflicts
	status, _ = f.post(t, "/api/auth/register", `{"email":"a@x.com","password":"P@ssw0rd1"}`)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestRegisterEndpointValidation(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.post(t, "/api/auth/register", `{"email":"not-an-email","password":"weak"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	fields, ok := body["errors"].(map[string]any)
	require.True(t, ok, "expected per-field errors, got %v", body)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestRegisterEndpointMalformedBody(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.post(t, "/api/auth/register", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "malformed request body", body["message"])
}

func TestVerifyEmailEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	status, _ := f.post(t, "/api/auth/register", `{"email":"a@x.com","password":"P@ssw0rd1"}`)
	require.Equal(t, fiber.StatusCreated, status)

	// wrong code
	wrong := "000000"
	if f.notifier.otp() == wrong {
		wrong = "000001"
	}
	status, _ = f.post(t, "/api/auth/verify-email", `{"email":"a@x.com","otp":"`+wrong+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// right code
	status, body := f.post(t, "/api/auth/verify-email", `{"email":"a@x.com","otp":"`+f.notifier.otp()+`"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["message"], "Email verified")

	// replay conflicts
	status, _ = f.post(t, "/api/auth/verify-email", `{"email":"a@x.com","otp":"`+f.notifier.otp()+`"}`)
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestLoginEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	body := f.registerVerifyLogin(t, "a@x.com", "P@ssw0rd1")

	assert.NotEmpty(t, body["access_token"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.Equal(t, "Bearer", body["token_type"])
	assert.Equal(t, "a@x.com", body["email"])
}

func TestLoginEndpointBadCredentials(t *testing.T) {
	f := newAPIFixture(t)
	f.registerVerifyLogin(t, "a@x.com", "P@ssw0rd1")

	status, _ := f.post(t, "/api/auth/login", `{"email":"a@x.com","password":"WrongP@ss1"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = f.post(t, "/api/auth/login", `{"email":"ghost@x.com","password":"P@ssw0rd1"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLoginEndpointUnverifiedAccount(t *testing.T) {
	f := newAPIFixture(t)

	status, _ := f.post(t, "/api/auth/register", `{"email":"a@x.com","password":"P@ssw0rd1"}`)
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = f.post(t, "/api/auth/login", `{"email":"a@x.com","password":"P@ssw0rd1"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRefreshTokenEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	login := f.registerVerifyLogin(t, "a@x.com", "P@ssw0rd1")

	refresh, _ := login["refresh_token"].(string)
	require.NotEmpty(t, refresh)

	status, body := f.post(t, "/api/auth/refresh-token", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["access_token"])

	status, _ = f.post(t, "/api/auth/refresh-token", `{"refresh_token":"no-such-secret"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLogoutEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	login := f.registerVerifyLogin(t, "a@x.com", "P@ssw0rd1")

	access, _ := login["access_token"].(string)
	refresh, _ := login["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// logout goes through the gate with the bearer token
	status, body := f.post(t, "/api/auth/logout", "",
		fiber.HeaderAuthorization, "Bearer "+access)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Logout successful", body["message"])

	// refresh tokens are revoked afterwards
	status, _ = f.post(t, "/api/auth/refresh-token", `{"refresh_token":"`+refresh+`"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestLogoutEndpointWithoutToken(t *testing.T) {
	f := newAPIFixture(t)

	status, _ := f.post(t, "/api/auth/logout", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestForgotAndResetPasswordEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	f.registerVerifyLogin(t, "a@x.com", "P@ssw0rd1")

	status, existing := f.post(t, "/api/auth/forgot-password", `{"email":"a@x.com"}`)
	assert.Equal(t, fiber.StatusOK, status)

	status, missing := f.post(t, "/api/auth/forgot-password", `{"email":"ghost@x.com"}`)
	assert.Equal(t, fiber.StatusOK, status)

	// account enumeration is impossible: both bodies are identical
	assert.Equal(t, existing, missing)

	f.notifier.mu.Lock()
	token := f.notifier.lastReset
	f.notifier.mu.Unlock()
	require.NotEmpty(t, token)

	status, _ = f.post(t, "/api/auth/reset-password", `{"token":"`+token+`","new_password":"N3wP@ssword"}`)
	assert.Equal(t, fiber.StatusOK, status)

	// old password rejected, new one accepted
	status, _ = f.post(t, "/api/auth/login", `{"email":"a@x.com","password":"P@ssw0rd1"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	status, _ = f.post(t, "/api/auth/login", `{"email":"a@x.com","password":"N3wP@ssword"}`)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestResetPasswordEndpointBadToken(t *testing.T) {
	f := newAPIFixture(t)

	status, _ := f.post(t, "/api/auth/reset-password", `{"token":"bogus","new_password":"N3wP@ssword"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestValidateTokenEndpoint(t *testing.T) {
	f := newAPIFixture(t)
	login := f.registerVerifyLogin(t, "a@x.com", "P@ssw0rd1")

	access, _ := login["access_token"].(string)
	require.NotEmpty(t, access)

	status, body := f.do(t, fiber.MethodGet, "/api/auth/validate-token", "",
		fiber.HeaderAuthorization, "Bearer "+access)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["message"], "Valid token for user")
}

func TestValidateTokenEndpointRejectsGarbage(t *testing.T) {
	f := newAPIFixture(t)

	// no token at all: the gate rejects it before the handler
	status, _ := f.do(t, fiber.MethodGet, "/api/auth/validate-token", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
