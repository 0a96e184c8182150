package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/payvault/backend/internal/config"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string, admin bool, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestApp() *fiber.App {
	cfg := &config.Config{}
	cfg.Server.JWTSecret = testSecret

	app := fiber.New()
	app.Get("/me", Auth(cfg), func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c))
	})
	app.Get("/admin", Auth(cfg), AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func request(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthAcceptsValidToken(t *testing.T) {
	app := newTestApp()
	token := signToken(t, testSecret, "alice", false, time.Hour)

	resp := request(t, app, "/me", token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRejectsMissingToken(t *testing.T) {
	app := newTestApp()

	resp := request(t, app, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	app := newTestApp()
	token := signToken(t, "other-secret", "alice", false, time.Hour)

	resp := request(t, app, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	app := newTestApp()
	token := signToken(t, testSecret, "alice", false, -time.Minute)

	resp := request(t, app, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRejectsTokenWithoutSubject(t *testing.T) {
	app := newTestApp()
	token := signToken(t, testSecret, "", false, time.Hour)

	resp := request(t, app, "/me", token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminOnlyForbidsRegularUsers(t *testing.T) {
	app := newTestApp()

	resp := request(t, app, "/admin", signToken(t, testSecret, "alice", false, time.Hour))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = request(t, app, "/admin", signToken(t, testSecret, "root", true, time.Hour))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidateTokenRejectsWrongAlgorithm(t *testing.T) {
	// alg=none tokens must never validate.
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ValidateToken(signed, testSecret)
	assert.Error(t, err)
}
