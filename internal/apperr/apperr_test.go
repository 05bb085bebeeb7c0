package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWithError(production bool, err error) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: Handler(production)})
	app.Get("/boom", func(c *fiber.Ctx) error { return err })
	return app
}

func getBody(t *testing.T, app *fiber.App) (int, map[string]string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandler_DomainErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{Validation("bad input"), http.StatusBadRequest},
		{Conflict("duplicate"), http.StatusBadRequest},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{NotFound("missing"), http.StatusNotFound},
	}
	for _, tt := range tests {
		status, body := getBody(t, appWithError(true, tt.err))
		assert.Equal(t, tt.status, status)
		assert.Equal(t, tt.err.Error(), body["message"])
	}
}

func TestHandler_WrappedDomainError(t *testing.T) {
	wrapped := errors.Join(NotFound("missing issue"))
	status, body := getBody(t, appWithError(true, wrapped))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "missing issue", body["message"])
}

func TestHandler_InternalError(t *testing.T) {
	t.Run("production hides detail", func(t *testing.T) {
		status, body := getBody(t, appWithError(true, errors.New("connection refused")))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "Internal server error", body["message"])
		assert.Empty(t, body["error"])
	})

	t.Run("development includes detail", func(t *testing.T) {
		status, body := getBody(t, appWithError(false, errors.New("connection refused")))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "connection refused", body["error"])
	})
}

func TestHandler_FiberError(t *testing.T) {
	status, body := getBody(t, appWithError(true, fiber.NewError(fiber.StatusBadRequest, "Invalid request body")))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid request body", body["message"])
}
