package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/campus-connect/internal/apperr"
	"github.com/arzan03/campus-connect/internal/models"
)

const testSecret = "test-secret"

type stubUserStore struct {
	users map[primitive.ObjectID]models.User
}

func (s *stubUserStore) Create(_ context.Context, user models.User) (models.User, error) {
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserStore) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return user, nil
}

func (s *stubUserStore) GetByEmail(_ context.Context, _ string) (models.User, error) {
	return models.User{}, models.ErrNotFound
}

func (s *stubUserStore) Update(_ context.Context, user models.User) (models.User, error) {
	return user, nil
}

func (s *stubUserStore) List(_ context.Context) ([]models.User, error) { return nil, nil }

func (s *stubUserStore) Count(_ context.Context) (int64, error) { return 0, nil }

func (s *stubUserStore) Delete(_ context.Context, _ primitive.ObjectID) error { return nil }

func signToken(t *testing.T, userID string, role models.Role, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    string(role),
		"exp":     time.Now().Add(expiresIn).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newTestApp(users models.UserStore) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler(false)})
	app.Get("/me", Authenticate(testSecret, users), func(c *fiber.Ctx) error {
		return c.JSON(CurrentUser(c))
	})
	app.Get("/admin", Authenticate(testSecret, users), RequireRoles(models.RoleAuthority), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthenticate(t *testing.T) {
	user := models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Asha",
		Email: "asha@campus.edu",
		Role:  models.RoleUser,
	}
	store := &stubUserStore{users: map[primitive.ObjectID]models.User{user.ID: user}}
	app := newTestApp(store)

	t.Run("missing token", func(t *testing.T) {
		resp := doRequest(t, app, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("not a bearer token", func(t *testing.T) {
		resp := doRequest(t, app, "/me", "Basic abc123")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		resp := doRequest(t, app, "/me", "Bearer not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		token := signToken(t, user.ID.Hex(), user.Role, -time.Minute)
		resp := doRequest(t, app, "/me", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Token expired", body["message"])
	})

	t.Run("token for deleted user", func(t *testing.T) {
		token := signToken(t, primitive.NewObjectID().Hex(), models.RoleUser, time.Hour)
		resp := doRequest(t, app, "/me", "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token loads user", func(t *testing.T) {
		token := signToken(t, user.ID.Hex(), user.Role, time.Hour)
		resp := doRequest(t, app, "/me", "Bearer "+token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got models.User
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, user.Email, got.Email)
	})
}

func TestRequireRoles(t *testing.T) {
	student := models.User{ID: primitive.NewObjectID(), Role: models.RoleUser}
	authority := models.User{ID: primitive.NewObjectID(), Role: models.RoleAuthority}
	store := &stubUserStore{users: map[primitive.ObjectID]models.User{
		student.ID:   student,
		authority.ID: authority,
	}}
	app := newTestApp(store)

	t.Run("disallowed role", func(t *testing.T) {
		token := signToken(t, student.ID.Hex(), student.Role, time.Hour)
		resp := doRequest(t, app, "/admin", "Bearer "+token)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("allowed role", func(t *testing.T) {
		token := signToken(t, authority.ID.Hex(), authority.Role, time.Hour)
		resp := doRequest(t, app, "/admin", "Bearer "+token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
