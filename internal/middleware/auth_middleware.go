package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/arzan03/campus-connect/internal/apperr"
	"github.com/arzan03/campus-connect/internal/models"
)

// userLocal is the Locals key the authenticated user is stored under.
const userLocal = "user"

// Authenticate returns a middleware that validates the bearer token and
// loads the referenced user onto the request context. A token whose user has
// since been deleted is rejected.
func Authenticate(jwtSecret string, users models.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return apperr.Unauthorized("Missing token")
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == "" || tokenString == header {
			return apperr.Unauthorized("Invalid token format")
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return apperr.Unauthorized("Token expired")
			}
			return apperr.Unauthorized("Invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return apperr.Unauthorized("Invalid token claims")
		}
		userID, ok := claims["user_id"].(string)
		if !ok {
			return apperr.Unauthorized("Invalid token payload")
		}
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return apperr.Unauthorized("Invalid token payload")
		}

		user, err := users.GetByID(c.Context(), objID)
		if errors.Is(err, models.ErrNotFound) {
			return apperr.Unauthorized("User no longer exists")
		}
		if err != nil {
			return err
		}

		c.Locals(userLocal, user)
		return c.Next()
	}
}

// RequireRoles returns a middleware rejecting users whose role is not in the
// allowed set. Must run after Authenticate.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return apperr.Forbidden("Access denied")
	}
}

// CurrentUser returns the authenticated user attached by Authenticate.
func CurrentUser(c *fiber.Ctx) models.User {
	user, _ := c.Locals(userLocal).(models.User)
	return user
}
