package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/payvault/backend/internal/config"
)

const (
	UserIDKey  = "user_id"
	IsAdminKey = "is_admin"
)

// Claims carried in tokens issued by the identity provider. The subject is
// the account id.
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Auth validates the identity provider's bearer token and stashes the
// subject in Locals. Credential checks themselves live entirely with the
// provider; this only verifies the token it issued.
func Auth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("Authorization")
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing bearer token",
			})
		}

		claims, err := ValidateToken(token, cfg.Server.JWTSecret)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token: " + err.Error(),
			})
		}

		c.Locals(UserIDKey, claims.Subject)
		c.Locals(IsAdminKey, claims.Admin)

		return c.Next()
	}
}

// AdminOnly gates admin routes. Must run after Auth.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if admin, ok := c.Locals(IsAdminKey).(bool); !ok || !admin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "admin access required",
			})
		}
		return c.Next()
	}
}

func ValidateToken(token, secret string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

func GetUserID(c *fiber.Ctx) string {
	userID, ok := c.Locals(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}
