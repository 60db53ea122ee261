// Package middleware provides request-scoped middleware for the HTTP server.
package middleware

import (
	"strconv"
	"strings"

	"hrdesk/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the role claim required for catalog administration.
const RoleAdmin = "admin"

// AdminRequired enforces a valid HMAC-signed bearer token whose role claim is admin.
func AdminRequired(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid authorization header format"))
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, models.NewUnauthorizedError("Invalid token claims"))
		}

		if sub, ok := claims["sub"].(string); ok {
			if id, err := strconv.ParseUint(sub, 10, 32); err == nil {
				c.Locals("userID", uint(id))
			}
		}

		if role, _ := claims["role"].(string); role != RoleAdmin {
			return models.RespondWithError(c, models.NewForbiddenError("Admin role required"))
		}

		return c.Next()
	}
}
