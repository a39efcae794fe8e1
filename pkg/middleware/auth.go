// Package middleware holds fiber middleware shared by the HTTP routes.
package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/monegment/monegment/pkg/config"
)

// UserContextKey is where the verified *jwt.Token is stored in fiber locals.
const UserContextKey = "user"

// JwtProtected verifies HS256 bearer tokens signed with cfg.Secret.
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.Secret)},
		ContextKey:   UserContextKey,
		ErrorHandler: jwtError,
	})
}

// Token returns the verified token of the request, or nil.
func Token(c *fiber.Ctx) *jwt.Token {
	token, _ := c.Locals(UserContextKey).(*jwt.Token)
	return token
}

func jwtError(c *fiber.Ctx, err error) error {
	status, title := fiber.StatusUnauthorized, "Invalid or expired JWT"
	if err.Error() == jwtware.ErrJWTMissingOrMalformed.Error() {
		status, title = fiber.StatusBadRequest, "Missing or malformed JWT"
	}
	return c.Status(status).JSON(fiber.Map{
		"type":     "about:blank",
		"title":    title,
		"status":   status,
		"detail":   err.Error(),
		"instance": c.OriginalURL(),
	}, "application/problem+json")
}
