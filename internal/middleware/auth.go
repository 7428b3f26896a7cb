package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"policyrelay/internal/auth"
)

// ActorIDKey is the fiber.Ctx.Locals key a handler reads to get the
// request's actor_id.
const ActorIDKey = "actor_id"

// BearerAuth extracts the Authorization header's bearer token, verifies it
// with verifier, and stamps the resulting actor_id onto the request
// context. A missing or unparseable token is rejected with 401; this
// middleware never checks roles or scopes beyond that — identity
// pass-through only.
func BearerAuth(verifier auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := verifier.VerifyToken(token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid bearer token")
		}

		c.Locals(ActorIDKey, claims.ActorID())
		return c.Next()
	}
}

// ActorID returns the actor_id stamped by BearerAuth, or "" if absent.
func ActorID(c *fiber.Ctx) string {
	id, _ := c.Locals(ActorIDKey).(string)
	return id
}
