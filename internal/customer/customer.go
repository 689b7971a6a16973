// Package customer extracts the caller's identity from a validated JWT.
// Everything below the HTTP layer takes the customer id as a plain argument.
package customer

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/shop-checkout/internal/respond"
)

const (
	// SessionHeader names the session cart when the token carries no
	// session_id claim.
	SessionHeader = "X-Session-ID"

	contextKey = "user"
)

// Middleware rejects requests without a valid HS256 token signed with secret.
func Middleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: []byte(secret),
		ContextKey: contextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return respond.Fail(c, fiber.StatusUnauthorized, "unauthorized")
		},
	})
}

func claims(c *fiber.Ctx) (jwt.MapClaims, bool) {
	tok, ok := c.Locals(contextKey).(*jwt.Token)
	if !ok || tok == nil {
		return nil, false
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	return mc, ok
}

// IDFromCtx returns the user_id claim of the request token.
func IDFromCtx(c *fiber.Ctx) (int64, error) {
	mc, ok := claims(c)
	if !ok {
		return 0, fiber.ErrUnauthorized
	}
	var id int64
	switch v := mc["user_id"].(type) {
	case float64:
		id = int64(v)
	case int:
		id = int64(v)
	case int64:
		id = v
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fiber.ErrUnauthorized
		}
		id = n
	default:
		return 0, fiber.ErrUnauthorized
	}
	if id <= 0 {
		return 0, fiber.ErrUnauthorized
	}
	return id, nil
}

// SessionIDFromCtx prefers the session_id claim and falls back to the
// X-Session-ID header. It returns "" when neither is present.
func SessionIDFromCtx(c *fiber.Ctx) string {
	if mc, ok := claims(c); ok {
		if s, ok := mc["session_id"].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return strings.TrimSpace(c.Get(SessionHeader))
}
