package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"tarvee/internal/auth"
	"tarvee/internal/model"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "Authorization"

	identityLocalKey = "identity"
	tokenLocalKey    = "session_token"
)

// Authenticate resolves the session token from the Authorization cookie or a
// Bearer header and stores the signed-in identity in context locals. Requests
// without a valid session continue anonymously.
func Authenticate(svc auth.Service, log *slog.Logger) fiber.Handler {
	if log == nil {
		log = slog.Default()
	}
	return func(c *fiber.Ctx) error {
		token := SessionToken(c)
		if token == "" {
			return c.Next()
		}
		c.Locals(tokenLocalKey, token)

		id, err := svc.Current(c.UserContext(), token)
		switch {
		case err == nil:
			c.Locals(identityLocalKey, id)
		case errors.Is(err, auth.ErrUnauthenticated):
		default:
			log.WarnContext(c.UserContext(), "session_lookup_failed",
				slog.String("request_id", RequestIDFrom(c)),
				slog.String("error", err.Error()),
			)
		}
		return c.Next()
	}
}

// RequireUser rejects anonymous requests with auth.ErrUnauthenticated, which
// the error handler renders as 401.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return auth.ErrUnauthenticated
		}
		return c.Next()
	}
}

// CurrentUser returns the identity resolved by Authenticate.
func CurrentUser(c *fiber.Ctx) (*model.Identity, bool) {
	id, ok := c.Locals(identityLocalKey).(*model.Identity)
	return id, ok && id != nil
}

// SessionToken reads the raw token from the request, preferring the cookie.
func SessionToken(c *fiber.Ctx) string {
	if tok, ok := c.Locals(tokenLocalKey).(string); ok {
		return tok
	}
	if v := strings.TrimSpace(c.Cookies(SessionCookie)); v != "" {
		return strings.TrimPrefix(v, "Bearer ")
	}
	h := c.Get(fiber.HeaderAuthorization)
	if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	return ""
}
