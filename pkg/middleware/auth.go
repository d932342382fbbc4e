package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"fintrack/pkg/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const localsSession = "session"

// SessionResolver turns a cookie token into a live session.
type SessionResolver interface {
	Authenticate(ctx context.Context, token string) (*session.Session, error)
}

// CookieConfig describes the session cookie. Secure defaults to false; it is
// a deployment decision and is never switched on implicitly.
type CookieConfig struct {
	Name   string
	Secure bool
}

// CookieKey derives the base64 AES-256 key encryptcookie expects from an
// arbitrary secret string.
func CookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func SetSessionCookie(c *fiber.Ctx, cfg CookieConfig, s *session.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.Name,
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HTTPOnly: true,
		Secure:   cfg.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookie(c *fiber.Ctx, cfg CookieConfig) {
	c.ClearCookie(cfg.Name)
}

// SessionToken returns the token carried by the request, or "".
func SessionToken(c *fiber.Ctx, cfg CookieConfig) string {
	return c.Cookies(cfg.Name)
}

// RequireSession rejects requests without a live session with 401. On
// success it stores the session for CurrentSession and re-sends the cookie
// with the same token and the same absolute expiry.
func RequireSession(resolver SessionResolver, cfg CookieConfig, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := SessionToken(c, cfg)
		if token == "" {
			logger.Debug("Missing session cookie", zap.String("path", c.Path()))
			return unauthenticated(c)
		}

		sess, err := resolver.Authenticate(c.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				ClearSessionCookie(c, cfg)
				return unauthenticated(c)
			}
			logger.Error("Session lookup failed",
				zap.Error(err),
				zap.String("request_id", RequestID(c)),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Internal server error",
			})
		}

		c.Locals(localsSession, sess)
		SetSessionCookie(c, cfg, sess)

		return c.Next()
	}
}

// CurrentSession returns the session stored by RequireSession.
func CurrentSession(c *fiber.Ctx) (*session.Session, bool) {
	sess, ok := c.Locals(localsSession).(*session.Session)
	return sess, ok && sess != nil
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"error":   "Not authenticated",
	})
}
