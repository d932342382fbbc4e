package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/pkg/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubResolver struct {
	sess  *session.Session
	err   error
	calls int
}

func (s *stubResolver) Authenticate(_ context.Context, token string) (*session.Session, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.sess == nil || s.sess.Token != token {
		return nil, session.ErrNotFound
	}
	return s.sess, nil
}

var testCookie = CookieConfig{Name: "sid"}

func newProtectedApp(resolver SessionResolver) *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireSession(resolver, testCookie, zap.NewNop()), func(c *fiber.Ctx) error {
		sess, ok := CurrentSession(c)
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(sess.Identity.Email)
	})
	return app
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestRequireSession(t *testing.T) {
	expires := time.Now().Add(2 * time.Hour).UTC().Truncate(time.Second)
	live := &session.Session{
		Token:     "tok-1",
		Identity:  session.Identity{UserID: 7, Name: "Ana", Email: "ana@example.com"},
		ExpiresAt: expires,
	}

	tests := []struct {
		name       string
		resolver   *stubResolver
		cookie     string
		wantStatus int
		wantCalls  int
	}{
		{name: "no cookie", resolver: &stubResolver{sess: live}, wantStatus: fiber.StatusUnauthorized, wantCalls: 0},
		{name: "unknown token", resolver: &stubResolver{sess: live}, cookie: "other", wantStatus: fiber.StatusUnauthorized, wantCalls: 1},
		{name: "store failure", resolver: &stubResolver{err: errors.New("redis down")}, cookie: "tok-1", wantStatus: fiber.StatusInternalServerError, wantCalls: 1},
		{name: "live session", resolver: &stubResolver{sess: live}, cookie: "tok-1", wantStatus: fiber.StatusOK, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newProtectedApp(tt.resolver)

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "sid", Value: tt.cookie})
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, tt.resolver.calls)
		})
	}
}

func TestRequireSession_RefreshesCookieWithSameExpiry(t *testing.T) {
	expires := time.Now().Add(3 * time.Hour).UTC().Truncate(time.Second)
	resolver := &stubResolver{sess: &session.Session{Token: "tok-1", ExpiresAt: expires}}
	app := newProtectedApp(resolver)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "tok-1"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	cookie := findCookie(resp, "sid")
	require.NotNil(t, cookie)
	assert.Equal(t, "tok-1", cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.True(t, cookie.Expires.Equal(expires), "expiry must not slide: got %v want %v", cookie.Expires, expires)
}

func TestRequireSession_UnknownTokenClearsCookie(t *testing.T) {
	app := newProtectedApp(&stubResolver{})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "stale"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	cookie := findCookie(resp, "sid")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
}

func TestCookieKey(t *testing.T) {
	a := CookieKey("secret")
	assert.Equal(t, a, CookieKey("secret"))
	assert.NotEqual(t, a, CookieKey("other"))
	// base64 of a 32-byte digest
	assert.Len(t, a, 44)
}
