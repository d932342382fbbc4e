// Package session keeps server-side login sessions keyed by an opaque token.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// DefaultTTL is the absolute lifetime of a session.
const DefaultTTL = 24 * time.Hour

const tokenBytes = 32

// ErrNotFound is returned for unknown, destroyed or expired tokens.
var ErrNotFound = errors.New("session not found")

// Identity is what an authenticated session knows about its user.
type Identity struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

type Session struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExpiredAt reports whether the session is no longer valid at t.
func (s *Session) ExpiredAt(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// Store persists sessions. Implementations must tolerate Delete on a missing
// token.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}

type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create binds identity to a fresh token that expires after the TTL.
func (m *Manager) Create(ctx context.Context, identity Identity) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		Token:     token,
		Identity:  identity,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}

// Resolve returns the live session for token or ErrNotFound.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	s, err := m.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.ExpiredAt(m.now()) {
		if err := m.store.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("failed to drop expired session: %w", err)
		}
		return nil, ErrNotFound
	}
	return s, nil
}

// Destroy is idempotent.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
