package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/models"
	"fintrack/internal/repository"
	"fintrack/pkg/auth"
	"fintrack/pkg/session"

	"go.uber.org/zap"
)

const (
	maxNameLength  = 100
	maxEmailLength = 100
)

// UserStore is the credential store the auth service depends on.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	users    UserStore
	hasher   *auth.Hasher
	sessions *session.Manager
	logger   *zap.Logger
}

func NewAuthService(users UserStore, hasher *auth.Hasher, sessions *session.Manager, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a user. The email pre-check only short-cuts the common
// case; the unique constraint decides races, and both surface as ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := cleanText(in.Name)
	email := strings.TrimSpace(in.Email)

	verr := &ValidationError{}
	if name == "" {
		verr.add("name is required")
	} else if tooLong(name, maxNameLength) {
		verr.add(fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}
	if email == "" {
		verr.add("email is required")
	} else if tooLong(email, maxEmailLength) {
		verr.add(fmt.Sprintf("email must be at most %d characters", maxEmailLength))
	}
	if in.Password == "" {
		verr.add("password is required")
	} else if len(in.Password) > auth.MaxPasswordBytes {
		verr.add(fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes))
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashedPassword, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.logger.Info("Concurrent registration lost the unique constraint race", zap.String("email", email))
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords are indistinguishable to the caller, in result and in timing.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *session.Session, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, session.Identity{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return user, sess, nil
}

// Logout destroys the session behind token, if any.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// Authenticate resolves a session token; session.ErrNotFound when it is not live.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.Resolve(ctx, token)
}
