package handlers

import (
	"context"

	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/service"
	"fintrack/pkg/middleware"
	"fintrack/pkg/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *session.Session, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	authService AuthService
	cookie      middleware.CookieConfig
	logger      *zap.Logger
}

func NewAuthHandler(authService AuthService, cookie middleware.CookieConfig, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create an account. Does not log the user in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 200 {object} dto.UserEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/cadastrar [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	user, err := h.authService.Register(c.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return failure(c, h.logger, "Registration", err)
	}

	return c.JSON(dto.UserEnvelope{
		Success: true,
		Message: "User registered successfully",
		User:    dto.NewUserResponse(user),
	})
}

// Login godoc
// @Summary Log in
// @Description Check credentials and start a cookie session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.UserEnvelope
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	user, sess, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return failure(c, h.logger, "Login", err)
	}

	middleware.SetSessionCookie(c, h.cookie, sess)

	return c.JSON(dto.UserEnvelope{
		Success: true,
		Message: "Login successful",
		User:    dto.NewUserResponse(user),
	})
}

// Logout godoc
// @Summary Log out
// @Description Destroy the current session, if any, and clear the cookie
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /api/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := middleware.SessionToken(c, h.cookie); token != "" {
		if err := h.authService.Logout(c.Context(), token); err != nil {
			return failure(c, h.logger, "Logout", err)
		}
	}

	middleware.ClearSessionCookie(c, h.cookie)

	return c.JSON(dto.MessageResponse{
		Success: true,
		Message: "Logout successful",
	})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserEnvelope
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/usuario [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, "Not authenticated")
	}

	return c.JSON(dto.UserEnvelope{
		Success: true,
		User:    dto.UserFromIdentity(sess.Identity),
	})
}
