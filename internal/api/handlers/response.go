package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"fintrack/internal/dto"
	"fintrack/internal/service"
	"fintrack/pkg/middleware"
	"fintrack/pkg/postgres"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// bindJSON decodes the body into dst and runs its validate tags. A non-nil
// error has already been written to the response.
func bindJSON(c *fiber.Ctx, dst any) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return false, errorJSON(c, fiber.StatusBadRequest, "Validation failed", validationProblems(err)...)
	}
	return true, nil
}

func validationProblems(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			problems = append(problems, fmt.Sprintf("%s is required", fe.Field()))
		case "email":
			problems = append(problems, fmt.Sprintf("%s must be a valid email address", fe.Field()))
		case "max":
			problems = append(problems, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		default:
			problems = append(problems, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return problems
}

func errorJSON(c *fiber.Ctx, status int, msg string, details ...string) error {
	return c.Status(status).JSON(dto.ErrorResponse{
		Success: false,
		Error:   msg,
		Details: details,
	})
}

// failure maps service errors to responses. Anything unrecognised is logged
// and answered with a generic 500.
func failure(c *fiber.Ctx, logger *zap.Logger, op string, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return errorJSON(c, fiber.StatusBadRequest, "Validation failed", verr.Problems...)
	case errors.Is(err, service.ErrEmailTaken):
		return errorJSON(c, fiber.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, postgres.ErrAcquireTimeout):
		logger.Warn(op+" failed: database busy",
			zap.Error(err),
			zap.String("request_id", middleware.RequestID(c)),
		)
		return errorJSON(c, fiber.StatusServiceUnavailable, "Service temporarily unavailable")
	}

	logger.Error(op+" failed",
		zap.Error(err),
		zap.String("request_id", middleware.RequestID(c)),
	)
	return errorJSON(c, fiber.StatusInternalServerError, "Internal server error")
}
