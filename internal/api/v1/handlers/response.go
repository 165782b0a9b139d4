package handlers

import (
	"errors"

	"teamtask/internal/config"
	"teamtask/internal/repository"
	"teamtask/internal/service"
	"teamtask/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves every v1 endpoint from injected dependencies.
type Handler struct {
	deps *config.Dependencies
}

func New(deps *config.Dependencies) *Handler {
	return &Handler{deps: deps}
}

func respond(c *fiber.Ctx, status int, message string, data interface{}) error {
	body := fiber.Map{
		"message": message,
		"success": status < fiber.StatusBadRequest,
		"status":  status,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, message string) error {
	return respond(c, fiber.StatusBadRequest, message, nil)
}

var errorResponses = []struct {
	err     error
	status  int
	message string
}{
	{service.ErrUserExists, fiber.StatusBadRequest, "User already exists"},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized, "Invalid credentials"},
	{service.ErrInvalidResetToken, fiber.StatusBadRequest, "Invalid or expired reset token"},
	{service.ErrUserNotFound, fiber.StatusNotFound, "User not found"},
	{service.ErrTaskNotFound, fiber.StatusNotFound, "Task not found"},
	{service.ErrCommentNotFound, fiber.StatusNotFound, "Comment not found"},
	{service.ErrNotTaskParticipant, fiber.StatusForbidden, "Not authorized to update this task"},
	{service.ErrNotTaskCreator, fiber.StatusForbidden, "Not authorized to delete this task"},
	{service.ErrNotCommentAuthor, fiber.StatusForbidden, "Not authorized to modify this comment"},
	{service.ErrInvalidRole, fiber.StatusBadRequest, "Invalid role"},
	{service.ErrInvalidAssignee, fiber.StatusBadRequest, "Assigned user does not exist"},
	{repository.ErrConstraint, fiber.StatusBadRequest, "Invalid reference"},
}

// writeError maps service errors to responses. Anything unrecognised is a
// 500 whose details stay in the error log.
func writeError(c *fiber.Ctx, err error) error {
	for _, e := range errorResponses {
		if errors.Is(err, e.err) {
			return respond(c, e.status, e.message, nil)
		}
	}
	logger.ErrorLogger.Error("Request failed",
		zap.Any("request_id", c.Locals("requestid")),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return respond(c, fiber.StatusInternalServerError, "Internal server error", nil)
}
