package handlers

import (
	"errors"
	"strconv"
	"strings"

	"teamtask/internal/models"
	"teamtask/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// fieldMessages holds client messages keyed by "<json field>.<tag>".
var fieldMessages = map[string]string{
	"name.required":     "Name is required",
	"email.required":    "Email is required",
	"email.email":       "Valid email is required",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters",
	"title.required":    "Title is required",
	"title.min":         "Title cannot be empty",
	"priority.oneof":    "Invalid priority",
	"status.oneof":      "Invalid status",
	"taskId.required":   "Valid task ID is required",
	"taskId.gt":         "Valid task ID is required",
	"content.required":  "Comment content is required",
	"content.min":       "Comment content is required",
	"role.required":     "Role is required",
}

func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// bind parses the JSON body into req and validates it. On failure the 400
// response is already written and ok is false.
func (h *Handler) bind(c *fiber.Ctx, req interface{}, normalize func()) (ok bool, err error) {
	if err := c.BodyParser(req); err != nil {
		logger.AuditLogger.Warn("Bad request body", zap.String("path", c.Path()), zap.Error(err))
		return false, badRequest(c, "Bad request")
	}
	if normalize != nil {
		normalize()
	}
	if err := h.deps.Validate.Struct(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  fieldErrors(err),
			"success": false,
			"status":  fiber.StatusBadRequest,
		})
	}
	return true, nil
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// pagination reads page and limit. Absent values use the defaults; values
// that are not positive integers are rejected; limit is capped.
func pagination(c *fiber.Ctx) (page, limit int, err error) {
	page, err = positiveQuery(c, "page", models.DefaultPage)
	if err != nil {
		return 0, 0, err
	}
	limit, err = positiveQuery(c, "limit", models.DefaultLimit)
	if err != nil {
		return 0, 0, err
	}
	if limit > models.MaxLimit {
		limit = models.MaxLimit
	}
	return page, limit, nil
}

func positiveQuery(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return v, nil
}
