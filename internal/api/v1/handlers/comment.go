package handlers

import (
	"teamtask/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Comment handlers

func (h *Handler) ListTaskComments(c *fiber.Ctx) error {
	taskID, ok := paramID(c, "taskId")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	comments, err := h.deps.Comments.ListByTask(c.UserContext(), taskID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Comments retrieved successfully", comments)
}

func (h *Handler) CreateComment(c *fiber.Ctx) error {
	type CommentRequest struct {
		TaskID  int64  `json:"taskId" validate:"required,gt=0"`
		Content string `json:"content" validate:"required"`
	}

	var req CommentRequest
	if ok, err := h.bind(c, &req, func() { trim(&req.Content) }); !ok {
		return err
	}

	comment, err := h.deps.Comments.Create(c.UserContext(), middleware.CurrentUser(c), req.TaskID, req.Content)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Comment created successfully", comment)
}

func (h *Handler) UpdateComment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid comment ID")
	}

	type UpdateCommentRequest struct {
		Content string `json:"content" validate:"required"`
	}

	var req UpdateCommentRequest
	if ok, err := h.bind(c, &req, func() { trim(&req.Content) }); !ok {
		return err
	}

	if err := h.deps.Comments.Update(c.UserContext(), middleware.CurrentUser(c), id, req.Content); err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Comment updated successfully", nil)
}

func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid comment ID")
	}

	if err := h.deps.Comments.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Comment deleted successfully", nil)
}

// RecentActivities is public.
func (h *Handler) RecentActivities(c *fiber.Ctx) error {
	activities, err := h.deps.Activities.Recent(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Activities retrieved successfully", activities)
}
