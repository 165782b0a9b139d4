package handlers

import (
	"teamtask/internal/middleware"
	"teamtask/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Admin handlers. Routes are gated by middleware.RequireAdmin.

// AdminListTasks pages through every task with the same parameters as
// ListMyTasks.
func (h *Handler) AdminListTasks(c *fiber.Ctx) error {
	page, limit, err := pagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.deps.Tasks.ListAll(c.UserContext(), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Tasks retrieved successfully", p)
}

func (h *Handler) AdminListUsers(c *fiber.Ctx) error {
	users, err := h.deps.Admin.Users(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Users retrieved successfully", users)
}

func (h *Handler) AdminListComments(c *fiber.Ctx) error {
	comments, err := h.deps.Comments.ListAll(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Comments retrieved successfully", comments)
}

func (h *Handler) AdminUpdateRole(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	type RoleRequest struct {
		Role models.Role `json:"role" validate:"required"`
	}

	var req RoleRequest
	if ok, err := h.bind(c, &req, nil); !ok {
		return err
	}

	if err := h.deps.Admin.UpdateRole(c.UserContext(), middleware.CurrentUser(c), id, req.Role); err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "User role updated successfully", nil)
}

func (h *Handler) AdminStats(c *fiber.Ctx) error {
	stats, err := h.deps.Admin.Stats(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Stats retrieved successfully", stats)
}
