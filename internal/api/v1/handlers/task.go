package handlers

import (
	"teamtask/internal/middleware"
	"teamtask/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Task handlers

func (h *Handler) ListMyTasks(c *fiber.Ctx) error {
	page, limit, err := pagination(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	p, err := h.deps.Tasks.ListForUser(c.UserContext(), middleware.CurrentUser(c).ID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Tasks retrieved successfully", p)
}

func (h *Handler) AssignableUsers(c *fiber.Ctx) error {
	users, err := h.deps.Tasks.AssignableUsers(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Users retrieved successfully", users)
}

func (h *Handler) GetTask(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	task, err := h.deps.Tasks.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Task retrieved successfully", task)
}

func (h *Handler) CreateTask(c *fiber.Ctx) error {
	type TaskRequest struct {
		Title       string          `json:"title" validate:"required"`
		Description *string         `json:"description"`
		Priority    models.Priority `json:"priority" validate:"omitempty,oneof=Low Medium High"`
		Status      models.Status   `json:"status" validate:"omitempty,oneof='Todo' 'In Progress' 'Done'"`
		AssignedTo  *int64          `json:"assignedTo"`
	}

	var req TaskRequest
	if ok, err := h.bind(c, &req, func() { trim(&req.Title) }); !ok {
		return err
	}

	task, err := h.deps.Tasks.Create(c.UserContext(), middleware.CurrentUser(c), models.NewTask{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Task created successfully", task)
}

// UpdateTask applies only the fields present in the body. An explicit
// "assignedTo": null unassigns the task.
func (h *Handler) UpdateTask(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	type UpdateTaskRequest struct {
		Title       *string           `json:"title" validate:"omitnil,min=1"`
		Description *string           `json:"description"`
		Priority    *models.Priority  `json:"priority" validate:"omitnil,oneof=Low Medium High"`
		Status      *models.Status    `json:"status" validate:"omitnil,oneof='Todo' 'In Progress' 'Done'"`
		AssignedTo  models.OptionalID `json:"assignedTo"`
	}

	var req UpdateTaskRequest
	if ok, err := h.bind(c, &req, func() { trim(req.Title) }); !ok {
		return err
	}

	err := h.deps.Tasks.Update(c.UserContext(), middleware.CurrentUser(c), id, models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Task updated successfully", nil)
}

func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid task ID")
	}

	if err := h.deps.Tasks.Delete(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Task deleted successfully", nil)
}
