package handlers

import (
	"teamtask/internal/cache"
	"teamtask/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Auth handlers

func (h *Handler) Register(c *fiber.Ctx) error {
	// struct RegisterRequest menerima inputan dari user
	type RegisterRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var req RegisterRequest
	if ok, err := h.bind(c, &req, func() { trim(&req.Name); trim(&req.Email) }); !ok {
		return err
	}

	res, err := h.deps.Auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusCreated, "User registered successfully", res)
}

func (h *Handler) Login(c *fiber.Ctx) error {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var req LoginRequest
	if ok, err := h.bind(c, &req, func() { trim(&req.Email) }); !ok {
		return err
	}

	res, err := h.deps.Auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Login successful", res)
}

func (h *Handler) Me(c *fiber.Ctx) error {
	me, err := h.deps.Auth.Me(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "User retrieved successfully", me)
}

// ForgotPassword always answers with the same message so callers cannot
// probe which emails are registered.
func (h *Handler) ForgotPassword(c *fiber.Ctx) error {
	type ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	var req ForgotPasswordRequest
	if ok, err := h.bind(c, &req, func() { trim(&req.Email) }); !ok {
		return err
	}

	token, err := h.deps.Auth.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return writeError(c, err)
	}

	var data interface{}
	if h.deps.Config.ExposeResetToken && token != "" {
		data = fiber.Map{"resetToken": token}
	}
	return respond(c, fiber.StatusOK, "If the email is registered, a password reset token has been issued", data)
}

func (h *Handler) ResetPassword(c *fiber.Ctx) error {
	type ResetPasswordRequest struct {
		Password string `json:"password" validate:"required,min=6"`
	}

	var req ResetPasswordRequest
	if ok, err := h.bind(c, &req, nil); !ok {
		return err
	}

	if err := h.deps.Auth.ResetPassword(c.UserContext(), c.Params("token"), req.Password); err != nil {
		return writeError(c, err)
	}
	return respond(c, fiber.StatusOK, "Password reset successfully", nil)
}

type HealthStatus struct {
	Database   string       `json:"database"`
	Cache      string       `json:"cache"`
	CacheStats *cache.Stats `json:"cacheStats,omitempty"`
}

// Health pings the database and reports task cache counters when a
// counting cache is configured.
func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.deps.Store.Ping(c.UserContext()); err != nil {
		return writeError(c, err)
	}

	status := HealthStatus{Database: "ok", Cache: "disabled"}
	if r, ok := h.deps.TaskCache.(cache.StatsReporter); ok {
		stats := r.Stats()
		status.Cache = "enabled"
		status.CacheStats = &stats
	}
	return respond(c, fiber.StatusOK, "OK", status)
}
