package v1

import (
	"teamtask/internal/api/v1/handlers"
	"teamtask/internal/config"
	"teamtask/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

const Prefix = "/api/v1"

func RegisterRoutes(app *fiber.App, deps *config.Dependencies) {
	h := handlers.New(deps)
	auth := middleware.UseToken(deps.Tokens, deps.Store.Repos().Users)

	api := app.Group(Prefix)
	api.Get("/health", h.Health)

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", h.Register)
	authRoutes.Post("/login", h.Login)
	authRoutes.Get("/me", auth, h.Me)
	authRoutes.Post("/forgot-password", h.ForgotPassword)
	authRoutes.Put("/reset-password/:token", h.ResetPassword)

	// Task
	taskRoutes := api.Group("/tasks", auth)
	taskRoutes.Get("/my", h.ListMyTasks)
	taskRoutes.Get("/users", h.AssignableUsers)
	taskRoutes.Get("/:id", h.GetTask)
	taskRoutes.Post("/", h.CreateTask)
	taskRoutes.Put("/:id", h.UpdateTask)
	taskRoutes.Delete("/:id", h.DeleteTask)

	// Comment
	commentRoutes := api.Group("/comments", auth)
	commentRoutes.Get("/task/:taskId", h.ListTaskComments)
	commentRoutes.Post("/", h.CreateComment)
	commentRoutes.Put("/:id", h.UpdateComment)
	commentRoutes.Delete("/:id", h.DeleteComment)

	// Activity feed is public
	api.Get("/activities", h.RecentActivities)

	// Admin
	adminRoutes := api.Group("/admin", auth, middleware.RequireAdmin())
	adminRoutes.Get("/tasks", h.AdminListTasks)
	adminRoutes.Get("/users", h.AdminListUsers)
	adminRoutes.Get("/comments", h.AdminListComments)
	adminRoutes.Put("/users/:id/role", h.AdminUpdateRole)
	adminRoutes.Get("/stats", h.AdminStats)
}
