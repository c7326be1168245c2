package api

import (
	"net/http"
	"time"

	"todo_api/internal/api/handler"
	"todo_api/internal/api/middleware"
	"todo_api/internal/app/service"
	"todo_api/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	tokens *security.TokenIssuer,
	authService *service.AuthService,
	taskService *service.TaskService,
	adminService *service.AdminService,
	db handler.Pinger,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Reads "Authorization: Bearer T" into the context; Authenticator enforces it.
	r.Use(middleware.Verifier(tokens))
	authn := middleware.Authenticator(authService)

	status := handler.NewStatusHandler(db)
	r.Get("/", status.Root)
	r.Get("/health", status.Health)
	r.NotFound(status.NotFound)
	r.MethodNotAllowed(status.MethodNotAllowed)

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(authService, authn)
		api.Route("/auth", authHandler.RegisterRoutes)

		taskHandler := handler.NewTaskHandler(taskService, authn)
		api.Route("/tasks", taskHandler.RegisterRoutes)

		adminHandler := handler.NewAdminHandler(adminService, authn)
		api.Route("/admin", adminHandler.RegisterRoutes)
	})

	return r
}
