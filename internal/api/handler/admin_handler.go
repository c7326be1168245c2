package handler

import (
	"net/http"

	"todo_api/internal/api/middleware"
	"todo_api/internal/app/service"
	"todo_api/internal/common"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminService *service.AdminService
	authn        func(http.Handler) http.Handler
}

func NewAdminHandler(as *service.AdminService, authn func(http.Handler) http.Handler) *AdminHandler {
	return &AdminHandler{adminService: as, authn: authn}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.authn)
	r.Use(middleware.AdminOnly)
	r.Get("/users-with-tasks", h.usersWithTasks)
	r.Get("/stats", h.stats)
}

func (h *AdminHandler) usersWithTasks(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	rows, err := h.adminService.UsersWithTasks(r.Context(), actor)
	if err != nil {
		common.RespondWithServiceError(w, r, err, "Error fetching users and tasks")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rows)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	stats, err := h.adminService.Stats(r.Context(), actor)
	if err != nil {
		common.RespondWithServiceError(w, r, err, "Error fetching statistics")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}
