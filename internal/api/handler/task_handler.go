package handler

import (
	"encoding/json"
	"net/http"

	"todo_api/internal/api/middleware"
	"todo_api/internal/app/service"
	"todo_api/internal/common"
	"todo_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	taskService *service.TaskService
	authn       func(http.Handler) http.Handler
}

func NewTaskHandler(ts *service.TaskService, authn func(http.Handler) http.Handler) *TaskHandler {
	return &TaskHandler{taskService: ts, authn: authn}
}

func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.authn)
	r.Get("/", h.listTasks)
	r.Post("/", h.createTask)
	r.Put("/{taskID}", h.updateTask)
	r.Delete("/{taskID}", h.deleteTask)
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	tasks, err := h.taskService.List(r.Context(), actor)
	if err != nil {
		common.RespondWithServiceError(w, r, err, "Error fetching tasks")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var req service.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.taskService.Create(r.Context(), actor, req)
	if err != nil {
		common.RespondWithServiceError(w, r, err, "Error creating task")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	task, err := h.taskService.Update(r.Context(), actor, chi.URLParam(r, "taskID"), patch)
	if err != nil {
		common.RespondWithServiceError(w, r, err, "Error updating task")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.ActorFromContext(r.Context())

	if err := h.taskService.Delete(r.Context(), actor, chi.URLParam(r, "taskID")); err != nil {
		common.RespondWithServiceError(w, r, err, "Error deleting task")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Task deleted"})
}
