package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"todo_api/internal/common"
)

var availableEndpoints = []string{"/api/auth", "/api/tasks", "/api/admin"}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type StatusHandler struct {
	db Pinger
}

func NewStatusHandler(db Pinger) *StatusHandler {
	return &StatusHandler{db: db}
}

func (h *StatusHandler) Root(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Todo List API Server is running!",
		"status":  "Active",
		"endpoints": map[string]string{
			"auth":  "/api/auth (register, login)",
			"tasks": "/api/tasks",
			"admin": "/api/admin",
		},
	})
}

func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			log.Printf("WARN: health check failed: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database unavailable"))
			return
		}
	}
	w.Write([]byte("OK"))
}

func (h *StatusHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusNotFound, map[string]interface{}{
		"message":            "Route not found",
		"availableEndpoints": availableEndpoints,
	})
}

func (h *StatusHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	common.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
