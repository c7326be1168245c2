package handler

import (
	"encoding/json"
	"net/http"

	"todo_api/internal/api/middleware"
	"todo_api/internal/app/service"
	"todo_api/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	authn       func(http.Handler) http.Handler
}

func NewAuthHandler(authService *service.AuthService, authn func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{authService: authService, authn: authn}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register) // POST /api/auth/register
	r.Post("/login", h.login)       // POST /api/auth/login
	r.With(h.authn).Get("/me", h.me)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err, "Server error during registration")
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err, "Server error during login")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	user, err := h.authService.Me(r.Context(), actor)
	if err != nil {
		common.RespondWithServiceError(w, r, err, "Server error while loading user")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}
