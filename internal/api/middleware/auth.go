package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"todo_api/internal/common"
	"todo_api/internal/common/security"
	"todo_api/internal/domain/model"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey   contextKey = "userID"
	UserRoleCtxKey contextKey = "userRole"
)

// ActorResolver turns verified claims into the current caller.
type ActorResolver interface {
	ResolveActor(ctx context.Context, claims *security.Claims) (model.Actor, error)
}

// Verifier extracts "Authorization: Bearer T" and verifies it. It never
// rejects on its own; Authenticator reads the outcome.
func Verifier(tokens *security.TokenIssuer) func(http.Handler) http.Handler {
	return jwtauth.Verify(tokens.JWTAuth(), jwtauth.TokenFromHeader)
}

// Authenticator rejects requests without a valid token and attaches the
// resolved caller to the context.
func Authenticator(resolver ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if errors.Is(err, jwtauth.ErrNoTokenFound) || (err == nil && token == nil) {
				common.RespondWithError(w, http.StatusUnauthorized, "No token provided")
				return
			}
			if err != nil || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			c, err := security.ClaimsFromMap(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			actor, err := resolver.ResolveActor(r.Context(), c)
			if err != nil {
				if errors.Is(err, common.ErrInvalidToken) {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
					return
				}
				log.Printf("ERROR: resolving caller for %s %s: %v", r.Method, r.URL.Path, err)
				common.RespondWithError(w, http.StatusInternalServerError, "Server error during authentication")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || !actor.IsAdmin() {
			common.RespondWithError(w, http.StatusForbidden, "Access denied. Admin only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	ctx = context.WithValue(ctx, UserIDCtxKey, actor.ID)
	return context.WithValue(ctx, UserRoleCtxKey, actor.Role)
}

func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	id, ok := GetUserIDFromContext(ctx)
	if !ok || id == "" {
		return model.Actor{}, false
	}
	role, _ := GetUserRoleFromContext(ctx)
	return model.Actor{ID: id, Role: role}, true
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// Helper to get user role from context
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	userRole, ok := ctx.Value(UserRoleCtxKey).(string)
	return userRole, ok
}
