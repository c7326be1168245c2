package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"todo_api/internal/common"
	"todo_api/internal/common/security"
	"todo_api/internal/domain/model"
	"todo_api/internal/domain/repository/repositorytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLimiter struct {
	failures map[string]int
	max      int
	err      error
}

func newFakeLimiter(max int) *fakeLimiter {
	return &fakeLimiter{failures: make(map[string]int), max: max}
}

func (f *fakeLimiter) Locked(_ context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.failures[key] >= f.max, nil
}

func (f *fakeLimiter) RecordFailure(_ context.Context, key string) error {
	f.failures[key]++
	return f.err
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	delete(f.failures, key)
	return f.err
}

func newAuthService(t *testing.T, limiter LoginLimiter, allowAdmin bool) (*AuthService, *repositorytest.Users, *security.TokenIssuer) {
	t.Helper()
	users := repositorytest.NewUsers()
	tokens := security.NewTokenIssuer([]byte("test-secret"), time.Hour)
	return NewAuthService(users, tokens, limiter, allowAdmin), users, tokens
}

func TestAuthService_Register(t *testing.T) {
	svc, users, tokens := newAuthService(t, nil, true)
	ctx := context.Background()

	resp, err := svc.Register(ctx, RegisterRequest{Name: "  Ada  ", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, model.RoleUser, resp.User.Role)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.SubjectID)
	assert.Equal(t, model.RoleUser, claims.Role)

	stored, err := users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.HashedPassword)
	assert.True(t, security.CheckPasswordHash("secret1", stored.HashedPassword))
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc, users, _ := newAuthService(t, nil, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Name: "Ada 2", Email: "ADA@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, "User already exists with this email", err.Error())

	n, _ := users.Count(ctx)
	assert.Equal(t, 1, n)
}

func TestAuthService_Register_DemoEmail(t *testing.T) {
	svc, users, _ := newAuthService(t, nil, true)

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "Eve", Email: "Admin@Todo.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Equal(t, 400, common.HTTPStatusFromError(err))

	n, _ := users.Count(context.Background())
	assert.Zero(t, n)
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, users, _ := newAuthService(t, nil, true)
	users.Err = errors.New("repository must not be reached")

	tests := []struct {
		name    string
		req     RegisterRequest
		message string
	}{
		{"missing name", RegisterRequest{Email: "a@b.co", Password: "secret1"}, msgRegisterRequired},
		{"missing email", RegisterRequest{Name: "A", Password: "secret1"}, msgRegisterRequired},
		{"missing password", RegisterRequest{Name: "A", Email: "a@b.co"}, msgRegisterRequired},
		{"short password", RegisterRequest{Name: "A", Email: "a@b.co", Password: "12345"}, msgPasswordTooShort},
		{"short multibyte password", RegisterRequest{Name: "A", Email: "a@b.co", Password: "ñññ"}, msgPasswordTooShort},
		{"password over bcrypt limit", RegisterRequest{Name: "A", Email: "a@b.co", Password: strings.Repeat("p", 80)}, msgPasswordTooLong},
		{"bad email", RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}, "email: must be a valid email address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestAuthService_Register_PasswordLengthCountsCharacters(t *testing.T) {
	svc, _, _ := newAuthService(t, nil, true)

	// Six characters, twelve bytes.
	resp, err := svc.Register(context.Background(), RegisterRequest{Name: "Ñandú", Email: "n@example.com", Password: "ññññññ"})
	require.NoError(t, err)
	assert.Equal(t, "n@example.com", resp.User.Email)

	_, err = svc.Register(context.Background(), RegisterRequest{Name: "Long", Email: "long@example.com", Password: strings.Repeat("p", 72)})
	require.NoError(t, err)
}

func TestAuthService_Register_AdminRole(t *testing.T) {
	ctx := context.Background()

	allowed, _, _ := newAuthService(t, nil, true)
	resp, err := allowed.Register(ctx, RegisterRequest{Name: "Root", Email: "root@example.com", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, resp.User.Role)

	locked, _, _ := newAuthService(t, nil, false)
	resp, err = locked.Register(ctx, RegisterRequest{Name: "Root", Email: "root@example.com", Password: "secret1", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.User.Role)

	resp, err = allowed.Register(ctx, RegisterRequest{Name: "Odd", Email: "odd@example.com", Password: "secret1", Role: "owner"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, resp.User.Role)
}

func TestAuthService_Login_DemoUser(t *testing.T) {
	svc, _, tokens := newAuthService(t, nil, true)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "admin@todo.com", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, "admin123", resp.User.ID)
	assert.Equal(t, "Admin User", resp.User.Name)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin123", claims.SubjectID)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestAuthService_Login_RegisteredUser(t *testing.T) {
	svc, _, tokens := newAuthService(t, nil, true)
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "ADA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	assert.Empty(t, resp.Message)

	claims, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.SubjectID)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, _, _ := newAuthService(t, nil, true)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{Email: "user@todo.com", Password: "admin123"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com"})
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, msgLoginRequired, err.Error())
}

func TestAuthService_Login_Throttled(t *testing.T) {
	limiter := newFakeLimiter(2)
	svc, _, _ := newAuthService(t, limiter, true)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Login(ctx, LoginRequest{Email: "User@todo.com", Password: "nope"})
		require.ErrorIs(t, err, common.ErrUnauthorized)
	}
	assert.Equal(t, 2, limiter.failures["user@todo.com"])

	_, err := svc.Login(ctx, LoginRequest{Email: "user@todo.com", Password: "user123"})
	assert.ErrorIs(t, err, common.ErrTooManyRequests)
	assert.Equal(t, 429, common.HTTPStatusFromError(err))
}

func TestAuthService_Login_ResetsFailures(t *testing.T) {
	limiter := newFakeLimiter(5)
	svc, _, _ := newAuthService(t, limiter, true)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Email: "user@todo.com", Password: "nope"})
	require.Error(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "user@todo.com", Password: "user123"})
	require.NoError(t, err)
	assert.NotContains(t, limiter.failures, "user@todo.com")
}

func TestAuthService_Login_LimiterUnavailable(t *testing.T) {
	limiter := newFakeLimiter(1)
	limiter.err = errors.New("redis down")
	svc, _, _ := newAuthService(t, limiter, true)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "user@todo.com", Password: "user123"})
	require.NoError(t, err)
	assert.Equal(t, "user123", resp.User.ID)
}

func TestAuthService_ResolveActor(t *testing.T) {
	svc, users, _ := newAuthService(t, nil, true)
	ctx := context.Background()

	actor, err := svc.ResolveActor(ctx, &security.Claims{SubjectID: "user123", Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, model.Actor{ID: "user123", Role: model.RoleUser}, actor, "demo role comes from the fixed table")

	reg, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	actor, err = svc.ResolveActor(ctx, &security.Claims{SubjectID: reg.User.ID, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, actor.Role, "stored role wins over the token claim")

	_, err = svc.ResolveActor(ctx, &security.Claims{SubjectID: "ghost", Role: "user"})
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	users.Err = errors.New("db down")
	_, err = svc.ResolveActor(ctx, &security.Claims{SubjectID: reg.User.ID, Role: "user"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrInvalidToken)
}

func TestAuthService_Me(t *testing.T) {
	svc, users, _ := newAuthService(t, nil, true)
	ctx := context.Background()

	me, err := svc.Me(ctx, model.Actor{ID: "admin123", Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, model.PublicUser{ID: "admin123", Email: "admin@todo.com", Name: "Admin User", Role: "admin"}, *me)

	reg, err := svc.Register(ctx, RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	me, err = svc.Me(ctx, model.Actor{ID: reg.User.ID, Role: model.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)

	users.Delete(reg.User.ID)
	_, err = svc.Me(ctx, model.Actor{ID: reg.User.ID, Role: model.RoleUser})
	assert.ErrorIs(t, err, common.ErrNotFound)
}
