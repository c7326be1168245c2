package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"todo_api/internal/common"
	"todo_api/internal/common/security"
	"todo_api/internal/domain/model"
	"todo_api/internal/domain/repository"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

const (
	minPasswordLength = 6
	maxPasswordBytes  = 72 // bcrypt input limit

	msgRegisterRequired   = "Name, email, and password are required"
	msgPasswordTooShort   = "Password must be at least 6 characters"
	msgPasswordTooLong    = "Password must be at most 72 bytes"
	msgLoginRequired      = "Email and password are required"
	msgInvalidCredentials = "Invalid credentials"
	msgUserExists         = "User already exists with this email"
	msgDemoEmailTaken     = "Email already exists in demo accounts"
	msgTooManyAttempts    = "Too many login attempts, try again later"
	msgUserNotFound       = "User not found"
)

type AuthService struct {
	userRepo               repository.UserRepository
	tokens                 *security.TokenIssuer
	limiter                LoginLimiter
	allowAdminRegistration bool
}

// NewAuthService wires the auth flows. A nil limiter disables login throttling.
func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenIssuer, limiter LoginLimiter, allowAdminRegistration bool) *AuthService {
	if limiter == nil {
		limiter = noopLimiter{}
	}
	return &AuthService{
		userRepo:               userRepo,
		tokens:                 tokens,
		limiter:                limiter,
		allowAdminRegistration: allowAdminRegistration,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return common.NewError(common.ErrValidation, msgRegisterRequired)
	}
	if err := validation.Validate(r.Password,
		validation.RuneLength(minPasswordLength, 0).Error(msgPasswordTooShort),
		validation.Length(0, maxPasswordBytes).Error(msgPasswordTooLong),
	); err != nil {
		return common.NewError(common.ErrValidation, err.Error())
	}
	r.Email = model.NormalizeEmail(r.Email)
	return common.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.Email, is.Email.Error("must be a valid email address")),
	))
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return common.NewError(common.ErrValidation, msgLoginRequired)
	}
	return nil
}

type AuthResponse struct {
	Message string           `json:"message,omitempty"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(req.Email)

	if _, ok := model.FindDemoUserByEmail(email); ok {
		return nil, common.NewError(common.ErrConflict, msgDemoEmailTaken)
	}
	_, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil, common.NewError(common.ErrConflict, msgUserExists)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := model.RoleUser
	if model.NormalizeRole(req.Role) == model.RoleAdmin && s.allowAdminRegistration {
		role = model.RoleAdmin
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewError(common.ErrConflict, msgUserExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Message: "User registered successfully", Token: token, User: user.Public()}, nil
}

// Login checks the demo table first, then registered users.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	email := model.NormalizeEmail(req.Email)

	locked, err := s.limiter.Locked(ctx, email)
	if err != nil {
		log.Printf("WARN: login limiter unavailable for %s: %v", email, err)
	} else if locked {
		return nil, common.NewError(common.ErrTooManyRequests, msgTooManyAttempts)
	}

	user, err := s.authenticate(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			if lerr := s.limiter.RecordFailure(ctx, email); lerr != nil {
				log.Printf("WARN: failed to record login failure for %s: %v", email, lerr)
			}
		}
		return nil, err
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		log.Printf("WARN: failed to reset login failures for %s: %v", email, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResponse{Token: token, User: user.Public()}, nil
}

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if demo, ok := model.FindDemoUserByEmail(email); ok && security.CheckPlainPassword(password, demo.Password) {
		return &demo.User, nil
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrUnauthorized, msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, common.NewError(common.ErrUnauthorized, msgInvalidCredentials)
	}
	return user, nil
}

// ResolveActor maps verified claims to the caller: demo table first, then the
// users table with the role currently stored there.
func (s *AuthService) ResolveActor(ctx context.Context, claims *security.Claims) (model.Actor, error) {
	if demo, ok := model.FindDemoUserByID(claims.SubjectID); ok {
		return model.Actor{ID: demo.ID, Role: demo.Role}, nil
	}
	user, err := s.userRepo.FindByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return model.Actor{}, fmt.Errorf("unknown subject %q: %w", claims.SubjectID, common.ErrInvalidToken)
		}
		return model.Actor{}, fmt.Errorf("failed to resolve user: %w", err)
	}
	return model.Actor{ID: user.ID, Role: user.Role}, nil
}

func (s *AuthService) Me(ctx context.Context, actor model.Actor) (*model.PublicUser, error) {
	if demo, ok := model.FindDemoUserByID(actor.ID); ok {
		pub := demo.Public()
		return &pub, nil
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	pub := user.Public()
	return &pub, nil
}
