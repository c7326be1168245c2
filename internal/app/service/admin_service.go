package service

import (
	"context"
	"fmt"

	"todo_api/internal/common"
	"todo_api/internal/domain/model"
	"todo_api/internal/domain/repository"
)

const msgAdminOnly = "Access denied. Admin only."

// AdminService is read-only reporting across every user and task.
type AdminService struct {
	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
}

func NewAdminService(userRepo repository.UserRepository, taskRepo repository.TaskRepository) *AdminService {
	return &AdminService{userRepo: userRepo, taskRepo: taskRepo}
}

// UsersWithTasks lists demo users first, then registered users, each with the
// tasks whose owner id matches theirs.
func (s *AdminService) UsersWithTasks(ctx context.Context, actor model.Actor) ([]model.UserWithTasks, error) {
	if !actor.IsAdmin() {
		return nil, common.NewError(common.ErrForbidden, msgAdminOnly)
	}

	registered, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	tasks, err := s.taskRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	byOwner := make(map[string][]model.Task)
	for _, t := range tasks {
		byOwner[t.UserID] = append(byOwner[t.UserID], t)
	}

	demos := model.DemoUsers()
	out := make([]model.UserWithTasks, 0, len(demos)+len(registered))
	for _, d := range demos {
		out = append(out, withTasks(d.User, true, byOwner[d.ID]))
	}
	for _, u := range registered {
		out = append(out, withTasks(u, false, byOwner[u.ID]))
	}
	return out, nil
}

func withTasks(u model.User, isDemo bool, tasks []model.Task) model.UserWithTasks {
	if tasks == nil {
		tasks = []model.Task{}
	}
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return model.UserWithTasks{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		CreatedAt:      u.CreatedAt,
		IsDemo:         isDemo,
		Tasks:          tasks,
		TaskCount:      len(tasks),
		CompletedTasks: completed,
	}
}

func (s *AdminService) Stats(ctx context.Context, actor model.Actor) (*model.AdminStats, error) {
	if !actor.IsAdmin() {
		return nil, common.NewError(common.ErrForbidden, msgAdminOnly)
	}

	registered, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	counts, err := s.taskRepo.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	demo := model.DemoUserCount()
	return &model.AdminStats{
		TotalUsers:           registered + demo,
		TotalRegisteredUsers: registered,
		TotalDemoUsers:       demo,
		TotalTasks:           counts.Total,
		CompletedTasks:       counts.Completed,
		PendingTasks:         counts.Pending(),
	}, nil
}
