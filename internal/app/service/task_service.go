package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todo_api/internal/common"
	"todo_api/internal/domain/model"
	"todo_api/internal/domain/repository"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
)

const (
	msgTitleRequired = "Title is required"
	msgTaskNotFound  = "Task not found"
	msgTaskForbidden = "Not authorized to modify this task"
)

// TaskService applies the ownership policy: users see and change their own
// tasks, admins see and change every task. Both may create tasks for themselves.
type TaskService struct {
	taskRepo repository.TaskRepository
}

func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

type CreateTaskRequest struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (r CreateTaskRequest) Validate() error {
	if err := validation.Validate(strings.TrimSpace(r.Title), validation.Required.Error(msgTitleRequired)); err != nil {
		return common.NewError(common.ErrValidation, err.Error())
	}
	return nil
}

func (s *TaskService) List(ctx context.Context, actor model.Actor) ([]model.Task, error) {
	if !actor.IsAdmin() {
		tasks, err := s.taskRepo.List(ctx, actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks: %w", err)
		}
		return tasks, nil
	}

	tasks, err := s.taskRepo.ListWithOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	for i := range tasks {
		if tasks[i].Owner != nil {
			continue
		}
		if demo, ok := model.FindDemoUserByID(tasks[i].UserID); ok {
			tasks[i].Owner = &model.TaskOwner{ID: demo.ID, Name: demo.Name, Email: demo.Email}
		}
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, actor model.Actor, req CreateTaskRequest) (*model.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Completed: req.Completed,
		UserID:    actor.ID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// Update applies a partial patch. Titles are not validated here.
func (s *TaskService) Update(ctx context.Context, actor model.Actor, taskID string, patch model.TaskPatch) (*model.Task, error) {
	task, err := s.authorizedTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}

	patch.Apply(task)
	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, msgTaskNotFound)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, actor model.Actor, taskID string) error {
	if _, err := s.authorizedTask(ctx, actor, taskID); err != nil {
		return err
	}
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrNotFound, msgTaskNotFound)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskService) authorizedTask(ctx context.Context, actor model.Actor, taskID string) (*model.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, common.NewError(common.ErrNotFound, msgTaskNotFound)
	}
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, msgTaskNotFound)
		}
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if !actor.IsAdmin() && task.UserID != actor.ID {
		return nil, common.NewError(common.ErrForbidden, msgTaskForbidden)
	}
	return task, nil
}
