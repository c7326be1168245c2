// Package repositorytest provides in-memory repositories for tests.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"todo_api/internal/common"
	"todo_api/internal/domain/model"
	"todo_api/internal/domain/repository"
)

var (
	_ repository.UserRepository = (*Users)(nil)
	_ repository.TaskRepository = (*Tasks)(nil)
)

type Users struct {
	mu    sync.Mutex
	users map[string]model.User
	Err   error // returned by every call when set
}

func NewUsers() *Users {
	return &Users{users: make(map[string]model.User)}
}

func (r *Users) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return common.ErrConflict
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *Users) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		u.HashedPassword = ""
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *Users) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return len(r.users), nil
}

// Delete removes a user directly; the application never deletes users.
func (r *Users) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type Tasks struct {
	mu    sync.Mutex
	tasks []model.Task
	users *Users
	Err   error // returned by every call when set
}

// NewTasks returns a task store; users, when non-nil, backs ListWithOwners.
func NewTasks(users *Users) *Tasks {
	return &Tasks{users: users}
}

func (r *Tasks) Create(_ context.Context, t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.tasks = append(r.tasks, *t)
	return nil
}

func (r *Tasks) FindByID(_ context.Context, id string) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, t := range r.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *Tasks) List(_ context.Context, ownerID string) ([]model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := []model.Task{}
	for _, t := range r.tasks {
		if ownerID == "" || t.UserID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *Tasks) ListWithOwners(ctx context.Context) ([]model.Task, error) {
	tasks, err := r.List(ctx, "")
	if err != nil || r.users == nil {
		return tasks, err
	}
	for i := range tasks {
		if u, err := r.users.FindByID(ctx, tasks[i].UserID); err == nil {
			tasks[i].Owner = &model.TaskOwner{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return tasks, nil
}

func (r *Tasks) Update(_ context.Context, t *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for i := range r.tasks {
		if r.tasks[i].ID == t.ID {
			t.UpdatedAt = time.Now()
			r.tasks[i].Title = t.Title
			r.tasks[i].Completed = t.Completed
			r.tasks[i].UpdatedAt = t.UpdatedAt
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *Tasks) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *Tasks) Counts(_ context.Context) (model.TaskCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return model.TaskCounts{}, r.Err
	}
	var c model.TaskCounts
	for _, t := range r.tasks {
		c.Total++
		if t.Completed {
			c.Completed++
		}
	}
	return c, nil
}
