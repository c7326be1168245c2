package model

import "time"

type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	UserID    string     `json:"userId"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"-"`
	Owner     *TaskOwner `json:"user,omitempty"` // Only set on admin listings
}

// TaskOwner annotates a task with who it belongs to.
type TaskOwner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// TaskCounts is an aggregate read in one statement.
type TaskCounts struct {
	Total     int
	Completed int
}

func (c TaskCounts) Pending() int {
	return c.Total - c.Completed
}
