package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"todo_api/internal/common"
	"todo_api/internal/domain/model"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	// List returns tasks owned by ownerID, or every task when ownerID is empty.
	List(ctx context.Context, ownerID string) ([]model.Task, error)
	// ListWithOwners returns every task annotated with its registered owner.
	// Tasks owned by demo identities come back without an owner.
	ListWithOwners(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	Counts(ctx context.Context) (model.TaskCounts, error)
}

type pgTaskRepository struct {
	db *sql.DB
}

func NewPgTaskRepository(db *sql.DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

func (r *pgTaskRepository) Create(ctx context.Context, t *model.Task) error {
	query := `INSERT INTO tasks (id, title, completed, user_id)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, t.ID, t.Title, t.Completed, t.UserID).Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	query := `SELECT id, title, completed, user_id, created_at, updated_at
	          FROM tasks WHERE id = $1`
	t := &model.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Title, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTaskRepository.FindByID: %w", err)
	}
	return t, nil
}

func (r *pgTaskRepository) List(ctx context.Context, ownerID string) ([]model.Task, error) {
	query := `SELECT id, title, completed, user_id, created_at, updated_at FROM tasks`
	var args []any
	if ownerID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.List: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.List scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.List rows: %w", err)
	}
	return tasks, nil
}

func (r *pgTaskRepository) ListWithOwners(ctx context.Context) ([]model.Task, error) {
	query := `
        SELECT t.id, t.title, t.completed, t.user_id, t.created_at, t.updated_at,
               u.name, u.email
        FROM tasks t
        LEFT JOIN users u ON u.id = t.user_id
        ORDER BY t.created_at ASC, t.id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.ListWithOwners: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var ownerName, ownerEmail sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Completed, &t.UserID, &t.CreatedAt, &t.UpdatedAt, &ownerName, &ownerEmail); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.ListWithOwners scan: %w", err)
		}
		if ownerName.Valid {
			t.Owner = &model.TaskOwner{ID: t.UserID, Name: ownerName.String, Email: ownerEmail.String}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.ListWithOwners rows: %w", err)
	}
	return tasks, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `UPDATE tasks SET title = $1, completed = $2, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $3
	          RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, t.Title, t.Completed, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgTaskRepository.Update: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Delete rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgTaskRepository) Counts(ctx context.Context) (model.TaskCounts, error) {
	var c model.TaskCounts
	query := `SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM tasks`
	if err := r.db.QueryRowContext(ctx, query).Scan(&c.Total, &c.Completed); err != nil {
		return model.TaskCounts{}, fmt.Errorf("pgTaskRepository.Counts: %w", err)
	}
	return c, nil
}
