package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"todo_api/internal/common"
	"todo_api/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskColumns = []string{"id", "title", "completed", "user_id", "created_at", "updated_at"}

func setupTaskRepo(t *testing.T) (TaskRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPgTaskRepository(db), mock
}

func TestTaskRepository_Create(t *testing.T) {
	repo, mock := setupTaskRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO tasks`).
		WithArgs("t1", "buy milk", false, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	task := &model.Task{ID: "t1", Title: "buy milk", UserID: "u1"}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.Equal(t, now, task.CreatedAt)
}

func TestTaskRepository_List_FiltersByOwner(t *testing.T) {
	repo, mock := setupTaskRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(taskColumns).AddRow("t1", "buy milk", false, "u1", now, now))

	tasks, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "buy milk", tasks[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_List_All(t *testing.T) {
	repo, mock := setupTaskRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM tasks ORDER BY`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(taskColumns))

	tasks, err := repo.List(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskRepository_ListWithOwners(t *testing.T) {
	repo, mock := setupTaskRepo(t)
	now := time.Now()

	mock.ExpectQuery(`LEFT JOIN users u ON u.id = t.user_id`).
		WillReturnRows(sqlmock.NewRows(append(taskColumns, "name", "email")).
			AddRow("t1", "buy milk", false, "u1", now, now, "Ada", "ada@example.com").
			AddRow("t2", "demo task", true, "user123", now, now, nil, nil))

	tasks, err := repo.ListWithOwners(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.NotNil(t, tasks[0].Owner)
	assert.Equal(t, "Ada", tasks[0].Owner.Name)
	assert.Nil(t, tasks[1].Owner)
}

func TestTaskRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := setupTaskRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM tasks WHERE id = \$1`).
		WithArgs("t404").
		WillReturnRows(sqlmock.NewRows(taskColumns))

	_, err := repo.FindByID(context.Background(), "t404")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTaskRepository_Update(t *testing.T) {
	repo, mock := setupTaskRepo(t)
	now := time.Now()

	mock.ExpectQuery(`UPDATE tasks SET title = \$1, completed = \$2`).
		WithArgs("buy milk", true, "t1").
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	task := &model.Task{ID: "t1", Title: "buy milk", Completed: true}
	require.NoError(t, repo.Update(context.Background(), task))
	assert.Equal(t, now, task.UpdatedAt)
}

func TestTaskRepository_Update_Missing(t *testing.T) {
	repo, mock := setupTaskRepo(t)

	mock.ExpectQuery(`UPDATE tasks`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))

	err := repo.Update(context.Background(), &model.Task{ID: "gone"})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	repo, mock := setupTaskRepo(t)

	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "t1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "t1"), common.ErrNotFound)
}

func TestTaskRepository_Delete_DBError(t *testing.T) {
	repo, mock := setupTaskRepo(t)

	mock.ExpectExec(`DELETE FROM tasks`).WillReturnError(errors.New("timeout"))

	err := repo.Delete(context.Background(), "t1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNotFound)
}

func TestTaskRepository_Counts(t *testing.T) {
	repo, mock := setupTaskRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\), COUNT\(\*\) FILTER \(WHERE completed\) FROM tasks`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "completed"}).AddRow(7, 3))

	c, err := repo.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.TaskCounts{Total: 7, Completed: 3}, c)
	assert.Equal(t, 4, c.Pending())
}
