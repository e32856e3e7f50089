package repositories

import (
	"context"
	"database/sql"
	"errors"

	"taskapp/internal/config"
	"taskapp/internal/domain"
	"taskapp/internal/domain/models"
	"taskapp/internal/query"
	"taskapp/internal/utils"
)

var taskColumns = []string{
	"id", "user_id", "title", "description", "status", "priority",
	"due_date", "completed_at", "created_at", "updated_at",
}

// TaskSpec is the tasks filter rule table, resolved once at startup.
func TaskSpec() *query.Spec {
	return &query.Spec{
		Table:      "tasks",
		Columns:    taskColumns,
		Searchable: []string{"title", "description"},
		Fields: []query.Field{
			{Param: "status", Column: "status", Kind: query.Exact, Values: []string{
				models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted,
			}},
			{Param: "priority", Column: "priority", Kind: query.Exact, Values: []string{
				models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh,
			}},
			{Param: "user_id", Column: "user_id", Kind: query.Exact},
			{Param: "created_at", Column: "created_at", Kind: query.DateRange},
		},
		Sortable:       []string{"id", "title", "status", "priority", "due_date", "created_at"},
		DefaultSort:    "created_at",
		DefaultOrder:   query.OrderDesc,
		DefaultPerPage: 10,
		MaxPerPage:     100,
		TimeField:      "created_at",
		Custom: []query.CustomFilter{
			query.CompletedFlag("is_completed", "completed_at"),
			query.OverdueFlag("is_overdue", "due_date", "completed_at"),
		},
	}
}

// TaskRepository wraps DB access for tasks; a zero value falls back to the
// shared pool.
type TaskRepository struct {
	DB *sql.DB
}

func (r TaskRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

// List executes the built count and select queries and assembles the page.
func (r TaskRepository) List(ctx context.Context, q *query.Query) (query.ResultPage, error) {
	db := r.db()

	countSQL, countArgs, err := q.Count.ToSql()
	if err != nil {
		return query.ResultPage{}, err
	}
	var total int
	if err := db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return query.ResultPage{}, domain.DependencyError{Dep: "database", Err: err}
	}

	selectSQL, selectArgs, err := q.Select.ToSql()
	if err != nil {
		return query.ResultPage{}, err
	}
	rows, err := db.QueryContext(ctx, selectSQL, selectArgs...)
	if err != nil {
		return query.ResultPage{}, domain.DependencyError{Dep: "database", Err: err}
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return query.ResultPage{}, domain.DependencyError{Dep: "database", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return query.ResultPage{}, domain.DependencyError{Dep: "database", Err: err}
	}

	return query.NewResultPage(tasks, len(tasks), total, q), nil
}

func (r TaskRepository) GetByID(ctx context.Context, id int64) (models.Task, error) {
	row := r.db().QueryRowContext(ctx, `
		SELECT id, user_id, title, description, status, priority,
		       due_date, completed_at, created_at, updated_at
		FROM tasks WHERE id = ? LIMIT 1`, id)

	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, domain.NotFoundError{Resource: "Task"}
		}
		return models.Task{}, domain.DependencyError{Dep: "database", Err: err}
	}
	return t, nil
}

func (r TaskRepository) Create(ctx context.Context, t *models.Task) error {
	now := utils.NowUTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == models.TaskStatusCompleted && t.CompletedAt == nil {
		t.CompletedAt = &now
	}

	res, err := r.db().ExecContext(ctx, `
		INSERT INTO tasks (user_id, title, description, status, priority, due_date, completed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Title, t.Description, t.Status, t.Priority,
		t.DueDate, t.CompletedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return domain.DependencyError{Dep: "database", Err: err}
	}
	t.ID, _ = res.LastInsertId()
	return nil
}

func (r TaskRepository) Update(ctx context.Context, t *models.Task) error {
	now := utils.NowUTC()
	t.UpdatedAt = now

	// Completion timestamp tracks the status transition.
	if t.Status == models.TaskStatusCompleted && t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	if t.Status != models.TaskStatusCompleted {
		t.CompletedAt = nil
	}

	res, err := r.db().ExecContext(ctx, `
		UPDATE tasks
		SET user_id=?, title=?, description=?, status=?, priority=?, due_date=?, completed_at=?, updated_at=?
		WHERE id=?`,
		t.UserID, t.Title, t.Description, t.Status, t.Priority,
		t.DueDate, t.CompletedAt, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return domain.DependencyError{Dep: "database", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "Task"}
	}
	return nil
}

func (r TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return domain.DependencyError{Dep: "database", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "Task"}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var due, done sql.NullTime
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&due, &done, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return models.Task{}, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	if done.Valid {
		t.CompletedAt = &done.Time
	}
	return t, nil
}
