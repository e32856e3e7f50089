package repositories

import (
	"context"
	"database/sql/driver"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"taskapp/internal/domain"
	"taskapp/internal/domain/models"
	"taskapp/internal/query"
)

func driverArgs(args []any) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func taskRows(titles ...string) *sqlmock.Rows {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(taskColumns)
	for i, title := range titles {
		rows.AddRow(int64(i+1), int64(1), title, "", models.TaskStatusCompleted,
			models.TaskPriorityMedium, nil, now, now, now)
	}
	return rows
}

func TestTaskListReturnsPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	values := url.Values{}
	values.Set("status", "completed")
	values.Set("sort_by", "title")
	values.Set("sort_order", "asc")
	values.Set("per_page", "2")
	values.Set("page", "1")

	q, verrs := query.Build(TaskSpec(), values)
	if verrs != nil {
		t.Fatalf("unexpected validation errors: %v", verrs)
	}

	countSQL, countArgs, _ := q.Count.ToSql()
	selectSQL, selectArgs, _ := q.Select.ToSql()

	mock.ExpectQuery(regexp.QuoteMeta(countSQL)).
		WithArgs(driverArgs(countArgs)...).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).
		WithArgs(driverArgs(selectArgs)...).
		WillReturnRows(taskRows("Alpha", "Beta"))

	repo := TaskRepository{DB: db}
	page, err := repo.List(context.Background(), q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	tasks := page.Data.([]models.Task)
	if len(tasks) != 2 {
		t.Fatalf("rows: %d", len(tasks))
	}
	if len(tasks) > page.Pagination.PerPage {
		t.Fatalf("page larger than per_page: %d > %d", len(tasks), page.Pagination.PerPage)
	}
	if tasks[0].Title != "Alpha" || tasks[1].Title != "Beta" {
		t.Fatalf("order: %s, %s", tasks[0].Title, tasks[1].Title)
	}
	if page.Pagination.Total != 3 || page.Pagination.LastPage != 2 {
		t.Fatalf("pagination: %+v", page.Pagination)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestTaskListEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	q, verrs := query.Build(TaskSpec(), url.Values{})
	if verrs != nil {
		t.Fatalf("unexpected validation errors: %v", verrs)
	}

	countSQL, _, _ := q.Count.ToSql()
	selectSQL, _, _ := q.Select.ToSql()

	mock.ExpectQuery(regexp.QuoteMeta(countSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(selectSQL)).
		WillReturnRows(taskRows())

	repo := TaskRepository{DB: db}
	page, err := repo.List(context.Background(), q)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Data.([]models.Task)) != 0 {
		t.Fatalf("expected empty data")
	}
	if page.Pagination.From != nil || page.Pagination.To != nil {
		t.Fatal("from/to must be null for an empty page")
	}
}

func TestTaskGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM tasks WHERE id = \\?").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(taskColumns))

	repo := TaskRepository{DB: db}
	_, err = repo.GetByID(context.Background(), 42)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestTaskCreateSetsCompletedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO tasks").
		WillReturnResult(sqlmock.NewResult(5, 1))

	repo := TaskRepository{DB: db}
	task := models.Task{UserID: 1, Title: "Ship it", Status: models.TaskStatusCompleted, Priority: models.TaskPriorityHigh}
	if err := repo.Create(context.Background(), &task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if task.ID != 5 {
		t.Fatalf("id: %d", task.ID)
	}
	if task.CompletedAt == nil {
		t.Fatal("completed status must set completed_at")
	}
}

func TestTaskUpdateClearsCompletedAt(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE tasks").
		WillReturnResult(sqlmock.NewResult(0, 1))

	done := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	task := models.Task{ID: 9, UserID: 1, Title: "Reopen", Status: models.TaskStatusPending, Priority: models.TaskPriorityLow, CompletedAt: &done}

	repo := TaskRepository{DB: db}
	if err := repo.Update(context.Background(), &task); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if task.CompletedAt != nil {
		t.Fatal("leaving completed status must clear completed_at")
	}
}

func TestTaskUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE tasks").
		WillReturnResult(sqlmock.NewResult(0, 0))

	task := models.Task{ID: 404, UserID: 1, Title: "Ghost", Status: models.TaskStatusPending, Priority: models.TaskPriorityLow}
	repo := TaskRepository{DB: db}
	if err := repo.Update(context.Background(), &task); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestTaskDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM tasks WHERE id = \\?").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM tasks WHERE id = \\?").
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := TaskRepository{DB: db}
	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(context.Background(), 3); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
