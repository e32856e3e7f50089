package repositories

import (
	"context"
	"database/sql"
	"errors"

	"taskapp/internal/config"
	"taskapp/internal/domain"
	"taskapp/internal/domain/models"
	"taskapp/internal/query"
)

var apiLogColumns = []string{
	"id", "method", "endpoint", "status_code", "duration_ms",
	"ip", "user_agent", "user_id", "created_at",
}

// APILogSpec is the api_logs filter rule table.
func APILogSpec() *query.Spec {
	return &query.Spec{
		Table:      "api_logs",
		Columns:    apiLogColumns,
		Searchable: []string{"endpoint", "ip"},
		Fields: []query.Field{
			{Param: "method", Column: "method", Kind: query.In, Values: []string{
				"GET", "POST", "PUT", "PATCH", "DELETE",
			}},
			{Param: "endpoint", Column: "endpoint", Kind: query.Like},
			{Param: "status_code", Column: "status_code", Kind: query.Exact},
			{Param: "status_code_range", Column: "status_code", Kind: query.StatusCodeRange},
			{Param: "user_id", Column: "user_id", Kind: query.Exact},
			{Param: "created_at", Column: "created_at", Kind: query.DateRange},
		},
		Sortable:       []string{"id", "status_code", "duration_ms", "created_at"},
		DefaultSort:    "created_at",
		DefaultOrder:   query.OrderDesc,
		DefaultPerPage: 15,
		MaxPerPage:     100,
		TimeField:      "created_at",
		Custom: []query.CustomFilter{
			query.NumericRange("duration_ms", "min_duration", "max_duration"),
		},
	}
}

// APILogRepository persists and reads the append-only request audit trail.
type APILogRepository struct {
	DB *sql.DB
}

func (r APILogRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

// Insert appends one audit record. Callers treat failures as advisory.
func (r APILogRepository) Insert(ctx context.Context, rec models.APILog) error {
	db := r.db()
	if db == nil {
		return sql.ErrConnDone
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO api_logs (method, endpoint, status_code, duration_ms, ip, user_agent, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Method, rec.Endpoint, rec.StatusCode, rec.DurationMs,
		rec.IP, rec.UserAgent, rec.UserID, rec.CreatedAt,
	)
	return err
}

func (r APILogRepository) List(ctx context.Context, q *query.Query) (query.ResultPage, error) {
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

	logs := []models.APILog{}
	for rows.Next() {
		rec, err := scanAPILog(rows)
		if err != nil {
			return query.ResultPage{}, domain.DependencyError{Dep: "database", Err: err}
		}
		logs = append(logs, rec)
	}
	if err := rows.Err(); err != nil {
		return query.ResultPage{}, domain.DependencyError{Dep: "database", Err: err}
	}

	return query.NewResultPage(logs, len(logs), total, q), nil
}

func (r APILogRepository) GetByID(ctx context.Context, id int64) (models.APILog, error) {
	row := r.db().QueryRowContext(ctx, `
		SELECT id, method, endpoint, status_code, duration_ms, ip, user_agent, user_id, created_at
		FROM api_logs WHERE id = ? LIMIT 1`, id)

	rec, err := scanAPILog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.APILog{}, domain.NotFoundError{Resource: "Log"}
		}
		return models.APILog{}, domain.DependencyError{Dep: "database", Err: err}
	}
	return rec, nil
}

func scanAPILog(row rowScanner) (models.APILog, error) {
	var rec models.APILog
	var userID sql.NullInt64
	err := row.Scan(
		&rec.ID, &rec.Method, &rec.Endpoint, &rec.StatusCode, &rec.DurationMs,
		&rec.IP, &rec.UserAgent, &userID, &rec.CreatedAt,
	)
	if err != nil {
		return models.APILog{}, err
	}
	if userID.Valid {
		rec.UserID = &userID.Int64
	}
	return rec, nil
}
