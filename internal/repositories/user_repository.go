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

var userColumns = []string{
	"id", "name", "email", "role", "status", "created_at", "updated_at",
}

// UserSpec is the users filter rule table. The password hash is never part
// of the list projection.
func UserSpec() *query.Spec {
	return &query.Spec{
		Table:      "users",
		Columns:    userColumns,
		Searchable: []string{"name", "email"},
		Fields: []query.Field{
			{Param: "role", Column: "role", Kind: query.Exact, Values: []string{"admin", "manager", "user"}},
			{Param: "status", Column: "status", Kind: query.Exact, Values: []string{"active", "inactive"}},
			{Param: "created_at", Column: "created_at", Kind: query.DateRange},
		},
		Sortable:       []string{"id", "name", "email", "role", "created_at"},
		DefaultSort:    "created_at",
		DefaultOrder:   query.OrderDesc,
		DefaultPerPage: 15,
		MaxPerPage:     100,
		TimeField:      "created_at",
	}
}

type UserRepository struct {
	DB *sql.DB
}

func (r UserRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return config.DB
}

func (r UserRepository) List(ctx context.Context, q *query.Query) (query.ResultPage, error) {
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

	users := []models.PublicUser{}
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return query.ResultPage{}, domain.DependencyError{Dep: "database", Err: err}
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return query.ResultPage{}, domain.DependencyError{Dep: "database", Err: err}
	}

	return query.NewResultPage(users, len(users), total, q), nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.db().QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, status, created_at, updated_at
		FROM users WHERE id = ? LIMIT 1`, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "User"}
		}
		return models.User{}, domain.DependencyError{Dep: "database", Err: err}
	}
	return u, nil
}

func (r UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.db().QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, status, created_at, updated_at
		FROM users WHERE email = ? LIMIT 1`, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "User"}
		}
		return models.User{}, domain.DependencyError{Dep: "database", Err: err}
	}
	return u, nil
}

func (r UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = ?`, email).Scan(&count)
	if err != nil {
		return false, domain.DependencyError{Dep: "database", Err: err}
	}
	return count > 0, nil
}

func (r UserRepository) Create(ctx context.Context, u *models.User) error {
	now := utils.NowUTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.db().ExecContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Status, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return domain.DependencyError{Dep: "database", Err: err}
	}
	u.ID, _ = res.LastInsertId()
	return nil
}

func (r UserRepository) Update(ctx context.Context, u *models.User) error {
	u.UpdatedAt = utils.NowUTC()

	res, err := r.db().ExecContext(ctx, `
		UPDATE users SET name=?, email=?, role=?, status=?, updated_at=? WHERE id=?`,
		u.Name, u.Email, u.Role, u.Status, u.UpdatedAt, u.ID,
	)
	if err != nil {
		return domain.DependencyError{Dep: "database", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "User"}
	}
	return nil
}

func (r UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.DependencyError{Dep: "database", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError{Resource: "User"}
	}
	return nil
}
