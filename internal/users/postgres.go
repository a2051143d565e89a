package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PostgresRepository stores users in PostgreSQL through database/sql over
// the pgx driver.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository wraps an open database handle.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query := `INSERT INTO users (id, username, email, password_hash)
	          VALUES ($1, $2, $3, $4)
	          RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.Email, user.PasswordHash,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at, updated_at
	          FROM users WHERE username = $1`

	user := &User{}
	err := r.db.QueryRowContext(ctx, query, userName).Scan(
		&user.ID, &user.UserName, &user.Email, &user.PasswordHash,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) ListForm(ctx context.Context) ([]FormView, error) {
	query := `SELECT id, username, email, created_at, updated_at
	          FROM users ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	var views []FormView
	for rows.Next() {
		var v FormView
		if err := rows.Scan(&v.ID, &v.UserName, &v.Email, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return views, nil
}
