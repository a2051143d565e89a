package users

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/was-labs/webauth/internal/users/migrations"
)

// OpenPostgres opens the database behind dsn and applies pending schema
// migrations before handing the connection back.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}
