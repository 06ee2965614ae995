package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const postgresDriver = "pgx"

// OpenPostgres connects to dsn and ensures the collections table exists.
func OpenPostgres(ctx context.Context, dsn string) (*SQLMedium, error) {
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	ddl := `CREATE TABLE IF NOT EXISTS collections (
		name     TEXT PRIMARY KEY,
		payload  JSONB NOT NULL,
		revision BIGINT NOT NULL DEFAULT 1
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure collections table: %w", err)
	}
	return &SQLMedium{db: db, d: postgresDialect}, nil
}
