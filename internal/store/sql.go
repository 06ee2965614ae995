package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// dialect holds the statements that differ between SQL backends.
type dialect struct {
	name     string
	get      string
	upsert   string
	delete   string
	keys     string
	revision string
}

var sqliteDialect = dialect{
	name:     "sqlite",
	get:      `SELECT payload FROM collections WHERE name = ?`,
	upsert:   `INSERT INTO collections(name, payload, revision) VALUES(?, ?, 1) ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, revision = collections.revision + 1`,
	delete:   `DELETE FROM collections WHERE name = ?`,
	keys:     `SELECT name FROM collections ORDER BY name ASC`,
	revision: `SELECT revision FROM collections WHERE name = ?`,
}

var postgresDialect = dialect{
	name:     "postgres",
	get:      `SELECT payload::text FROM collections WHERE name = $1`,
	upsert:   `INSERT INTO collections(name, payload, revision) VALUES($1, $2::jsonb, 1) ON CONFLICT(name) DO UPDATE SET payload = EXCLUDED.payload, revision = collections.revision + 1`,
	delete:   `DELETE FROM collections WHERE name = $1`,
	keys:     `SELECT name FROM collections ORDER BY name ASC`,
	revision: `SELECT revision FROM collections WHERE name = $1`,
}

// SQLMedium is a Medium over database/sql. Every Apply runs in one transaction.
type SQLMedium struct {
	db *sql.DB
	d  dialect
}

// Get reads one collection row.
func (m *SQLMedium) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload string
	err := m.db.QueryRowContext(ctx, m.d.get, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s get %q: %w", m.d.name, key, err)
	}
	return []byte(payload), true, nil
}

// Apply writes every mutation inside a single transaction.
func (m *SQLMedium) Apply(ctx context.Context, muts []Mutation) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s begin: %w", m.d.name, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, mut := range muts {
		if mut.Delete {
			if _, err := tx.ExecContext(ctx, m.d.delete, mut.Key); err != nil {
				return fmt.Errorf("%s delete %q: %w", m.d.name, mut.Key, err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, m.d.upsert, mut.Key, string(mut.Value)); err != nil {
			return fmt.Errorf("%s upsert %q: %w", m.d.name, mut.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s commit: %w", m.d.name, err)
	}
	return nil
}

// Keys lists collection names in ascending order.
func (m *SQLMedium) Keys(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, m.d.keys)
	if err != nil {
		return nil, fmt.Errorf("%s keys: %w", m.d.name, err)
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%s scan key: %w", m.d.name, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s keys: %w", m.d.name, err)
	}
	return keys, nil
}

// Revision returns how many times key has been written, 0 when absent.
func (m *SQLMedium) Revision(ctx context.Context, key string) (int64, error) {
	var rev int64
	err := m.db.QueryRowContext(ctx, m.d.revision, key).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s revision %q: %w", m.d.name, key, err)
	}
	return rev, nil
}

// DB returns the underlying sql.DB for direct queries in tests.
func (m *SQLMedium) DB() *sql.DB {
	return m.db
}

// Close closes the database connection.
func (m *SQLMedium) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}
