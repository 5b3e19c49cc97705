package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const createCollectionsTable = `
CREATE TABLE IF NOT EXISTS collections (
	name       VARCHAR(128) NOT NULL PRIMARY KEY,
	payload    LONGTEXT     NOT NULL,
	version    INT          NOT NULL DEFAULT 0,
	updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

// MySQLAdapter keeps one row per collection. The version column counts writes
// and is informational only; writes are last-writer-wins.
type MySQLAdapter struct {
	db     *sql.DB
	prefix string
}

func NewMySQLAdapter(db *sql.DB, prefix string) *MySQLAdapter {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &MySQLAdapter{db: db, prefix: prefix}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createCollectionsTable); err != nil {
		return fmt.Errorf("create collections table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Get(ctx context.Context, name string) (string, bool, error) {
	var payload string
	err := m.db.QueryRowContext(ctx, `
		SELECT payload FROM collections WHERE name = ?`, m.prefix+name,
	).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query collection %s: %w", name, err)
	}

	return payload, true, nil
}

func (m *MySQLAdapter) Set(ctx context.Context, name string, value string) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO collections (name, payload, version) VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE payload = VALUES(payload), version = version + 1`,
		m.prefix+name, value,
	)
	if err != nil {
		return fmt.Errorf("upsert collection %s: %w", name, err)
	}
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, name string) error {
	if _, err := m.db.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, m.prefix+name); err != nil {
		return fmt.Errorf("delete collection %s: %w", name, err)
	}
	return nil
}

// Version returns the write counter of a collection, 0 if it does not exist.
func (m *MySQLAdapter) Version(ctx context.Context, name string) (int, error) {
	var version int
	err := m.db.QueryRowContext(ctx, `
		SELECT version FROM collections WHERE name = ?`, m.prefix+name,
	).Scan(&version)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query collection version %s: %w", name, err)
	}
	return version, nil
}

func (m *MySQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
