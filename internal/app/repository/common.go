package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"vocal-assistant/internal/app/model"
)

// PlaceholderFunc generates the n-th parameter placeholder of a SQL dialect.
type PlaceholderFunc func(n int) string

// CommonDB implements RunDAO on database/sql for sqlite3 and postgres.
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
}

var _ RunDAO = (*CommonDB)(nil)

const createRunsTable = `CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	operation     TEXT NOT NULL,
	document_type TEXT NOT NULL DEFAULT '',
	input         TEXT NOT NULL,
	provider      TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL,
	outcome       TEXT NOT NULL,
	stage         TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	started_at    BIGINT NOT NULL,
	duration_ms   BIGINT NOT NULL
)`

const runColumns = "run_id, operation, document_type, input, provider, state, outcome, stage, error_message, started_at, duration_ms"

// NewCommonDB wraps an open connection.
func NewCommonDB(db *sql.DB, driverName string) *CommonDB {
	var placeholders PlaceholderFunc
	switch driverName {
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(int) string { return "?" }
	}
	return &CommonDB{db: db, driverName: driverName, placeholders: placeholders}
}

// Migrate creates the runs table when it does not exist.
func (c *CommonDB) Migrate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

func (c *CommonDB) RecordRun(ctx context.Context, e model.RunEntry) error {
	params := make([]string, 11)
	for i := range params {
		params[i] = c.placeholders(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO runs (%s) VALUES (%s)", runColumns, strings.Join(params, ", "))

	_, err := c.db.ExecContext(ctx, query,
		e.RunID, e.Operation, e.DocumentType.String(), e.Input, e.Provider.String(),
		e.State, e.Outcome, e.Stage, e.ErrorMessage,
		e.StartedAt.UnixMilli(), e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert failed: %w", err)
	}
	return nil
}

func (c *CommonDB) ListRuns(ctx context.Context, limit int) ([]model.RunEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM runs ORDER BY started_at DESC, run_id", runColumns)
	var args []any
	if limit > 0 {
		query += " LIMIT " + c.placeholders(1)
		args = append(args, limit)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []model.RunEntry
	for rows.Next() {
		var (
			e                 model.RunEntry
			docType, provider string
			startedMs, durMs  int64
		)
		if err := rows.Scan(&e.RunID, &e.Operation, &docType, &e.Input, &provider,
			&e.State, &e.Outcome, &e.Stage, &e.ErrorMessage, &startedMs, &durMs); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		e.DocumentType = model.DocumentType(docType)
		e.Provider = model.ProviderName(provider)
		e.StartedAt = time.UnixMilli(startedMs)
		e.Duration = time.Duration(durMs) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return entries, nil
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (c *CommonDB) DB() *sql.DB {
	return c.db
}
