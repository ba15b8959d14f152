package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"vocal-assistant/internal/app/repository"
	"vocal-assistant/internal/app/util/files"
)

// Open opens (creating if needed) the history database at path and makes
// sure the schema exists.
func Open(ctx context.Context, path string) (*repository.CommonDB, error) {
	if err := files.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	store := repository.NewCommonDB(db, "sqlite3")
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
