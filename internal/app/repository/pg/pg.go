package pg

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"vocal-assistant/internal/app/repository"
)

// Open connects to Postgres with dsn and makes sure the schema exists.
func Open(ctx context.Context, dsn string) (*repository.CommonDB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return open(ctx, db)
}

func open(ctx context.Context, db *sql.DB) (*repository.CommonDB, error) {
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	store := repository.NewCommonDB(db, "postgres")
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
