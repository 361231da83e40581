package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const schema = `
	CREATE TABLE IF NOT EXISTS uploads (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		original_name VARCHAR(255) NOT NULL,
		stored_name   VARCHAR(300) NOT NULL,
		content_type  VARCHAR(255) NOT NULL,
		size          BIGINT       NOT NULL,
		digest        CHAR(64)     NOT NULL,
		created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_uploads_created_at (created_at)
	)`

// NewDB creates a new MySQL database connection pool with the given DSN.
func NewDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables the service needs if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}
	slog.Info("database schema ready")
	return nil
}
