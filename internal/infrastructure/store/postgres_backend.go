package store

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresBackend keeps cart envelopes in a single key-value table, for
// deployments that sync carts through the backend instead of (or alongside)
// device-local storage.
//
// Schema:
//
//	CREATE TABLE cart_envelopes (
//	    key        TEXT PRIMARY KEY,
//	    data       JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		"SELECT data FROM cart_envelopes WHERE key = $1", key,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO cart_envelopes (key, data, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (key) DO UPDATE SET data = $2, updated_at = $3`,
		key, value, time.Now(),
	)
	return err
}

func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx,
		"DELETE FROM cart_envelopes WHERE key = $1", key,
	)
	return err
}

// ConnectPostgres establishes a pooled connection for the backend.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}
