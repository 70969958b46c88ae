// Package storage implements the local persistence backend: one SQLite row
// per user holding the JSON document envelope, the server-side counterpart of
// the original in-browser key-value store.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"pokerledger/internal/core"
	"pokerledger/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Backend = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Name implements store.Backend.
func (r *SQLiteRepository) Name() string { return "local" }

// Load implements store.Backend. A user without a stored document gets an
// empty collection.
func (r *SQLiteRepository) Load(ctx context.Context, username string) ([]core.Tournament, int64, error) {
	var document string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM records WHERE username = ?`, recordsKey(username),
	).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 1, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read document for %s: %w", username, err)
	}

	doc, err := store.DecodeDocument([]byte(document))
	if err != nil {
		// Malformed stored data is surfaced; the store falls back to empty.
		return nil, 0, fmt.Errorf("decode document for %s: %w", username, err)
	}
	return doc.Records, doc.NextID, nil
}

// Save implements store.Backend, replacing the whole document in one write.
func (r *SQLiteRepository) Save(ctx context.Context, username string, records []core.Tournament, nextID int64) error {
	data, err := store.EncodeDocument(store.Document{Records: records, NextID: nextID})
	if err != nil {
		return fmt.Errorf("encode document for %s: %w", username, err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO records (username, document, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(username) DO UPDATE SET document = excluded.document, updated_at = CURRENT_TIMESTAMP`,
		recordsKey(username), string(data),
	)
	if err != nil {
		return fmt.Errorf("write document for %s: %w", username, err)
	}

	slog.InfoContext(ctx, "Collection saved to SQLite",
		"username", username,
		"records", len(records),
		"bytes", len(data))
	return nil
}

// recordsKey mirrors the original storage key layout so documents exported
// from the browser variant import cleanly.
func recordsKey(username string) string {
	return "records_" + username
}
