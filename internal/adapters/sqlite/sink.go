// Package sqlite persists accepted batches in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ekasa-labs/receiptd/internal/domain"
)

// createdAtLayout matches the legacy column format already consumed by
// reporting tools.
const createdAtLayout = "2006-01-02 15:04:05"

// Sink implements ports.BatchSink on a SQLite database.
// Each line item becomes one row in the products table, keyed by the batch's
// receipt number in list_id.
type Sink struct {
	db *sql.DB
}

// NewSink opens (or creates) the database at path and ensures the schema
// exists. Parent directories are created if needed.
func NewSink(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode keeps readers (reporting) from blocking the ingest writer
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			price REAL NOT NULL,
			count INTEGER NOT NULL,
			kdv REAL NOT NULL,
			list_id INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_products_list_id ON products(list_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Sink{db: db}, nil
}

// Store writes every line item of the batch in one transaction.
func (s *Sink) Store(ctx context.Context, batch domain.Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (name, price, count, kdv, list_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	createdAt := batch.ReceivedAt.Format(createdAtLayout)
	for _, item := range batch.Items {
		if _, err := stmt.ExecContext(ctx,
			item.Name, item.UnitPrice, item.Quantity, item.VATPercent,
			batch.ReceiptNumber, createdAt,
		); err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (s *Sink) Close() error {
	return s.db.Close()
}
