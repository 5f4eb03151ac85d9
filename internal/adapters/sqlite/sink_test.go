package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ekasa-labs/receiptd/internal/domain"
)

func newTestSink(t *testing.T) *Sink {
	t.Helper()
	s, err := NewSink(filepath.Join(t.TempDir(), "receipts.db"))
	if err != nil {
		t.Fatalf("NewSink returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSink_Store(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	received := time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)
	batch := domain.Batch{
		Items: []domain.LineItem{
			{Name: "Elma", UnitPrice: 5.0, Quantity: 3, VATPercent: 8.0},
			{Name: "Ekmek", UnitPrice: 12.5, Quantity: 1, VATPercent: 1.0},
		},
		ReceiptNumber: 42,
		ReceivedAt:    received,
	}

	if err := s.Store(ctx, batch); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, price, count, kdv, created_at FROM products WHERE list_id = ? ORDER BY id`, 42)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	var got []domain.LineItem
	for rows.Next() {
		var it domain.LineItem
		var createdAt string
		if err := rows.Scan(&it.Name, &it.UnitPrice, &it.Quantity, &it.VATPercent, &createdAt); err != nil {
			t.Fatalf("scan: %v", err)
		}
		if createdAt != "2026-08-31 14:30:00" {
			t.Errorf("created_at = %q", createdAt)
		}
		got = append(got, it)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}

	if len(got) != len(batch.Items) {
		t.Fatalf("got %d rows, want %d", len(got), len(batch.Items))
	}
	for i := range batch.Items {
		if got[i] != batch.Items[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], batch.Items[i])
		}
	}
}

func TestSink_StoreKeysByReceiptNumber(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	for _, num := range []uint64{1, 2} {
		batch := domain.Batch{
			Items:         []domain.LineItem{{Name: "x", UnitPrice: 1, Quantity: 1, VATPercent: 0}},
			ReceiptNumber: num,
			ReceivedAt:    time.Now(),
		}
		if err := s.Store(ctx, batch); err != nil {
			t.Fatalf("Store(%d) returned error: %v", num, err)
		}
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE list_id = ?`, 2).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("rows for receipt 2 = %d, want 1", count)
	}
}

func TestNewSink_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "receipts.db")
	s, err := NewSink(path)
	if err != nil {
		t.Fatalf("NewSink returned error: %v", err)
	}
	s.Close()
}
