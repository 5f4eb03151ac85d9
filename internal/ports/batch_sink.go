package ports

import (
	"context"

	"github.com/ekasa-labs/receiptd/internal/domain"
)

// BatchSink durably stores accepted batches.
// The server invokes the sink fire-and-forget after a batch is recorded; a
// sink failure is logged but never affects the client response.
type BatchSink interface {
	// Store persists the batch, keyed by its receipt number.
	// Implementations should write all line items atomically.
	Store(ctx context.Context, batch domain.Batch) error

	// Close releases any resources held by the sink.
	Close() error
}
