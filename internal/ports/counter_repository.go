package ports

import "context"

// CounterRepository persists the receipt counter across process restarts.
// Implementations persist to disk (or other storage) atomically so receipt
// numbers remain monotonic over restarts.
type CounterRepository interface {
	// Load retrieves the last saved counter value.
	// Returns zero and nil error if no counter has been saved yet.
	// Returns an error only for actual read failures.
	Load(ctx context.Context) (uint64, error)

	// Save persists the counter value atomically.
	// The implementation should use atomic writes (e.g., write to temp file,
	// then rename) to prevent corruption on crash.
	Save(ctx context.Context, value uint64) error
}
