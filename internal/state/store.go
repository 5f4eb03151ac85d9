package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ekasa-labs/receiptd/internal/domain"
	"github.com/ekasa-labs/receiptd/internal/ports"
)

// Store owns the latest batch and the receipt counter.
//
// RecordBatch is linearizable: concurrent calls never observe the same
// counter value, and the counter never skips or repeats even when multiple
// connections commit at nearly the same instant. The counter is persisted
// through the repository after every increment so numbers stay monotonic
// across restarts.
type Store struct {
	repo ports.CounterRepository

	mu      sync.Mutex
	counter uint64
	latest  *domain.Batch

	updates chan domain.Batch
}

// NewStore creates a store seeded with the persisted counter value.
func NewStore(ctx context.Context, repo ports.CounterRepository) (*Store, error) {
	counter, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load receipt counter: %w", err)
	}
	return &Store{
		repo:    repo,
		counter: counter,
		updates: make(chan domain.Batch, 1),
	}, nil
}

// RecordBatch assigns the next receipt number to items, replaces the latest
// batch and persists the counter, all atomically. On a persistence failure
// the increment is rolled back and the batch is not recorded; a number must
// never be handed out twice after a restart.
func (s *Store) RecordBatch(ctx context.Context, items []domain.LineItem) (domain.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	batch := domain.Batch{
		Items:         items,
		ReceiptNumber: s.counter,
		ReceivedAt:    time.Now(),
	}
	if err := s.repo.Save(ctx, s.counter); err != nil {
		s.counter--
		return domain.Batch{}, fmt.Errorf("persist receipt counter: %w", err)
	}
	s.latest = &batch

	s.publish(batch)
	return batch, nil
}

// Current returns the most recently recorded batch, or false if nothing has
// been received yet.
func (s *Store) Current() (domain.Batch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return domain.Batch{}, false
	}
	return *s.latest, true
}

// Counter returns the current receipt counter value.
func (s *Store) Counter() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// Updates exposes a latest-wins notification channel for consumers such as a
// display layer. Receiving is optional; a slow or absent consumer never
// blocks RecordBatch.
func (s *Store) Updates() <-chan domain.Batch {
	return s.updates
}

// publish replaces any pending notification with the newest batch.
// Called with s.mu held.
func (s *Store) publish(batch domain.Batch) {
	for {
		select {
		case s.updates <- batch:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}
