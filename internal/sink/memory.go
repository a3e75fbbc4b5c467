package sink

import (
	"context"
	"slices"
	"sync"

	"github.com/abdulachik/rednotebot/internal/workflow"
)

// DefaultMemoryLimit is how many batches MemorySink keeps per account.
const DefaultMemoryLimit = 10

// MemorySink returns batches as structured records and keeps the most
// recent ones per account in process memory. Nothing survives a restart.
type MemorySink struct {
	mu      sync.RWMutex
	limit   int
	batches map[string][]*workflow.Batch
}

// NewMemorySink creates an in-memory sink. limit <= 0 uses DefaultMemoryLimit.
func NewMemorySink(limit int) *MemorySink {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemorySink{
		limit:   limit,
		batches: make(map[string][]*workflow.Batch),
	}
}

// Write records the batch and returns it with no artifacts.
func (s *MemorySink) Write(ctx context.Context, b *workflow.Batch) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append([]*workflow.Batch{b}, s.batches[b.AccountID]...)
	if len(list) > s.limit {
		list = list[:s.limit]
	}
	s.batches[b.AccountID] = list

	return &Result{Batch: b}, nil
}

// Recent returns the stored batches for an account, newest first.
func (s *MemorySink) Recent(accountID string) []*workflow.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.batches[accountID])
}

// Latest returns the newest batch for an account.
func (s *MemorySink) Latest(accountID string) (*workflow.Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.batches[accountID]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}
