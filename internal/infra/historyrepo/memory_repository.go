package historyrepo

import (
	"context"
	"sync"

	"github.com/oyado/faqbot/internal/domain/chat"
)

// MemoryRepository is an in-memory chat.HistoryRepository used for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []chat.HistoryRecord
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Insert implements chat.HistoryRepository.
func (r *MemoryRepository) Insert(_ context.Context, record chat.HistoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
	return nil
}

// ListByCompany implements chat.HistoryRepository.
func (r *MemoryRepository) ListByCompany(_ context.Context, companyID string, limit int) ([]chat.HistoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []chat.HistoryRecord
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].CompanyID == companyID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

var _ chat.HistoryRepository = (*MemoryRepository)(nil)
