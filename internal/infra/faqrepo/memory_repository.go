package faqrepo

import (
	"context"
	"sync"

	"github.com/oyado/faqbot/internal/domain/faq"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// MemoryRepository is an in-memory faq.Repository used for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries map[string]faq.Entry
	order   []string
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]faq.Entry)}
}

// ListByCompany implements faq.Repository.
func (r *MemoryRepository) ListByCompany(_ context.Context, companyID string) ([]faq.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []faq.Entry
	for _, id := range r.order {
		entry := r.entries[id]
		if entry.CompanyID == companyID {
			out = append(out, cloneEntry(entry))
		}
	}
	return out, nil
}

// Get implements faq.Repository.
func (r *MemoryRepository) Get(_ context.Context, companyID, id string) (faq.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok || entry.CompanyID != companyID {
		return faq.Entry{}, apperrors.Wrap(faq.CodeNotFound, "faq entry not found", nil)
	}
	return cloneEntry(entry), nil
}

// Insert implements faq.Repository.
func (r *MemoryRepository) Insert(_ context.Context, entry faq.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(entry)
	return nil
}

// Update implements faq.Repository.
func (r *MemoryRepository) Update(_ context.Context, entry faq.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.entries[entry.ID]
	if !ok || existing.CompanyID != entry.CompanyID {
		return apperrors.Wrap(faq.CodeNotFound, "faq entry not found", nil)
	}
	r.entries[entry.ID] = cloneEntry(entry)
	return nil
}

// Delete implements faq.Repository.
func (r *MemoryRepository) Delete(_ context.Context, companyID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok || entry.CompanyID != companyID {
		return apperrors.Wrap(faq.CodeNotFound, "faq entry not found", nil)
	}
	r.deleteLocked(id)
	return nil
}

// ReplaceAll implements faq.Repository.
func (r *MemoryRepository) ReplaceAll(_ context.Context, companyID string, entries []faq.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range append([]string(nil), r.order...) {
		if r.entries[id].CompanyID == companyID {
			r.deleteLocked(id)
		}
	}
	for _, entry := range entries {
		r.insertLocked(entry)
	}
	return nil
}

func (r *MemoryRepository) insertLocked(entry faq.Entry) {
	if _, ok := r.entries[entry.ID]; !ok {
		r.order = append(r.order, entry.ID)
	}
	r.entries[entry.ID] = cloneEntry(entry)
}

func (r *MemoryRepository) deleteLocked(id string) {
	delete(r.entries, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func cloneEntry(entry faq.Entry) faq.Entry {
	entry.Embedding = append([]float32(nil), entry.Embedding...)
	return entry
}

var _ faq.Repository = (*MemoryRepository)(nil)
