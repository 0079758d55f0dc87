package tenantrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/oyado/faqbot/internal/domain/tenant"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// MemoryRepository is an in-memory tenant.Repository used for tests/dev.
type MemoryRepository struct {
	mu        sync.RWMutex
	companies map[string]tenant.Company
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{companies: make(map[string]tenant.Company)}
}

// List implements tenant.Repository.
func (r *MemoryRepository) List(context.Context) ([]tenant.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]tenant.Company, 0, len(r.companies))
	for _, company := range r.companies {
		out = append(out, company)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements tenant.Repository.
func (r *MemoryRepository) Get(_ context.Context, id string) (tenant.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.companies[id]
	if !ok {
		return tenant.Company{}, apperrors.Wrap(tenant.CodeNotFound, "company not found", nil)
	}
	return company, nil
}

// Insert implements tenant.Repository.
func (r *MemoryRepository) Insert(_ context.Context, company tenant.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.ID]; ok {
		return apperrors.Wrap(tenant.CodeExists, "company already exists", nil)
	}
	r.companies[company.ID] = company
	return nil
}

// Update implements tenant.Repository.
func (r *MemoryRepository) Update(_ context.Context, company tenant.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.ID]; !ok {
		return apperrors.Wrap(tenant.CodeNotFound, "company not found", nil)
	}
	r.companies[company.ID] = company
	return nil
}

// Delete implements tenant.Repository.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return apperrors.Wrap(tenant.CodeNotFound, "company not found", nil)
	}
	delete(r.companies, id)
	return nil
}

var _ tenant.Repository = (*MemoryRepository)(nil)
