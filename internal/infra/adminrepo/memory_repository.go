package adminrepo

import (
	"context"
	"sync"

	"github.com/oyado/faqbot/internal/domain/auth"
	apperrors "github.com/oyado/faqbot/pkg/errors"
)

// MemoryRepository is an in-memory auth.Repository used for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]auth.Admin
	byEmail map[string]string
}

// NewMemoryRepository constructs a repo backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]auth.Admin),
		byEmail: make(map[string]string),
	}
}

// GetByEmail implements auth.Repository.
func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return auth.Admin{}, apperrors.Wrap(auth.CodeAdminNotFound, "admin not found", nil)
	}
	return r.byID[id], nil
}

// GetByID implements auth.Repository.
func (r *MemoryRepository) GetByID(_ context.Context, id string) (auth.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	admin, ok := r.byID[id]
	if !ok {
		return auth.Admin{}, apperrors.Wrap(auth.CodeAdminNotFound, "admin not found", nil)
	}
	return admin, nil
}

// Insert implements auth.Repository.
func (r *MemoryRepository) Insert(_ context.Context, admin auth.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[admin.Email]; ok {
		return apperrors.Wrap(auth.CodeAdminExists, "admin already exists", nil)
	}
	r.byID[admin.ID] = admin
	r.byEmail[admin.Email] = admin.ID
	return nil
}

// Delete implements auth.Repository.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	admin, ok := r.byID[id]
	if !ok {
		return apperrors.Wrap(auth.CodeAdminNotFound, "admin not found", nil)
	}
	delete(r.byID, id)
	delete(r.byEmail, admin.Email)
	return nil
}

var _ auth.Repository = (*MemoryRepository)(nil)
