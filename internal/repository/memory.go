package repository

import (
	"context"
	"sync"

	"solar_estimator/internal/domain"
)

// MemoryLeadRepo is a mutex-guarded in-memory lead store. Lead capture
// has no durability requirement here; the audit trail carries the
// long-lived record.
type MemoryLeadRepo struct {
	mu    sync.RWMutex
	leads map[string]*domain.Lead
	order []string // insertion order, newest last
}

// NewMemoryLeadRepo creates an empty in-memory repository
func NewMemoryLeadRepo() *MemoryLeadRepo {
	return &MemoryLeadRepo{
		leads: make(map[string]*domain.Lead),
	}
}

// Save stores a lead keyed by its ID
func (r *MemoryLeadRepo) Save(_ context.Context, lead *domain.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.leads[lead.ID]; !exists {
		r.order = append(r.order, lead.ID)
	}
	r.leads[lead.ID] = lead
	return nil
}

// Get returns a lead by ID or ErrLeadNotFound
func (r *MemoryLeadRepo) Get(_ context.Context, id string) (*domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// List returns leads newest-first with limit/offset paging
func (r *MemoryLeadRepo) List(_ context.Context, limit, offset int) ([]*domain.Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	result := make([]*domain.Lead, 0, limit)
	for i := len(r.order) - 1 - offset; i >= 0 && len(result) < limit; i-- {
		result = append(result, r.leads[r.order[i]])
	}
	return result, nil
}

// Count returns the number of stored leads
func (r *MemoryLeadRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.leads), nil
}
