// Package memory holds process-local repositories used for development, the
// CLI demo mode and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"go-hr-tracker/internal/domain"
)

type candidateRepo struct {
	mu      sync.RWMutex
	byID    map[string]*domain.Candidate
	byEmail map[string]string
}

func NewCandidateRepository() domain.CandidateRepository {
	return &candidateRepo{
		byID:    make(map[string]*domain.Candidate),
		byEmail: make(map[string]string),
	}
}

// clone deep-copies a candidate so callers never share history slices with the store.
func clone(c *domain.Candidate, withHistory bool) *domain.Candidate {
	out := *c
	out.StatusChanges = nil
	if withHistory {
		out.StatusChanges = make([]domain.StatusChange, len(c.StatusChanges))
		for i, sc := range c.StatusChanges {
			if sc.PreviousStatus != nil {
				prev := *sc.PreviousStatus
				sc.PreviousStatus = &prev
			}
			out.StatusChanges[i] = sc
		}
	}
	return &out
}

func (r *candidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[c.Email]; exists {
		return domain.ErrDuplicateEmail
	}
	r.byID[c.ID] = clone(c, true)
	r.byEmail[c.Email] = c.ID
	return nil
}

func (r *candidateRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.byEmail[email]
	return exists, nil
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(c, true), nil
}

func (r *candidateRepo) List(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	allowed := map[domain.Department]bool{}
	for _, d := range filter.Departments {
		allowed[d] = true
	}

	matched := make([]*domain.Candidate, 0, len(r.byID))
	for _, c := range r.byID {
		if len(allowed) > 0 && !allowed[c.Department] {
			continue
		}
		matched = append(matched, c)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	out := []domain.Candidate{}
	start := filter.Offset()
	if start < 0 || start >= len(matched) {
		return out, total, nil
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	for _, c := range matched[start:end] {
		out = append(out, *clone(c, false))
	}
	return out, total, nil
}

// UpdateStatus applies mutate on a copy under the write lock and swaps it in
// only on success.
func (r *candidateRepo) UpdateStatus(ctx context.Context, id string, mutate domain.StatusMutation) (*domain.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	working := clone(stored, true)
	if _, err := mutate(working); err != nil {
		return nil, err
	}
	r.byID[id] = working
	return clone(working, true), nil
}
