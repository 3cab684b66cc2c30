package leads

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// Repository defines the interface for lead storage
type Repository interface {
	Upsert(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error)
}

// InMemoryRepository keeps leads in process memory.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	now   func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Upsert stores the snapshot, keeping the original creation time.
func (r *InMemoryRepository) Upsert(ctx context.Context, lead *Lead) error {
	if err := lead.Validate(); err != nil {
		return err
	}
	stored := cloneLead(lead)
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.leads[lead.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.leads[lead.ID] = stored
	lead.CreatedAt, lead.UpdatedAt = stored.CreatedAt, stored.UpdatedAt
	return nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return cloneLead(lead), nil
}

// List returns leads ordered by score, most recently updated first on ties.
func (r *InMemoryRepository) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	matched := make([]*Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		if filter.Qualification != "" && lead.Qualification != filter.Qualification {
			continue
		}
		if filter.Scenario != "" && lead.Scenario != filter.Scenario {
			continue
		}
		matched = append(matched, cloneLead(lead))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})

	if filter.Offset >= len(matched) {
		return []*Lead{}, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], nil
}

func cloneLead(l *Lead) *Lead {
	out := *l
	out.Reasons = slices.Clone(l.Reasons)
	out.NextActions = slices.Clone(l.NextActions)
	return &out
}
