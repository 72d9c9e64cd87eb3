package conflict

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/adamsuskin/grocery-sub012/internal/domain"
)

// Registry holds the set of currently open conflicts. At most one open
// conflict exists per item id; upserting for an item that already has
// one replaces it, since the newer detection reflects the latest remote
// state.
//
// All operations serialize behind a single mutex so registry mutations
// apply in the order their triggering events arrived.
type Registry struct {
	mu     sync.Mutex
	byID   map[string]*domain.Conflict
	byItem map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*domain.Conflict),
		byItem: make(map[string]string),
	}
}

// Upsert stores the conflict, replacing any open conflict for the same
// item, and returns the stored copy with its final id.
func (r *Registry) Upsert(c *domain.Conflict) *domain.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *c
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}

	if previousID, ok := r.byItem[stored.ItemID]; ok {
		delete(r.byID, previousID)
	}

	r.byID[stored.ID] = &stored
	r.byItem[stored.ItemID] = stored.ID

	return &stored
}

// Get returns the open conflict with the given id, or nil.
func (r *Registry) Get(conflictID string) *domain.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.byID[conflictID]; ok {
		clone := *c
		return &clone
	}
	return nil
}

// GetByItem returns the open conflict for the given item id, or nil.
func (r *Registry) GetByItem(itemID string) *domain.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byItem[itemID]; ok {
		clone := *r.byID[id]
		return &clone
	}
	return nil
}

// ListOpen returns all open conflicts sorted by priority descending,
// then detection time descending (newest first).
func (r *Registry) ListOpen() []*domain.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	conflicts := make([]*domain.Conflict, 0, len(r.byID))
	for _, c := range r.byID {
		clone := *c
		conflicts = append(conflicts, &clone)
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].Priority != conflicts[j].Priority {
			return conflicts[i].Priority > conflicts[j].Priority
		}
		return conflicts[i].DetectedAt.After(conflicts[j].DetectedAt)
	})

	return conflicts
}

// Resolve removes the conflict from the open set. Returns ErrNotFound
// for an unknown id; callers treat that as another session having
// resolved it first.
func (r *Registry) Resolve(conflictID string) error {
	return r.remove(conflictID)
}

// Dismiss removes the conflict without recording a resolution outcome.
// Removal semantics are identical to Resolve.
func (r *Registry) Dismiss(conflictID string) error {
	return r.remove(conflictID)
}

func (r *Registry) remove(conflictID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[conflictID]
	if !ok {
		return ErrNotFound
	}

	delete(r.byID, conflictID)
	delete(r.byItem, c.ItemID)
	return nil
}

// Len returns the number of open conflicts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
