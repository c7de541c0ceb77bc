package sessions

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/fvicente/mazmorra/internal/errors"
)

// inMemoryRepository implements Repository using in-memory storage.
type inMemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewInMemoryRepository creates a new in-memory session repository.
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		snapshots: make(map[string]*Snapshot),
	}
}

// Create stores a new snapshot.
func (r *inMemoryRepository) Create(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.InvalidArgument("snapshot cannot be nil")
	}
	if snap.ID == "" {
		return errors.InvalidArgument("snapshot ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.snapshots[snap.ID]; exists {
		return errors.AlreadyExistsf("session %s already exists", snap.ID)
	}

	now := time.Now()
	snap.CreatedAt = now
	snap.UpdatedAt = now

	stored, err := deepCopy(snap)
	if err != nil {
		return err
	}
	r.snapshots[snap.ID] = stored
	return nil
}

// Get retrieves a snapshot by ID.
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, exists := r.snapshots[id]
	if !exists {
		return nil, errors.NotFoundf("session %s not found", id)
	}
	return deepCopy(snap)
}

// Update replaces an existing snapshot.
func (r *inMemoryRepository) Update(ctx context.Context, snap *Snapshot) error {
	if snap == nil {
		return errors.InvalidArgument("snapshot cannot be nil")
	}
	if snap.ID == "" {
		return errors.InvalidArgument("snapshot ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.snapshots[snap.ID]
	if !exists {
		return errors.NotFoundf("session %s not found", snap.ID)
	}

	snap.CreatedAt = existing.CreatedAt
	snap.UpdatedAt = time.Now()

	stored, err := deepCopy(snap)
	if err != nil {
		return err
	}
	r.snapshots[snap.ID] = stored
	return nil
}

// Delete removes a snapshot.
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.snapshots[id]; !exists {
		return errors.NotFoundf("session %s not found", id)
	}
	delete(r.snapshots, id)
	return nil
}

// List returns all snapshots ordered by last update, newest first.
func (r *inMemoryRepository) List(ctx context.Context) ([]*Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Snapshot, 0, len(r.snapshots))
	for _, snap := range r.snapshots {
		cp, err := deepCopy(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// deepCopy isolates stored snapshots from caller mutation. Snapshots are
// JSON-shaped by construction, so a marshal round trip is a faithful copy.
func deepCopy(snap *Snapshot) (*Snapshot, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "failed to copy snapshot")
	}
	var cp Snapshot
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, errors.Wrap(err, "failed to copy snapshot")
	}
	return &cp, nil
}
