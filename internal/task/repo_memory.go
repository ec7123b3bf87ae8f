package task

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sashankbanda/Focusly/internal/model"
)

type memoryStore struct {
	mu    sync.RWMutex
	users map[string]map[model.TaskID]model.Task
}

// MemoryRepo is an in-memory, user-scoped repository (dev/test use).
// Call ForUser(userID) to obtain a view over one user's tasks.
type MemoryRepo struct {
	store  *memoryStore
	userID string

	// Now is the clock used for createdAt/updatedAt/completionDate.
	// Overridable in tests.
	Now func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store:  &memoryStore{users: map[string]map[model.TaskID]model.Task{}},
		userID: "default",
		Now:    time.Now,
	}
}

func (r *MemoryRepo) ForUser(userID string) *MemoryRepo {
	if userID == "" {
		userID = "default"
	}
	return &MemoryRepo{store: r.store, userID: userID, Now: r.Now}
}

func newID() model.TaskID {
	return model.TaskID("task_" + uuid.NewString())
}

func (r *MemoryRepo) tasksLocked() map[model.TaskID]model.Task {
	ts, ok := r.store.users[r.userID]
	if !ok {
		ts = map[model.TaskID]model.Task{}
		r.store.users[r.userID] = ts
	}
	return ts
}

func (r *MemoryRepo) Create(_ context.Context, t model.Task) (model.Task, error) {
	if err := validateNew(&t); err != nil {
		return model.Task{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.tasksLocked()[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) Get(_ context.Context, id model.TaskID) (model.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.users[r.userID][id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) Update(_ context.Context, id model.TaskID, p Patch) (model.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ts := r.tasksLocked()
	t, ok := ts[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	if err := applyPatch(&t, p, r.Now()); err != nil {
		return model.Task{}, err
	}
	ts[id] = t
	return t, nil
}

func (r *MemoryRepo) List(_ context.Context) ([]model.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ts := r.store.users[r.userID]
	out := make([]model.Task, 0, len(ts))
	for _, t := range ts {
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) Delete(_ context.Context, id model.TaskID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ts := r.tasksLocked()
	if _, ok := ts[id]; !ok {
		return ErrNotFound
	}
	delete(ts, id)
	return nil
}

func (r *MemoryRepo) ClearHistory(_ context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	ts := r.tasksLocked()
	removed := 0
	for id, t := range ts {
		if clearable(t) {
			delete(ts, id)
			removed++
		}
	}
	return removed, nil
}
