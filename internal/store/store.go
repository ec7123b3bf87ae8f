// Package store holds the signed-in user's task list on the client side and
// keeps it synchronized with the remote collection. All survivable failure
// modes leave the list in its last-known-good state.
package store

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sashankbanda/Focusly/internal/model"
	"github.com/sashankbanda/Focusly/internal/reconcile"
	"github.com/sashankbanda/Focusly/internal/task"
)

// API is the remote task collection as the store sees it. *apiclient.Client
// satisfies it.
type API interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, in task.CreateDoc) (model.Task, error)
	Update(ctx context.Context, id model.TaskID, p task.Patch) (model.Task, error)
	Delete(ctx context.Context, id model.TaskID) error
	ClearHistory(ctx context.Context) (int, error)
}

type Options struct {
	// SnapshotPath, when set, persists the fetched list to a local JSON
	// file so the list can be shown before the first sync (local edition).
	SnapshotPath string

	// OnRemove is invoked for every task removed from the store (delete or
	// history clear); the session uses it to purge the reminder state.
	OnRemove func(model.TaskID)

	Logger *logrus.Logger
}

type Store struct {
	mu       sync.RWMutex
	tasks    []model.Task
	deleting map[model.TaskID]struct{}

	api      API
	rec      *reconcile.Reconciler
	snapshot string
	onRemove func(model.TaskID)
	log      *logrus.Logger
}

func New(api API, opts Options) *Store {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Store{
		deleting: map[model.TaskID]struct{}{},
		api:      api,
		rec:      reconcile.New(api, log),
		snapshot: opts.SnapshotPath,
		onRemove: opts.OnRemove,
		log:      log,
	}
	if s.onRemove == nil {
		s.onRemove = func(model.TaskID) {}
	}
	s.loadSnapshot()
	return s
}

// Refresh pulls the remote list through the daily-reset reconciler.
func (s *Store) Refresh(ctx context.Context) error {
	tasks, err := s.rec.Fetch(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	s.saveSnapshot(tasks)
	return nil
}

// Tasks returns the visible list: everything except entries with a pending
// delete intent.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if _, hidden := s.deleting[t.ID]; hidden {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s *Store) Add(ctx context.Context, in task.CreateDoc) error {
	if _, err := s.api.Create(ctx, in); err != nil {
		return err
	}
	// Refetch so the new task carries its storage-assigned id.
	return s.Refresh(ctx)
}

// Toggle flips a task's completed flag. The server owns the
// completionDate transition; the local entry is replaced with its response.
func (s *Store) Toggle(ctx context.Context, id model.TaskID) error {
	s.mu.RLock()
	var cur *model.Task
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			cur = &s.tasks[i]
			break
		}
	}
	s.mu.RUnlock()
	if cur == nil {
		return task.ErrNotFound
	}

	next := !cur.Completed
	updated, err := s.api.Update(ctx, id, task.Patch{Completed: &next})
	if err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = updated
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Delete removes a task in three steps: an immediate intent marker hides it,
// the network commit runs, and reconciliation either drops the record (on
// success) or restores its visibility (on failure).
func (s *Store) Delete(ctx context.Context, id model.TaskID) error {
	s.mu.Lock()
	s.deleting[id] = struct{}{}
	s.mu.Unlock()

	if err := s.api.Delete(ctx, id); err != nil {
		s.mu.Lock()
		delete(s.deleting, id)
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	delete(s.deleting, id)
	s.tasks = removeTask(s.tasks, id)
	s.mu.Unlock()
	s.onRemove(id)
	return nil
}

// ClearHistory removes completed, non-repeating tasks remotely and locally.
func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.api.ClearHistory(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.tasks[:0]
	var removed []model.TaskID
	for _, t := range s.tasks {
		if t.Completed && !t.RepeatDaily {
			removed = append(removed, t.ID)
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	s.mu.Unlock()

	for _, id := range removed {
		s.onRemove(id)
	}
	return nil
}

func removeTask(tasks []model.Task, id model.TaskID) []model.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) loadSnapshot() {
	if s.snapshot == "" {
		return
	}
	b, err := os.ReadFile(s.snapshot)
	if err != nil {
		return
	}
	var tasks []model.Task
	if err := json.Unmarshal(b, &tasks); err != nil {
		s.log.WithError(err).Warn("task snapshot unreadable, ignoring")
		return
	}
	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
}

func (s *Store) saveSnapshot(tasks []model.Task) {
	if s.snapshot == "" {
		return
	}
	b, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(s.snapshot, b, 0o644); err != nil {
		s.log.WithError(err).Warn("task snapshot write failed")
	}
}
