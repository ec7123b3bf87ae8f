package task

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sashankbanda/Focusly/internal/model"
)

type fileState struct {
	Users map[string]userTaskState `json:"users"`
}

type userTaskState struct {
	Tasks map[model.TaskID]model.Task `json:"tasks"`
}

func newFileState() fileState {
	return fileState{Users: map[string]userTaskState{}}
}

type fileStore struct {
	mu   sync.RWMutex
	path string
	s    fileState
}

// FileRepo is a persistent task repository backed by a single JSON file.
// It is user-scoped; call ForUser(userID) to get a scoped view.
type FileRepo struct {
	store  *fileStore
	userID string

	Now func() time.Time
}

func NewFileRepo(dataDir string) (*FileRepo, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &fileStore{
		path: filepath.Join(dataDir, "tasks.json"),
		s:    newFileState(),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return &FileRepo{store: st, userID: "default", Now: time.Now}, nil
}

func (s *fileStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.s = newFileState()
			return nil
		}
		return err
	}

	var loaded fileState
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Users == nil {
		loaded.Users = map[string]userTaskState{}
	}
	for uid, us := range loaded.Users {
		if us.Tasks == nil {
			us.Tasks = map[model.TaskID]model.Task{}
		}
		loaded.Users[uid] = us
	}
	s.s = loaded
	return nil
}

func (s *fileStore) saveLocked() error {
	b, err := json.MarshalIndent(s.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0o644)
}

func (r *FileRepo) ForUser(userID string) *FileRepo {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = "default"
	}
	return &FileRepo{store: r.store, userID: userID, Now: r.Now}
}

func (r *FileRepo) userStateLocked() userTaskState {
	us, ok := r.store.s.Users[r.userID]
	if !ok {
		us = userTaskState{Tasks: map[model.TaskID]model.Task{}}
		r.store.s.Users[r.userID] = us
	}
	return us
}

func (r *FileRepo) Create(_ context.Context, t model.Task) (model.Task, error) {
	if err := validateNew(&t); err != nil {
		return model.Task{}, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.Now()
	t.ID = newID()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.userStateLocked().Tasks[t.ID] = t
	if err := r.store.saveLocked(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *FileRepo) Get(_ context.Context, id model.TaskID) (model.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.s.Users[r.userID].Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *FileRepo) Update(_ context.Context, id model.TaskID, p Patch) (model.Task, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	t, ok := us.Tasks[id]
	if !ok {
		return model.Task{}, ErrNotFound
	}
	if err := applyPatch(&t, p, r.Now()); err != nil {
		return model.Task{}, err
	}
	us.Tasks[id] = t
	if err := r.store.saveLocked(); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (r *FileRepo) List(_ context.Context) ([]model.Task, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	ts := r.store.s.Users[r.userID].Tasks
	out := make([]model.Task, 0, len(ts))
	for _, t := range ts {
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *FileRepo) Delete(_ context.Context, id model.TaskID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	if _, ok := us.Tasks[id]; !ok {
		return ErrNotFound
	}
	delete(us.Tasks, id)
	return r.store.saveLocked()
}

func (r *FileRepo) ClearHistory(_ context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	us := r.userStateLocked()
	removed := 0
	for id, t := range us.Tasks {
		if clearable(t) {
			delete(us.Tasks, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, r.store.saveLocked()
}
