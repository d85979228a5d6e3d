package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flexgantt/flexgantt/pkg/task"
)

// MemoryStore keeps tasks in a map. The zero value is not usable; call
// NewMemoryStore.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]task.Task
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]task.Task),
		now:   time.Now,
	}
}

// List returns all tasks ordered by start date, then id.
func (s *MemoryStore) List(ctx context.Context) ([]task.Task, error) {
	s.mu.RLock()
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	s.mu.RUnlock()

	task.SortByStart(out)
	return out, nil
}

// Get returns a copy of the stored task.
func (s *MemoryStore) Get(ctx context.Context, id string) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, notFound(id)
	}
	return t.Clone(), nil
}

// Create stores t, assigning a UUID when its id is empty.
func (s *MemoryStore) Create(ctx context.Context, t task.Task) (task.Task, error) {
	t, err := prepare(t, s.now(), true)
	if err != nil {
		return task.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, dup := s.tasks[t.ID]; dup {
		return task.Task{}, exists(t.ID)
	}
	s.tasks[t.ID] = t
	return t.Clone(), nil
}

// Update replaces an existing task, keeping its creation time.
func (s *MemoryStore) Update(ctx context.Context, t task.Task) (task.Task, error) {
	t, err := prepare(t, s.now(), false)
	if err != nil {
		return task.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.tasks[t.ID]
	if !ok {
		return task.Task{}, notFound(t.ID)
	}
	t.CreatedAt = old.CreatedAt
	s.tasks[t.ID] = t
	return t.Clone(), nil
}

// Delete removes a task.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return notFound(id)
	}
	delete(s.tasks, id)
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
