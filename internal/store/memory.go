package store

import (
	"context"
	"sync"

	"taskd/internal/models"
)

// MemoryStore keeps tasks in a map guarded by a RWMutex. It is the
// default backend and the one the API tests run against.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
}

// NewMemoryStore creates an empty in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*models.Task)}
}

// Create stores a new task.
func (s *MemoryStore) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

// Get retrieves a task by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *task
	return &cp, nil
}

// Update replaces an existing task.
func (s *MemoryStore) Update(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

// Delete removes a task by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// List returns tasks sorted by creation time descending, paginated.
func (s *MemoryStore) List(ctx context.Context, limit, offset int) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		cp := *t
		tasks = append(tasks, &cp)
	}
	sortTasks(tasks)
	return paginate(tasks, limit, offset), nil
}

// Count returns the number of stored tasks.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks), nil
}
