package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"taskd/internal/models"
)

// FileStore persists tasks to a single JSON file. The file holds an array
// of task objects. All reads are served from the in-memory map; every
// mutation rewrites the whole file.
type FileStore struct {
	path   string
	logger *logrus.Logger

	mu    sync.RWMutex
	tasks map[string]*models.Task
}

// NewFileStore opens path, creating the data directory and an empty file
// if absent. A file that cannot be parsed as JSON is treated as empty
// rather than failing startup.
func NewFileStore(path string, logger *logrus.Logger) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s := &FileStore{
		path:   path,
		logger: logger,
		tasks:  make(map[string]*models.Task),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s.persist()
	}
	if err != nil {
		return fmt.Errorf("reading task file: %w", err)
	}
	var tasks []*models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		s.logger.WithFields(logrus.Fields{
			"path":  s.path,
			"error": err,
		}).Warn("task file is not valid JSON, starting empty")
		return nil
	}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}
	return nil
}

// persist rewrites the file from the in-memory state. Callers must hold
// the write lock. The write goes through a temp file and a rename so a
// crash mid-write cannot truncate the previous contents.
func (s *FileStore) persist() error {
	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	sortTasks(tasks)
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing task file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing task file: %w", err)
	}
	return nil
}

// Create stores a new task and rewrites the file.
func (s *FileStore) Create(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *task
	s.tasks[task.ID] = &cp
	if err := s.persist(); err != nil {
		s.logger.WithError(err).Error("persisting task create")
		return err
	}
	return nil
}

// Get retrieves a task by ID from the in-memory copy.
func (s *FileStore) Get(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *task
	return &cp, nil
}

// Update replaces an existing task and rewrites the file.
func (s *FileStore) Update(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[task.ID]; !ok {
		return ErrNotFound
	}
	cp := *task
	s.tasks[task.ID] = &cp
	if err := s.persist(); err != nil {
		s.logger.WithError(err).Error("persisting task update")
		return err
	}
	return nil
}

// Delete removes a task by ID and rewrites the file.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(s.tasks, id)
	if err := s.persist(); err != nil {
		s.logger.WithError(err).Error("persisting task delete")
		return err
	}
	return nil
}

// List returns tasks sorted by creation time descending, paginated.
func (s *FileStore) List(ctx context.Context, limit, offset int) ([]*models.Task, error) {
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
func (s *FileStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks), nil
}
