// Package store provides the task and item repositories. All backends
// implement the same TaskRepository interface so the API layer does not
// care where records live.
package store

import (
	"context"
	"errors"
	"sort"

	"taskd/internal/models"
)

// ErrNotFound is returned when a record is not found in the store.
var ErrNotFound = errors.New("record not found")

// TaskRepository is implemented by every task storage backend.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*models.Task, error)
	Count(ctx context.Context) (int, error)
}

// sortTasks orders tasks by creation time, newest first. Ties break on ID
// so listings are deterministic.
func sortTasks(tasks []*models.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}

// paginate applies offset/limit to an already sorted slice.
func paginate(tasks []*models.Task, limit, offset int) []*models.Task {
	if offset >= len(tasks) {
		return []*models.Task{}
	}
	tasks = tasks[offset:]
	if limit < len(tasks) {
		tasks = tasks[:limit]
	}
	return tasks
}
