package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"taskd/internal/models"
)

// RedisStore provides task persistence in Redis. Each task lives under
// task:{id} as JSON, with a "tasks" set holding the IDs for listing.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func taskKey(id string) string {
	return fmt.Sprintf("task:%s", id)
}

func (s *RedisStore) save(ctx context.Context, task *models.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, taskKey(task.ID), data, 0)
	pipe.SAdd(ctx, "tasks", task.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// Create stores a new task.
func (s *RedisStore) Create(ctx context.Context, task *models.Task) error {
	return s.save(ctx, task)
}

// Get retrieves a task by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Task, error) {
	data, err := s.client.Get(ctx, taskKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var task models.Task
	if err := json.Unmarshal([]byte(data), &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update replaces an existing task.
func (s *RedisStore) Update(ctx context.Context, task *models.Task) error {
	if _, err := s.Get(ctx, task.ID); err != nil {
		return err
	}
	return s.save(ctx, task)
}

// Delete removes a task by ID.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Del(ctx, taskKey(id))
	pipe.SRem(ctx, "tasks", id)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns tasks sorted by creation time descending, paginated.
// IDs are read from the set and the values fetched in one pipeline.
func (s *RedisStore) List(ctx context.Context, limit, offset int) ([]*models.Task, error) {
	ids, err := s.client.SMembers(ctx, "tasks").Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*models.Task{}, nil
	}
	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, taskKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	tasks := make([]*models.Task, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var task models.Task
		if err := json.Unmarshal([]byte(data), &task); err != nil {
			return nil, err
		}
		tasks = append(tasks, &task)
	}
	sortTasks(tasks)
	return paginate(tasks, limit, offset), nil
}

// Count returns the number of stored tasks.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, "tasks").Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
