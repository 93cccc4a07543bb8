// Package models contains the record types and request payloads shared
// by the HTTP handlers and the storage backends.
package models

import "time"

// Task is the record persisted by the task repositories. Timestamps are
// UTC and equal at creation.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTaskRequest is the payload for creating a new task.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Completed   bool   `json:"completed"`
}

// UpdateTaskRequest is the payload for updating an existing task.
type UpdateTaskRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Completed   bool   `json:"completed"`
}
