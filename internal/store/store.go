package store

import (
	"context"

	"tasklist/internal/models"
)

// Store defines the interface for task persistence operations.
//
// Lookups of an unknown id return models.ErrNotFound. Invalid input is
// rejected with a *models.ValidationError before any storage is touched,
// and engine failures are wrapped in *models.StoreError.
type Store interface {
	// ListTasks returns every task, newest first when the backend records
	// creation times and in insertion order otherwise.
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	// CreateTask assigns task.ID (and CreatedAt where supported).
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (*models.Task, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
