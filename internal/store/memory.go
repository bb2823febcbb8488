package store

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"tasklist/internal/models"
)

// IDGenerator produces identifiers for new tasks. Implementations must
// never return the same value twice for the lifetime of a store.
type IDGenerator interface {
	NextID() string
}

// SequenceIDs hands out "1", "2", "3", ... starting after the zero value.
type SequenceIDs struct {
	n atomic.Int64
}

func (s *SequenceIDs) NextID() string {
	return strconv.FormatInt(s.n.Add(1), 10)
}

// UUIDs generates random version 4 UUIDs.
type UUIDs struct{}

func (UUIDs) NextID() string {
	return uuid.NewString()
}

// NewIDGenerator returns the generator for the named scheme
// ("sequence" or "uuid").
func NewIDGenerator(scheme string) (IDGenerator, error) {
	switch scheme {
	case "", "sequence":
		return &SequenceIDs{}, nil
	case "uuid":
		return UUIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q (want sequence or uuid)", scheme)
	}
}

// MemoryStore implements the Store interface in process memory.
// Tasks are kept in insertion order and have no creation timestamp.
type MemoryStore struct {
	mu    sync.RWMutex
	ids   IDGenerator
	tasks []models.Task
}

// NewMemoryStore creates an empty store. A nil generator means SequenceIDs.
func NewMemoryStore(ids IDGenerator) *MemoryStore {
	if ids == nil {
		ids = &SequenceIDs{}
	}
	return &MemoryStore{ids: ids, tasks: make([]models.Task, 0)}
}

// ListTasks returns a copy of all tasks in insertion order.
func (s *MemoryStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.Task, len(s.tasks))
	copy(tasks, s.tasks)
	return tasks, nil
}

// GetTask retrieves a task by ID.
func (s *MemoryStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	task := s.tasks[i]
	return &task, nil
}

// CreateTask validates and appends a new task.
func (s *MemoryStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task.ID = s.ids.NextID()
	task.CreatedAt = nil
	s.tasks = append(s.tasks, *task)
	return nil
}

// UpdateTask applies the supplied fields of patch to the task.
func (s *MemoryStore) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	patch.Apply(&s.tasks[i])
	task := s.tasks[i]
	return &task, nil
}

// DeleteTask removes a task and returns it.
func (s *MemoryStore) DeleteTask(ctx context.Context, id string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, models.ErrNotFound
	}
	task := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return &task, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

// indexOf must be called with s.mu held.
func (s *MemoryStore) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
