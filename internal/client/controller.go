package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"tasklist/internal/models"
)

// ErrDeclined is returned by Delete when the user does not confirm.
var ErrDeclined = errors.New("delete cancelled")

// DeletePrompt is the question asked before every delete.
const DeletePrompt = "Are you sure you want to delete this task?"

// State is the controller's position in its load cycle.
type State int

const (
	Idle State = iota
	Loading
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// API is the subset of Client the controller drives.
type API interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, title string, completed bool) (*models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id string) (*models.Task, error)
}

// Renderer displays the task list. Render always receives the complete
// list and replaces whatever was shown before. Error must leave the last
// rendered list in place.
type Renderer interface {
	Render(tasks []models.Task)
	Error(err error)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ActionKind names a user action.
type ActionKind int

const (
	ActionLoad ActionKind = iota
	ActionCreate
	ActionToggle
	ActionDelete
)

// Action is one user command. Title is used by ActionCreate, Task by
// ActionToggle and ActionDelete.
type Action struct {
	Kind  ActionKind
	Title string
	Task  models.Task
}

// Controller keeps a Renderer in step with the server by re-fetching the
// full list after every successful mutation. It applies no optimistic
// changes, and overlapping loads are not cancelled: the last response to
// arrive wins.
type Controller struct {
	api     API
	view    Renderer
	confirm Confirmer

	mu       sync.Mutex
	inflight int
	tasks    []models.Task
}

// NewController wires a controller to its collaborators.
func NewController(api API, view Renderer, confirm Confirmer) *Controller {
	return &Controller{api: api, view: view, confirm: confirm}
}

// State reports Loading while any list fetch is outstanding.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		return Loading
	}
	return Idle
}

// Tasks returns the most recently rendered list.
func (c *Controller) Tasks() []models.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Dispatch runs the action.
func (c *Controller) Dispatch(ctx context.Context, a Action) error {
	switch a.Kind {
	case ActionLoad:
		return c.Load(ctx)
	case ActionCreate:
		return c.Create(ctx, a.Title)
	case ActionToggle:
		return c.Toggle(ctx, a.Task)
	case ActionDelete:
		return c.Delete(ctx, a.Task)
	default:
		return fmt.Errorf("unknown action %d", a.Kind)
	}
}

// Load fetches the full list and renders it.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	tasks, err := c.api.List(ctx)

	c.mu.Lock()
	c.inflight--
	if err == nil {
		c.tasks = tasks
	}
	c.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("failed to load tasks: %w", err)
		c.view.Error(err)
		return err
	}
	c.view.Render(tasks)
	return nil
}

// Create adds a task and reloads. A blank title issues no request.
func (c *Controller) Create(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	if _, err := c.api.Create(ctx, title, false); err != nil {
		err = fmt.Errorf("failed to add task: %w", err)
		c.view.Error(err)
		return err
	}
	return c.Load(ctx)
}

// Toggle flips the completion flag of task and reloads.
func (c *Controller) Toggle(ctx context.Context, task models.Task) error {
	patch := models.TaskPatch{Completed: models.Bool(!task.Completed)}
	if _, err := c.api.Update(ctx, task.ID, patch); err != nil {
		err = fmt.Errorf("failed to update task: %w", err)
		c.view.Error(err)
		return err
	}
	return c.Load(ctx)
}

// Delete asks for confirmation, removes task and reloads. Declining issues
// no request and returns ErrDeclined.
func (c *Controller) Delete(ctx context.Context, task models.Task) error {
	if !c.confirm.Confirm(DeletePrompt) {
		return ErrDeclined
	}

	if _, err := c.api.Delete(ctx, task.ID); err != nil {
		err = fmt.Errorf("failed to delete task: %w", err)
		c.view.Error(err)
		return err
	}
	return c.Load(ctx)
}
