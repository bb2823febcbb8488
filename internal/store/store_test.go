package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tasklist/internal/models"
)

// testStoreContract runs the behaviour every backend must share.
// newStore must return an empty store.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateDefaultsCompletedFalse", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := &models.Task{Title: "Buy milk"}
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		if task.ID == "" {
			t.Error("expected task ID to be set")
		}
		if task.Completed {
			t.Error("expected completed to default to false")
		}

		got, err := s.GetTask(ctx, task.ID)
		if err != nil {
			t.Fatalf("GetTask failed: %v", err)
		}
		if got.Title != "Buy milk" || got.Completed {
			t.Errorf("unexpected stored task: %+v", got)
		}
	})

	t.Run("CreateHonoursCompleted", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := &models.Task{Title: "Already done", Completed: true}
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask failed: %v", err)
		}
		got, _ := s.GetTask(ctx, task.ID)
		if got == nil || !got.Completed {
			t.Errorf("expected completed=true, got %+v", got)
		}
	})

	t.Run("CreateRejectsEmptyTitle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, title := range []string{"", "   "} {
			err := s.CreateTask(ctx, &models.Task{Title: title})
			if !models.IsValidation(err) {
				t.Errorf("title %q: expected ValidationError, got %v", title, err)
			}
		}

		tasks, err := s.ListTasks(ctx)
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected no tasks after rejected creates, got %d", len(tasks))
		}
	})

	t.Run("IDsAreUnique", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		seen := make(map[string]bool)
		for i := 0; i < 10; i++ {
			task := &models.Task{Title: "Same"}
			if err := s.CreateTask(ctx, task); err != nil {
				t.Fatalf("CreateTask failed: %v", err)
			}
			if seen[task.ID] {
				t.Fatalf("duplicate id %q", task.ID)
			}
			seen[task.ID] = true
		}
	})

	t.Run("ConcurrentCreates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 10
		tasks := make([]*models.Task, n)
		errs := make([]error, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tasks[i] = &models.Task{Title: "Same title"}
				errs[i] = s.CreateTask(ctx, tasks[i])
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool)
		for i := range tasks {
			if errs[i] != nil {
				t.Fatalf("CreateTask %d failed: %v", i, errs[i])
			}
			if seen[tasks[i].ID] {
				t.Fatalf("duplicate id %q", tasks[i].ID)
			}
			seen[tasks[i].ID] = true
		}

		list, _ := s.ListTasks(ctx)
		if len(list) != n {
			t.Errorf("expected %d tasks, got %d", n, len(list))
		}
	})

	t.Run("GetUnknown", func(t *testing.T) {
		s := newStore(t)

		for _, id := range []string{"999", "not-an-id", ""} {
			_, err := s.GetTask(context.Background(), id)
			if !errors.Is(err, models.ErrNotFound) {
				t.Errorf("id %q: expected ErrNotFound, got %v", id, err)
			}
		}
	})

	t.Run("UpdateChangesOnlySuppliedFields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := &models.Task{Title: "Original"}
		s.CreateTask(ctx, task)

		updated, err := s.UpdateTask(ctx, task.ID, models.TaskPatch{Completed: models.Bool(true)})
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if !updated.Completed || updated.Title != "Original" || updated.ID != task.ID {
			t.Errorf("unexpected task after completing: %+v", updated)
		}

		updated, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{Title: models.String("Renamed")})
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if !updated.Completed {
			t.Error("expected title update to leave completed untouched")
		}
		if updated.Title != "Renamed" {
			t.Errorf("expected title Renamed, got %q", updated.Title)
		}

		updated, err = s.UpdateTask(ctx, task.ID, models.TaskPatch{Completed: models.Bool(false)})
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if updated.Completed {
			t.Error("expected completed=false to be applied")
		}
	})

	t.Run("EmptyUpdateIsNoOp", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := &models.Task{Title: "Untouched", Completed: true}
		s.CreateTask(ctx, task)

		updated, err := s.UpdateTask(ctx, task.ID, models.TaskPatch{})
		if err != nil {
			t.Fatalf("UpdateTask failed: %v", err)
		}
		if updated.Title != "Untouched" || !updated.Completed || updated.ID != task.ID {
			t.Errorf("expected unchanged task, got %+v", updated)
		}
	})

	t.Run("UpdateRejectsBlankTitle", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := &models.Task{Title: "Keep me"}
		s.CreateTask(ctx, task)

		_, err := s.UpdateTask(ctx, task.ID, models.TaskPatch{Title: models.String(" ")})
		if !models.IsValidation(err) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		got, _ := s.GetTask(ctx, task.ID)
		if got.Title != "Keep me" {
			t.Errorf("expected title to survive rejected update, got %q", got.Title)
		}
	})

	t.Run("UpdateUnknown", func(t *testing.T) {
		s := newStore(t)

		_, err := s.UpdateTask(context.Background(), "999", models.TaskPatch{Completed: models.Bool(true)})
		if !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		task := &models.Task{Title: "Doomed"}
		s.CreateTask(ctx, task)

		deleted, err := s.DeleteTask(ctx, task.ID)
		if err != nil {
			t.Fatalf("DeleteTask failed: %v", err)
		}
		if deleted.ID != task.ID || deleted.Title != "Doomed" {
			t.Errorf("expected deleted record, got %+v", deleted)
		}

		if _, err := s.GetTask(ctx, task.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if _, err := s.DeleteTask(ctx, task.ID); !errors.Is(err, models.ErrNotFound) {
			t.Errorf("expected second delete to be ErrNotFound, got %v", err)
		}
	})

	t.Run("ListReflectsCreatesDeletesAndUpdates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		tasks, err := s.ListTasks(ctx)
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		if tasks == nil || len(tasks) != 0 {
			t.Fatalf("expected empty non-nil list, got %#v", tasks)
		}

		var created []*models.Task
		for _, title := range []string{"a", "b", "c", "d", "e"} {
			task := &models.Task{Title: title}
			s.CreateTask(ctx, task)
			created = append(created, task)
		}
		s.DeleteTask(ctx, created[1].ID)
		s.DeleteTask(ctx, created[3].ID)
		s.UpdateTask(ctx, created[4].ID, models.TaskPatch{Completed: models.Bool(true)})

		tasks, err = s.ListTasks(ctx)
		if err != nil {
			t.Fatalf("ListTasks failed: %v", err)
		}
		if len(tasks) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(tasks))
		}
		for _, task := range tasks {
			if task.ID == created[1].ID || task.ID == created[3].ID {
				t.Errorf("deleted task %q still listed", task.ID)
			}
			if task.ID == created[4].ID && !task.Completed {
				t.Error("expected listed task to carry its last update")
			}
		}
	})

	t.Run("Ping", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ping(context.Background()); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}
