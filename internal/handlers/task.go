package handlers

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tasklist/internal/models"
)

// createTaskRequest is the POST body. Completed is optional and defaults
// to false.
type createTaskRequest struct {
	Title     string `json:"title"`
	Completed *bool  `json:"completed"`
}

// ListTasks returns every task as a JSON array.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tasks)
}

// GetTask returns a single task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// CreateTask creates a new task.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task := &models.Task{Title: req.Title}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	if err := task.Validate(); err != nil {
		respondStoreError(w, err)
		return
	}

	if err := h.store.CreateTask(r.Context(), task); err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask applies a partial update to an existing task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := patch.Validate(); err != nil {
		respondStoreError(w, err)
		return
	}

	task, err := h.store.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task and returns the removed record.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.store.DeleteTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// Health reports whether the store is reachable.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		log.Printf("health check failed: %v", err)
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
