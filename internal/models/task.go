package models

import (
	"strings"
	"time"
)

// Task represents a single to-do item.
type Task struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	return nil
}

// TaskPatch holds the fields of a partial update. A nil field is left
// untouched, so completed=false is distinguishable from "not supplied".
type TaskPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Validate checks the supplied fields only.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// Apply copies the supplied fields onto t. The ID is never touched.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// Bool returns a pointer to b, for building patches.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s, for building patches.
func String(s string) *string { return &s }
