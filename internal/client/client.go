// Package client talks to the task API over HTTP and keeps a rendered view
// of the task list in sync with it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tasklist/internal/models"
)

// APIError is a non-2xx response from the task API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client is a typed HTTP client for one task collection URL,
// e.g. http://localhost:8080/api/tasks.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client. A nil httpClient means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// List fetches every task.
func (c *Client) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Get fetches a single task.
func (c *Client) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, c.taskURL(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create adds a task.
func (c *Client) Create(ctx context.Context, title string, completed bool) (*models.Task, error) {
	body := map[string]interface{}{"title": title, "completed": completed}
	var task models.Task
	if err := c.do(ctx, http.MethodPost, c.baseURL, body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update sends a partial update.
func (c *Client) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, c.taskURL(id), patch, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task and returns the deleted record.
func (c *Client) Delete(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodDelete, c.taskURL(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) taskURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, target string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
