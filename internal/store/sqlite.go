package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tasklist/internal/models"
)

const taskColumns = `id, title, completed, created_at`

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given database path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &models.StoreError{Op: "ping database", Err: err}
	}
	return nil
}

// ListTasks retrieves all tasks, newest first.
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, &models.StoreError{Op: "list tasks", Err: err}
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, &models.StoreError{Op: "scan task", Err: err}
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StoreError{Op: "list tasks", Err: err}
	}

	return tasks, nil
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	rowID, ok := parseRowID(id)
	if !ok {
		return nil, models.ErrNotFound
	}
	return getTask(ctx, s.db, rowID)
}

// CreateTask inserts a new task and sets its ID and CreatedAt.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (title, completed, created_at)
		VALUES (?, ?, ?)
	`, task.Title, task.Completed, now)
	if err != nil {
		return &models.StoreError{Op: "create task", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return &models.StoreError{Op: "get last insert id", Err: err}
	}
	task.ID = strconv.FormatInt(id, 10)
	task.CreatedAt = &now

	return nil
}

// UpdateTask applies the supplied fields of patch in a single statement.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	rowID, ok := parseRowID(id)
	if !ok {
		return nil, models.ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &models.StoreError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET title = COALESCE(?, title), completed = COALESCE(?, completed)
		WHERE id = ?
	`, patch.Title, patch.Completed, rowID)
	if err != nil {
		return nil, &models.StoreError{Op: "update task", Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, &models.StoreError{Op: "update task", Err: err}
	}
	if n == 0 {
		return nil, models.ErrNotFound
	}

	task, err := getTask(ctx, tx, rowID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, &models.StoreError{Op: "commit update", Err: err}
	}

	return task, nil
}

// DeleteTask deletes a task by ID and returns the removed record.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) (*models.Task, error) {
	rowID, ok := parseRowID(id)
	if !ok {
		return nil, models.ErrNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &models.StoreError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback()

	task, err := getTask(ctx, tx, rowID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, rowID); err != nil {
		return nil, &models.StoreError{Op: "delete task", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return nil, &models.StoreError{Op: "commit delete", Err: err}
	}

	return task, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getTask(ctx context.Context, q queryRower, rowID int64) (*models.Task, error) {
	row := q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, rowID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, &models.StoreError{Op: "get task", Err: err}
	}
	return task, nil
}

func scanTask(sc scanner) (*models.Task, error) {
	var (
		rowID     int64
		task      models.Task
		createdAt sql.NullTime
	)
	if err := sc.Scan(&rowID, &task.Title, &task.Completed, &createdAt); err != nil {
		return nil, err
	}

	task.ID = strconv.FormatInt(rowID, 10)
	if createdAt.Valid {
		t := createdAt.Time
		task.CreatedAt = &t
	}
	return &task, nil
}

// parseRowID maps the opaque wire id onto the integer primary key.
func parseRowID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
