package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"

	"github.com/diogo/mcpchat/internal/models"
)

// Task field limits
const (
	MaxTitleLength = 200
	DefaultLimit   = 100
	MaxLimit       = 1000
)

var (
	// ErrTaskNotFound is returned when no task has the requested id
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTask wraps every validation failure of a TaskInput
	ErrInvalidTask = errors.New("invalid task")
)

// TaskInput is the body of a create request
type TaskInput struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

// Validate checks the input against the task rules at time now. An empty
// status is accepted and means To Do.
func (in TaskInput) Validate(now time.Time) error {
	n := utf8.RuneCountInString(in.Title)
	if n < 1 || n > MaxTitleLength {
		return fmt.Errorf("%w: title must be between 1 and %d characters", ErrInvalidTask, MaxTitleLength)
	}
	if in.Status != "" && !models.TaskStatus(in.Status).Valid() {
		return fmt.Errorf("%w: status must be one of To Do, In Progress, Done", ErrInvalidTask)
	}
	if in.DueDate != nil && in.DueDate.Before(now) {
		return fmt.Errorf("%w: Due date cannot be in the past", ErrInvalidTask)
	}
	return nil
}

// ListOptions filters and pages a task listing
type ListOptions struct {
	Status string
	Skip   int
	Limit  int
}

// TaskStore persists tasks in SQLite
type TaskStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenTaskStore opens (and migrates) the database at dsn. ":memory:" gives
// a private in-memory database.
func OpenTaskStore(dsn string) (*TaskStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to :memory: is a separate database
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &TaskStore{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *TaskStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			status TEXT NOT NULL DEFAULT 'To Do',
			due_date DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database
func (s *TaskStore) Close() error {
	return s.db.Close()
}

// Create validates and inserts a task
func (s *TaskStore) Create(ctx context.Context, in TaskInput) (models.Task, error) {
	now := s.now().UTC()
	if err := in.Validate(now); err != nil {
		return models.Task{}, err
	}

	status := in.Status
	if status == "" {
		status = string(models.TaskStatusTodo)
	}

	var due sql.NullTime
	if in.DueDate != nil {
		due = sql.NullTime{Time: in.DueDate.UTC(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, due_date, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		in.Title, nullString(in.Description), status, due, now, now,
	)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to read task id: %w", err)
	}
	return s.Get(ctx, id)
}

// Get returns the task with the given id
func (s *TaskStore) Get(ctx context.Context, id int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, due_date, created_at, updated_at FROM tasks WHERE id = ?`, id)

	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return task, err
}

// List returns one page of tasks, newest first, and the number of tasks
// matching the status filter.
func (s *TaskStore) List(ctx context.Context, opts ListOptions) ([]models.Task, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}

	where := ""
	args := []any{}
	if opts.Status != "" {
		where = " WHERE status = ?"
		args = append(args, opts.Status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, status, due_date, created_at, updated_at FROM tasks`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Skip)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// Seed inserts a few sample tasks when the table is empty
func (s *TaskStore) Seed(ctx context.Context) error {
	_, total, err := s.List(ctx, ListOptions{Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	samples := []TaskInput{
		{Title: "Set up the database", Status: string(models.TaskStatusDone)},
		{Title: "Write the task API", Status: string(models.TaskStatusInProgress)},
		{Title: "Connect the chat client", Status: string(models.TaskStatusTodo)},
	}
	for _, in := range samples {
		if _, err := s.Create(ctx, in); err != nil {
			return fmt.Errorf("failed to seed tasks: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task        models.Task
		description sql.NullString
		status      string
		due         sql.NullTime
		created     time.Time
		updated     time.Time
	)
	if err := row.Scan(&task.ID, &task.Title, &description, &status, &due, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task, err
		}
		return task, fmt.Errorf("failed to scan task: %w", err)
	}

	task.Status = models.TaskStatus(status)
	if description.Valid {
		task.Description = &description.String
	}
	if due.Valid {
		t := due.Time.UTC()
		task.DueDate = &t
	}
	created, updated = created.UTC(), updated.UTC()
	task.CreatedAt = &created
	task.UpdatedAt = &updated
	return task, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
