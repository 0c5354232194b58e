package models

import (
	"fmt"
	"time"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

// Known task statuses. The task API may return other strings; they are
// displayed as-is.
const (
	TaskStatusTodo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusDone       TaskStatus = "Done"
)

// TaskStatuses returns the known statuses in workflow order
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}
}

// Valid reports whether s is a known status
func (s TaskStatus) Valid() bool {
	for _, known := range TaskStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Task is a single record served by the task API
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TaskStatus `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Line returns the list entry shown for a task: "<title>: <status>"
func (t Task) Line() string {
	return fmt.Sprintf("%s: %s", t.Title, t.Status)
}

// TaskList is the body of GET /api/mcp/tasks
type TaskList struct {
	Tasks []Task `json:"tasks"`
	Total int    `json:"total"`
}

// Lines returns the ordered list entries, numbered from 1
func (l *TaskList) Lines() []string {
	if l == nil {
		return nil
	}
	lines := make([]string, 0, len(l.Tasks))
	for i, t := range l.Tasks {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, t.Line()))
	}
	return lines
}
