package models

import (
	"testing"
)

func TestRoleValid(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleUser, true},
		{RoleAssistant, true},
		{RoleError, true},
		{"system", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.Valid(); got != tt.expected {
				t.Errorf("Role(%q).Valid() = %v, want %v", tt.role, got, tt.expected)
			}
		})
	}
}

func TestMessageConstructors(t *testing.T) {
	if m := NewUserMessage("hi"); m.Role != RoleUser || m.Content != "hi" {
		t.Errorf("NewUserMessage() = %+v", m)
	}
	if m := NewAssistantMessage("  spaced\n"); m.Role != RoleAssistant || m.Content != "  spaced\n" {
		t.Errorf("NewAssistantMessage() should keep content verbatim, got %+v", m)
	}
	if m := NewErrorMessage("boom"); m.Role != RoleError || m.Content != "boom" {
		t.Errorf("NewErrorMessage() = %+v", m)
	}
}

func TestTaskStatusValid(t *testing.T) {
	for _, s := range TaskStatuses() {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if TaskStatus("Blocked").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestTaskLine(t *testing.T) {
	task := Task{Title: "Write docs", Status: TaskStatusInProgress}

	if got := task.Line(); got != "Write docs: In Progress" {
		t.Errorf("Line() = %s, want %s", got, "Write docs: In Progress")
	}
}

func TestTaskListLines(t *testing.T) {
	list := &TaskList{Tasks: []Task{
		{Title: "a", Status: TaskStatusTodo},
		{Title: "b", Status: TaskStatusDone},
	}}

	lines := list.Lines()
	want := []string{"1. a: To Do", "2. b: Done"}
	if len(lines) != len(want) {
		t.Fatalf("len(Lines()) = %d, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Lines()[%d] = %s, want %s", i, lines[i], want[i])
		}
	}

	var nilList *TaskList
	if nilList.Lines() != nil {
		t.Error("nil TaskList should have no lines")
	}
}
