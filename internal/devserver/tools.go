package devserver

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/diogo/mcpchat/internal/models"
)

var (
	// ErrToolNotFound is returned when invoking an unregistered tool
	ErrToolNotFound = errors.New("tool not found")
	// ErrDuplicateTool is returned when registering a name twice
	ErrDuplicateTool = errors.New("tool already registered")
	// ErrToolArgs wraps bad tool arguments
	ErrToolArgs = errors.New("invalid tool arguments")
)

// Tool is a named operation the chat responder can call on behalf of a
// message, in the manner of an MCP tool.
type Tool interface {
	Name() string
	Description() string
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolInfo describes a registered tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PanicError reports a tool that panicked during Call
type PanicError struct {
	Tool  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("tool %q panicked: %v", e.Tool, e.Value)
}

// Registry holds tools by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	timeout time.Duration
}

// NewRegistry creates an empty registry. A positive timeout bounds every
// Invoke whose context has no deadline.
func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		timeout: timeout,
	}
}

// Register adds a tool
func (r *Registry) Register(tool Tool) error {
	if tool == nil || tool.Name() == "" {
		return fmt.Errorf("%w: tool must have a name", ErrToolArgs)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[tool.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, tool.Name())
	}
	r.tools[tool.Name()] = tool
	return nil
}

// Get returns the tool registered under name
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return tool, nil
}

// List returns the registered tools sorted by name
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		infos = append(infos, ToolInfo{Name: t.Name(), Description: t.Description()})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Invoke calls a tool. A panic inside the tool is returned as *PanicError.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (result any, err error) {
	tool, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	if r.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	defer func() {
		if v := recover(); v != nil {
			result = nil
			err = &PanicError{Tool: name, Value: v, Stack: debug.Stack()}
		}
	}()

	return tool.Call(ctx, args)
}

// funcTool adapts a function to Tool
type funcTool struct {
	name, description string
	fn                func(ctx context.Context, args map[string]any) (any, error)
}

func (t funcTool) Name() string        { return t.name }
func (t funcTool) Description() string { return t.description }
func (t funcTool) Call(ctx context.Context, args map[string]any) (any, error) {
	return t.fn(ctx, args)
}

// Tool names
const (
	ToolAdd        = "add"
	ToolMultiply   = "multiply"
	ToolGetTasks   = "get_tasks"
	ToolCreateTask = "create_task"
)

// NewTaskRegistry registers the calculator and task tools
func NewTaskRegistry(store *TaskStore, timeout time.Duration) *Registry {
	r := NewRegistry(timeout)

	tools := []Tool{
		funcTool{ToolAdd, "Add two integers", func(_ context.Context, args map[string]any) (any, error) {
			a, b, err := intArgs(args)
			if err != nil {
				return nil, err
			}
			return a + b, nil
		}},
		funcTool{ToolMultiply, "Multiply two numbers", func(_ context.Context, args map[string]any) (any, error) {
			a, b, err := floatArgs(args)
			if err != nil {
				return nil, err
			}
			return a * b, nil
		}},
		funcTool{ToolGetTasks, "List tasks, optionally filtered by status", func(ctx context.Context, args map[string]any) (any, error) {
			status, _ := args["status"].(string)
			tasks, total, err := store.List(ctx, ListOptions{Status: status})
			if err != nil {
				return nil, err
			}
			return models.TaskList{Tasks: tasks, Total: total}, nil
		}},
		funcTool{ToolCreateTask, "Create a task with the given title", func(ctx context.Context, args map[string]any) (any, error) {
			title, _ := args["title"].(string)
			return store.Create(ctx, TaskInput{Title: title})
		}},
	}

	for _, t := range tools {
		// Names are distinct constants
		_ = r.Register(t)
	}
	return r
}

func intArgs(args map[string]any) (int64, int64, error) {
	a, okA := args["a"].(int64)
	b, okB := args["b"].(int64)
	if !okA || !okB {
		return 0, 0, fmt.Errorf("%w: a and b must be integers", ErrToolArgs)
	}
	return a, b, nil
}

func floatArgs(args map[string]any) (float64, float64, error) {
	a, okA := args["a"].(float64)
	b, okB := args["b"].(float64)
	if !okA || !okB {
		return 0, 0, fmt.Errorf("%w: a and b must be numbers", ErrToolArgs)
	}
	return a, b, nil
}
