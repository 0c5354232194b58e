package devserver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/diogo/mcpchat/internal/models"
)

// ErrEmptyMessage is returned for a blank chat message
var ErrEmptyMessage = errors.New("message must not be empty")

// ToolCall records one tool invocation made while answering a message
type ToolCall struct {
	Name   string         `json:"tool_name"`
	Input  map[string]any `json:"tool_input"`
	Result any            `json:"result"`
}

// Reply is the answer to a chat message
type Reply struct {
	Text  string
	Calls []ToolCall
}

// Responder answers chat messages deterministically:
//
//	tasks [status]     lists tasks
//	create <title>     creates a task
//	add <a> <b>        adds two integers
//	multiply <a> <b>   multiplies two numbers
//
// Anything else is echoed back.
type Responder struct {
	tools  *Registry
	logger *zap.Logger
}

// NewResponder creates a responder backed by tools
func NewResponder(tools *Registry, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{tools: tools, logger: logger}
}

// Tools returns the registry used by the responder
func (r *Responder) Tools() *Registry {
	return r.tools
}

// Respond answers message
func (r *Responder) Respond(ctx context.Context, message string) (Reply, error) {
	text := strings.TrimSpace(message)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Reply{}, ErrEmptyMessage
	}

	switch strings.ToLower(fields[0]) {
	case "tasks":
		return r.listTasks(ctx, strings.Join(fields[1:], " "))

	case "create":
		title := strings.TrimSpace(text[len(fields[0]):])
		call, err := r.call(ctx, ToolCreateTask, map[string]any{"title": title})
		if err != nil {
			return Reply{}, err
		}
		task := call.Result.(models.Task)
		return Reply{
			Text:  fmt.Sprintf("Created task #%d: %s", task.ID, task.Line()),
			Calls: []ToolCall{call},
		}, nil

	case "add":
		if len(fields) != 3 {
			return Reply{}, fmt.Errorf("%w: usage: add <a> <b>", ErrToolArgs)
		}
		a, errA := strconv.ParseInt(fields[1], 10, 64)
		b, errB := strconv.ParseInt(fields[2], 10, 64)
		if errA != nil || errB != nil {
			return Reply{}, fmt.Errorf("%w: add expects two integers", ErrToolArgs)
		}
		call, err := r.call(ctx, ToolAdd, map[string]any{"a": a, "b": b})
		if err != nil {
			return Reply{}, err
		}
		return Reply{
			Text:  fmt.Sprintf("%d + %d = %d", a, b, call.Result.(int64)),
			Calls: []ToolCall{call},
		}, nil

	case "multiply":
		if len(fields) != 3 {
			return Reply{}, fmt.Errorf("%w: usage: multiply <a> <b>", ErrToolArgs)
		}
		a, errA := strconv.ParseFloat(fields[1], 64)
		b, errB := strconv.ParseFloat(fields[2], 64)
		if errA != nil || errB != nil {
			return Reply{}, fmt.Errorf("%w: multiply expects two numbers", ErrToolArgs)
		}
		call, err := r.call(ctx, ToolMultiply, map[string]any{"a": a, "b": b})
		if err != nil {
			return Reply{}, err
		}
		return Reply{
			Text:  fmt.Sprintf("%s * %s = %s", formatFloat(a), formatFloat(b), formatFloat(call.Result.(float64))),
			Calls: []ToolCall{call},
		}, nil
	}

	return Reply{Text: "You said: " + text}, nil
}

func (r *Responder) listTasks(ctx context.Context, status string) (Reply, error) {
	args := map[string]any{}
	if status != "" {
		known, ok := matchStatus(status)
		if !ok {
			return Reply{}, fmt.Errorf("%w: unknown status %q", ErrToolArgs, status)
		}
		args["status"] = string(known)
	}

	call, err := r.call(ctx, ToolGetTasks, args)
	if err != nil {
		return Reply{}, err
	}

	list := call.Result.(models.TaskList)
	if len(list.Tasks) == 0 {
		return Reply{Text: "You have no tasks.", Calls: []ToolCall{call}}, nil
	}

	noun := "tasks"
	if list.Total == 1 {
		noun = "task"
	}
	text := fmt.Sprintf("You have %d %s:\n%s", list.Total, noun, strings.Join(list.Lines(), "\n"))
	return Reply{Text: text, Calls: []ToolCall{call}}, nil
}

func (r *Responder) call(ctx context.Context, name string, args map[string]any) (ToolCall, error) {
	r.logger.Debug("tool invoked", zap.String("tool", name), zap.Any("args", args))

	result, err := r.tools.Invoke(ctx, name, args)
	if err != nil {
		r.logger.Warn("tool failed", zap.String("tool", name), zap.Error(err))
		return ToolCall{}, err
	}
	return ToolCall{Name: name, Input: args, Result: result}, nil
}

// matchStatus finds a known status ignoring case
func matchStatus(s string) (models.TaskStatus, bool) {
	for _, known := range models.TaskStatuses() {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
