// Package api provides the outbound client used by mcpchat to reach a chat
// backend and its task API.
package api

// Request metadata and routes.
const (
	// HeaderRequestID carries a per-request uuid so backend logs can be
	// correlated with ours
	HeaderRequestID = "X-Request-ID"

	// TasksPath is appended to the task API base URL
	TasksPath = "/api/mcp/tasks"
)

// GJSON paths for extracting values from backend replies.
const (
	// Chat reply fields, tried in order
	PathResponse = "response"
	PathMessage  = "message"

	// PathCompact is the gjson modifier that re-serialises the whole body
	// without insignificant whitespace
	PathCompact = "@ugly"

	// WebSocket frame fields
	PathFrameType      = "type"
	PathFrameMessage   = "message"
	PathFrameToolName  = "tool_name"
	PathFrameToolInput = "tool_input"
	PathFrameResult    = "result"

	// Task list fields
	PathTasks       = "tasks"
	PathTotal       = "total"
	PathTaskID      = "id"
	PathTaskTitle   = "title"
	PathTaskDesc    = "description"
	PathTaskStatus  = "status"
	PathTaskDue     = "due_date"
	PathTaskCreated = "created_at"
	PathTaskUpdated = "updated_at"
)

// WebSocket frame types sent by the backend
const (
	FrameToolUse    = "tool_use"
	FrameToolResult = "tool_result"
	FrameResponse   = "response"
	FrameError      = "error"
)
