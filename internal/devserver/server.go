// Package devserver is a small local backend implementing the chat and task
// APIs mcpchat talks to. It serves POST /chat, a WebSocket chat on
// /ws/chat and the task endpoints, with tasks kept in SQLite.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/diogo/mcpchat/internal/models"
)

// Service metadata reported by GET / and GET /health
const (
	ServiceName    = "task-manager"
	ServiceVersion = "1.0.0"
)

// DefaultToolTimeout bounds a single tool call
const DefaultToolTimeout = 30 * time.Second

// ChatRequest is the body of POST /chat and of client WebSocket frames
type ChatRequest struct {
	Role    string `json:"role,omitempty"`
	Message string `json:"message"`
}

// ChatResponse is the body of a successful POST /chat
type ChatResponse struct {
	Response string `json:"response"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

// Frame is a server WebSocket frame
type Frame struct {
	Type      string         `json:"type"`
	Message   string         `json:"message,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	ToolInput map[string]any `json:"tool_input,omitempty"`
	Result    any            `json:"result,omitempty"`
}

// Frame types
const (
	FrameToolUse    = "tool_use"
	FrameToolResult = "tool_result"
	FrameResponse   = "response"
	FrameError      = "error"
)

// Server is the development backend
type Server struct {
	echo      *echo.Echo
	store     *TaskStore
	responder *Responder
	logger    *zap.Logger
	upgrader  websocket.Upgrader
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the logger used for requests and tool calls
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a server over store
func New(store *TaskStore, opts ...Option) *Server {
	s := &Server{
		store:  store,
		logger: zap.NewNop(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local development only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.responder = NewResponder(NewTaskRegistry(store, DefaultToolTimeout), s.logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s.echo = e
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/chat", s.handleChat)
	s.echo.GET("/ws/chat", s.handleWebSocket)
	s.echo.GET("/api/mcp/tasks", s.handleListTasks)
	s.echo.POST("/api/tasks", s.handleCreateTask)
	s.echo.GET("/api/tasks/:id", s.handleGetTask)
	s.echo.GET("/api/tools", s.handleListTools)
}

// Handler returns the HTTP handler serving every route
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start(addr string) error {
	s.logger.Info("devserver listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("devserver: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Task Manager API",
		"version": ServiceVersion,
		"endpoints": map[string]string{
			"health": "/health",
			"chat":   "/chat",
			"ws":     "/ws/chat",
			"tasks":  "/api/mcp/tasks",
		},
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": ServiceName,
	})
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	reply, err := s.responder.Respond(c.Request().Context(), req.Message)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ChatResponse{Response: reply.Text})
}

func (s *Server) handleListTasks(c echo.Context) error {
	opts := ListOptions{Status: c.QueryParam("status"), Limit: DefaultLimit}
	if err := echo.QueryParamsBinder(c).
		Int("skip", &opts.Skip).
		Int("limit", &opts.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "skip and limit must be integers")
	}
	if opts.Skip < 0 || opts.Limit < 1 || opts.Limit > MaxLimit {
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("skip must be >= 0 and limit between 1 and %d", MaxLimit))
	}

	tasks, total, err := s.store.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.TaskList{Tasks: tasks, Total: total})
}

func (s *Server) handleCreateTask(c echo.Context) error {
	var in TaskInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	task, err := s.store.Create(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, task)
}

func (s *Server) handleGetTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "task id must be an integer")
	}

	task, err := s.store.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) handleListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"tools": s.responder.Tools().List()})
}

// handleWebSocket answers each client frame with optional tool frames and
// exactly one response or error frame, until the client disconnects.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return nil
	}
	defer conn.Close()

	ctx := c.Request().Context()
	log := s.logger.With(zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket closed", zap.Error(err))
			}
			return nil
		}

		var req ChatRequest
		if err := json.Unmarshal(data, &req); err != nil {
			// The connection stays usable after a malformed frame
			if err := conn.WriteJSON(Frame{Type: FrameError, Message: "invalid frame: " + err.Error()}); err != nil {
				return nil
			}
			continue
		}

		if err := s.answerFrame(ctx, conn, req, log); err != nil {
			log.Debug("websocket write failed", zap.Error(err))
			return nil
		}
	}
}

func (s *Server) answerFrame(ctx context.Context, conn *websocket.Conn, req ChatRequest, log *zap.Logger) error {
	log.Debug("websocket message", zap.String("role", req.Role), zap.Int("length", len(req.Message)))

	reply, err := s.responder.Respond(ctx, req.Message)
	if err != nil {
		return conn.WriteJSON(Frame{Type: FrameError, Message: err.Error()})
	}

	for _, call := range reply.Calls {
		if err := conn.WriteJSON(Frame{Type: FrameToolUse, ToolName: call.Name, ToolInput: call.Input}); err != nil {
			return err
		}
		if err := conn.WriteJSON(Frame{Type: FrameToolResult, ToolName: call.Name, Result: call.Result}); err != nil {
			return err
		}
	}
	return conn.WriteJSON(Frame{Type: FrameResponse, Message: reply.Text})
}

// handleError writes every error as {"detail": ..., "status_code": ...}
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = fmt.Sprint(he.Message)
	} else {
		s.logger.Error("request failed", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, ErrorResponse{Detail: detail, StatusCode: code})
}

// toHTTPError maps domain errors to HTTP statuses
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidTask):
		return echo.NewHTTPError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrInvalidTask.Error()+": "))
	case errors.Is(err, ErrToolArgs):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Task not found")
	}
	return err
}
