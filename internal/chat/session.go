// Package chat holds the conversation state of one chat session: the
// transcript, the pending input, the endpoint and the in-flight guard.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apierrors "github.com/diogo/mcpchat/internal/errors"
	"github.com/diogo/mcpchat/internal/models"
)

// Sender performs the one outbound call of a submission
type Sender interface {
	Send(ctx context.Context, endpoint, message string) (string, error)
}

// State is the controller state
type State int

const (
	StateIdle State = iota
	StateSending
)

// String returns the state name
func (s State) String() string {
	if s == StateSending {
		return "sending"
	}
	return "idle"
}

// Request is an accepted submission waiting to be dispatched. The endpoint
// is captured when the request begins.
type Request struct {
	ID       string
	Endpoint string
	Message  string
	Started  time.Time
}

// Result is the settled outcome of a Request
type Result struct {
	Request Request
	Content string
	Err     error
}

// Session is a single conversation. All methods are safe for concurrent use.
type Session struct {
	sender   Sender
	logger   *zap.Logger
	onAppend func(models.Message)

	mu         sync.RWMutex // Protects transcript, input, endpoint, inFlight
	transcript []models.Message
	input      string
	endpoint   string
	inFlight   bool
}

// Option configures a Session
type Option func(*Session)

// WithEndpoint sets the initial endpoint
func WithEndpoint(endpoint string) Option {
	return func(s *Session) {
		s.endpoint = endpoint
	}
}

// WithLogger sets the logger used for transition tracing
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnAppend registers a hook called after every transcript append. It
// runs outside the session lock.
func WithOnAppend(fn func(models.Message)) Option {
	return func(s *Session) {
		s.onAppend = fn
	}
}

// New creates an idle session with an empty transcript
func New(sender Sender, opts ...Option) *Session {
	s := &Session{
		sender: sender,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin accepts text for sending. The trimmed text is appended as a user
// message, the input buffer is cleared and the session enters the sending
// state. It returns false without any effect when the trimmed text is empty
// or a request is already in flight.
func (s *Session) Begin(text string) (Request, bool) {
	trimmed := strings.TrimSpace(text)

	s.mu.Lock()
	if trimmed == "" || s.inFlight {
		inFlight := s.inFlight
		s.mu.Unlock()
		s.logger.Debug("submit ignored",
			zap.Bool("empty", trimmed == ""),
			zap.Bool("in_flight", inFlight),
		)
		return Request{}, false
	}

	msg := models.NewUserMessage(trimmed)
	s.transcript = append(s.transcript, msg)
	s.input = ""
	s.inFlight = true
	req := Request{
		ID:       uuid.NewString(),
		Endpoint: s.endpoint,
		Message:  trimmed,
		Started:  time.Now(),
	}
	s.mu.Unlock()

	s.logger.Debug("request started",
		zap.String("request_id", req.ID),
		zap.String("endpoint", req.Endpoint),
	)
	s.notify(msg)
	return req, true
}

// Dispatch performs the outbound call for req. It does not touch the
// session state and may run on any goroutine.
func (s *Session) Dispatch(ctx context.Context, req Request) Result {
	content, err := s.sender.Send(ctx, req.Endpoint, req.Message)
	return Result{Request: req, Content: content, Err: err}
}

// Finish appends the outcome of res and returns the session to idle. A
// failure becomes a single error message.
func (s *Session) Finish(res Result) models.Message {
	var msg models.Message
	if res.Err != nil {
		msg = models.NewErrorMessage(apierrors.Describe(res.Err))
	} else {
		msg = models.NewAssistantMessage(res.Content)
	}

	s.mu.Lock()
	s.transcript = append(s.transcript, msg)
	s.inFlight = false
	s.mu.Unlock()

	fields := []zap.Field{
		zap.String("request_id", res.Request.ID),
		zap.String("endpoint", res.Request.Endpoint),
		zap.Duration("duration", time.Since(res.Request.Started)),
	}
	if res.Err != nil {
		s.logger.Debug("request failed", append(fields,
			zap.String("kind", apierrors.GetKind(res.Err).String()),
			zap.Error(res.Err),
		)...)
	} else {
		s.logger.Debug("request completed", fields...)
	}

	s.notify(msg)
	return msg
}

// Submit runs Begin, Dispatch and Finish. The returned channel yields the
// Result and is closed once the request settles. When the submission is
// rejected the channel is already closed and ok is false.
func (s *Session) Submit(ctx context.Context, text string) (done <-chan Result, ok bool) {
	ch := make(chan Result, 1)

	req, ok := s.Begin(text)
	if !ok {
		close(ch)
		return ch, false
	}

	go func() {
		defer close(ch)
		res := s.Dispatch(ctx, req)
		s.Finish(res)
		ch <- res
	}()

	return ch, true
}

// Reset clears the transcript. An in-flight request is left alone and its
// reply is appended to the emptied transcript when it arrives.
func (s *Session) Reset() {
	s.mu.Lock()
	n := len(s.transcript)
	s.transcript = nil
	s.mu.Unlock()

	s.logger.Debug("transcript cleared", zap.Int("messages", n))
}

// SetEndpoint replaces the endpoint used by later submissions. No
// validation is done.
func (s *Session) SetEndpoint(endpoint string) {
	s.mu.Lock()
	s.endpoint = endpoint
	s.mu.Unlock()

	s.logger.Debug("endpoint changed", zap.String("endpoint", endpoint))
}

// Endpoint returns the current endpoint
func (s *Session) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// SetInput replaces the input buffer
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

// Input returns the input buffer
func (s *Session) Input() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.input
}

// Transcript returns a copy of the transcript
func (s *Session) Transcript() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.transcript) == 0 {
		return nil
	}
	out := make([]models.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Len returns the number of transcript entries
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcript)
}

// LastAssistant returns the content of the most recent assistant message
func (s *Session) LastAssistant() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.transcript) - 1; i >= 0; i-- {
		if s.transcript[i].Role == models.RoleAssistant {
			return s.transcript[i].Content, true
		}
	}
	return "", false
}

// InFlight reports whether a request is outstanding
func (s *Session) InFlight() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inFlight
}

// State returns the controller state
func (s *Session) State() State {
	if s.InFlight() {
		return StateSending
	}
	return StateIdle
}

func (s *Session) notify(msg models.Message) {
	if s.onAppend != nil {
		s.onAppend(msg)
	}
}
