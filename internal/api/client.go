package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	apierrors "github.com/diogo/mcpchat/internal/errors"
)

// maxErrorBody bounds how much of a failed response is read
const maxErrorBody = 4096

// transportTimeoutSeconds is the HTTP transport's own ceiling. Zero leaves
// calls unbounded unless WithTimeout is set.
const transportTimeoutSeconds = 0

// Client sends chat messages to a backend and reads its task list
type Client struct {
	httpClient tls_client.HttpClient
	dialer     *websocket.Dialer
	logger     *zap.Logger
	timeout    time.Duration
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc tls_client.HttpClient) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout bounds every Send and FetchTasks call. Zero means no bound.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithDialer sets the dialer used for ws:// and wss:// endpoints
func WithDialer(d *websocket.Dialer) ClientOption {
	return func(c *Client) {
		if d != nil {
			c.dialer = d
		}
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		logger: zap.NewNop(),
		dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: 45 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(transportTimeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Timeout returns the configured per-call bound
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Send delivers one user message to endpoint and returns the assistant
// content. The endpoint scheme selects the transport. Every failure is a
// *errors.RequestFailure.
func (c *Client) Send(ctx context.Context, endpoint, message string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", apierrors.NewProtocolError(endpoint, fmt.Sprintf("invalid endpoint: %v", err))
	}

	reqID := uuid.NewString()
	log := c.logger.With(
		zap.String("request_id", reqID),
		zap.String("endpoint", endpoint),
	)

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		log.Debug("sending chat message", zap.String("transport", "http"))
		return c.postChat(ctx, endpoint, message, reqID)
	case "ws", "wss":
		log.Debug("sending chat message", zap.String("transport", "websocket"))
		return c.sendWS(ctx, endpoint, message, reqID, log)
	default:
		return "", apierrors.NewProtocolError(endpoint, fmt.Sprintf("unsupported endpoint scheme %q", u.Scheme))
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

func (c *Client) postChat(ctx context.Context, endpoint, message, reqID string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", apierrors.NewProtocolError(endpoint, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(HeaderRequestID, reqID)

	body, err := c.do(req, endpoint)
	if err != nil {
		return "", err
	}

	return ExtractContent(body, endpoint)
}

// do executes req and returns the body of a 2xx response
func (c *Client) do(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierrors.NewNetworkError(endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Limit error body to 4KB for safety
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, apierrors.NewStatusError(resp.StatusCode, endpoint, string(errorBody))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError(endpoint, fmt.Errorf("failed to read response: %w", err))
	}
	return body, nil
}
