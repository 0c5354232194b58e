package api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apierrors "github.com/diogo/mcpchat/internal/errors"
)

type wsRequest struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// sendWS dials endpoint, sends one user frame and reads until the backend
// answers with a response or error frame. Tool frames are only logged.
func (c *Client) sendWS(ctx context.Context, endpoint, message, reqID string, log *zap.Logger) (string, error) {
	header := http.Header{}
	header.Set(HeaderRequestID, reqID)

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			_ = resp.Body.Close()
			return "", apierrors.NewStatusError(resp.StatusCode, endpoint, string(body))
		}
		return "", apierrors.NewNetworkError(endpoint, err)
	}
	defer conn.Close()

	// Unblock reads when the caller's context ends
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	if err := conn.WriteJSON(wsRequest{Role: "user", Message: message}); err != nil {
		return "", apierrors.NewNetworkError(endpoint, fmt.Errorf("failed to send message: %w", err))
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", apierrors.NewNetworkError(endpoint, ctxErr)
			}
			return "", apierrors.NewNetworkError(endpoint, fmt.Errorf("connection closed before response: %w", err))
		}

		if !gjson.ValidBytes(data) {
			return "", apierrors.NewParseError(endpoint, "websocket frame is not valid JSON")
		}
		frame := gjson.ParseBytes(data)

		switch frame.Get(PathFrameType).String() {
		case FrameToolUse:
			log.Debug("tool use",
				zap.String("tool", frame.Get(PathFrameToolName).String()),
				zap.String("input", frame.Get(PathFrameToolInput).Raw),
			)
		case FrameToolResult:
			log.Debug("tool result", zap.String("result", frame.Get(PathFrameResult).Raw))
		case FrameResponse:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return frame.Get(PathFrameMessage).String(), nil
		case FrameError:
			msg := frame.Get(PathFrameMessage).String()
			if msg == "" {
				msg = "backend reported an error"
			}
			return "", apierrors.NewProtocolError(endpoint, msg)
		default:
			log.Debug("ignoring frame", zap.String("frame", string(data)))
		}
	}
}
