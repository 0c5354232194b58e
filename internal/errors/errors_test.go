package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStatusError(t *testing.T) {
	err := NewStatusError(500, "http://localhost:8000/chat", "boom")

	expected := "HTTP error! status: 500"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}
	if err.Kind != KindStatus {
		t.Errorf("Kind = %v, want %v", err.Kind, KindStatus)
	}
	if !errors.Is(err, ErrRequestFailed) {
		t.Error("Expected status error to match ErrRequestFailed")
	}
	if errors.Is(err, ErrInvalidPayload) {
		t.Error("Expected status error not to match ErrInvalidPayload")
	}
}

func TestStatusError_TruncatesBody(t *testing.T) {
	body := strings.Repeat("x", 5000)
	err := NewStatusError(502, "e", body)

	if len(err.Body) != 4096 {
		t.Errorf("len(Body) = %d, want 4096", len(err.Body))
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("http://localhost:8000/chat", cause)

	if err.Error() != "connection refused" {
		t.Errorf("Error() = %s, want %s", err.Error(), "connection refused")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected network error to unwrap to its cause")
	}
	if !IsNetworkError(err) {
		t.Error("IsNetworkError() = false, want true")
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("e", "response is not valid JSON")

	if !errors.Is(err, ErrInvalidPayload) {
		t.Error("Expected parse error to match ErrInvalidPayload")
	}
	if !IsParseError(err) {
		t.Error("IsParseError() = false, want true")
	}
}

func TestRequestFailure_EmptyMessage(t *testing.T) {
	err := &RequestFailure{}
	if err.Error() != "request failed" {
		t.Errorf("Error() = %s, want %s", err.Error(), "request failed")
	}
}

func TestGetters_WrappedError(t *testing.T) {
	inner := NewStatusError(404, "http://x/chat", "not found")
	wrapped := fmt.Errorf("send: %w", inner)

	if got := GetHTTPStatus(wrapped); got != 404 {
		t.Errorf("GetHTTPStatus() = %d, want 404", got)
	}
	if got := GetEndpoint(wrapped); got != "http://x/chat" {
		t.Errorf("GetEndpoint() = %s, want http://x/chat", got)
	}
	if got := GetResponseBody(wrapped); got != "not found" {
		t.Errorf("GetResponseBody() = %s, want not found", got)
	}
	if !IsStatusError(wrapped) {
		t.Error("IsStatusError() = false, want true")
	}
}

func TestGetters_PlainError(t *testing.T) {
	err := errors.New("plain")

	if GetHTTPStatus(err) != 0 {
		t.Error("Expected 0 status for plain error")
	}
	if GetEndpoint(err) != "" {
		t.Error("Expected empty endpoint for plain error")
	}
	if GetKind(err) != KindUnknown {
		t.Error("Expected KindUnknown for plain error")
	}
}

func TestFailureKind_String(t *testing.T) {
	tests := []struct {
		kind FailureKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindStatus, "status"},
		{KindNetwork, "network"},
		{KindParse, "parse"},
		{KindProtocol, "protocol"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%d.String() = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "status",
			err:  NewStatusError(500, "e", ""),
			want: "Error: HTTP error! status: 500. Make sure your backend is running and the endpoint is correct.",
		},
		{
			name: "trailing period is not doubled",
			err:  errors.New("dial failed."),
			want: "Error: dial failed. Make sure your backend is running and the endpoint is correct.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.err); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
