// Package errors provides the error types surfaced by the mcpchat client.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrRequestFailed  = errors.New("request failed")
	ErrInvalidPayload = errors.New("invalid response format")
)

// ReachabilityHint is appended to every failure shown in a transcript.
const ReachabilityHint = "Make sure your backend is running and the endpoint is correct."

// maxBodyLen bounds the response body kept on a failure
const maxBodyLen = 4096

// FailureKind classifies a RequestFailure for diagnostics. It is never used
// to change how a failure is surfaced.
type FailureKind int

const (
	KindUnknown FailureKind = iota
	// KindStatus is a non-2xx HTTP status
	KindStatus
	// KindNetwork is a transport failure (dial, TLS, reset, read)
	KindNetwork
	// KindParse is a body that is not valid JSON
	KindParse
	// KindProtocol is a malformed or unexpected exchange (bad scheme, ws error frame)
	KindProtocol
)

// String returns the kind name
func (k FailureKind) String() string {
	switch k {
	case KindStatus:
		return "status"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// RequestFailure is the single error kind produced by an outbound chat or
// task call.
type RequestFailure struct {
	Kind       FailureKind
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
	Cause      error
}

func (e *RequestFailure) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if msg == "" {
		msg = ErrRequestFailed.Error()
	}
	if e.Kind == KindStatus && e.StatusCode > 0 {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *RequestFailure) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *RequestFailure) Is(target error) bool {
	if target == ErrRequestFailed {
		return true
	}
	if target == ErrInvalidPayload {
		return e.Kind == KindParse
	}
	_, ok := target.(*RequestFailure)
	return ok
}

// NewStatusError creates a failure for a non-2xx response. The body is
// truncated to 4 KiB.
func NewStatusError(statusCode int, endpoint, body string) *RequestFailure {
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen]
	}
	return &RequestFailure{
		Kind:       KindStatus,
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Body:       body,
	}
}

// NewNetworkError creates a failure for a transport error
func NewNetworkError(endpoint string, cause error) *RequestFailure {
	return &RequestFailure{
		Kind:     KindNetwork,
		Endpoint: endpoint,
		Cause:    cause,
	}
}

// NewParseError creates a failure for a response body that could not be parsed
func NewParseError(endpoint, message string) *RequestFailure {
	return &RequestFailure{
		Kind:     KindParse,
		Endpoint: endpoint,
		Message:  message,
	}
}

// NewProtocolError creates a failure for an unexpected exchange
func NewProtocolError(endpoint, message string) *RequestFailure {
	return &RequestFailure{
		Kind:     KindProtocol,
		Endpoint: endpoint,
		Message:  message,
	}
}

// AsRequestFailure extracts a RequestFailure from an error chain
func AsRequestFailure(err error) (*RequestFailure, bool) {
	var rf *RequestFailure
	if errors.As(err, &rf) {
		return rf, true
	}
	return nil, false
}

// GetHTTPStatus returns the HTTP status of a failure, or 0
func GetHTTPStatus(err error) int {
	if rf, ok := AsRequestFailure(err); ok {
		return rf.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint of a failure, or ""
func GetEndpoint(err error) string {
	if rf, ok := AsRequestFailure(err); ok {
		return rf.Endpoint
	}
	return ""
}

// GetResponseBody returns the captured response body of a failure, or ""
func GetResponseBody(err error) string {
	if rf, ok := AsRequestFailure(err); ok {
		return rf.Body
	}
	return ""
}

// GetKind returns the failure kind, or KindUnknown
func GetKind(err error) FailureKind {
	if rf, ok := AsRequestFailure(err); ok {
		return rf.Kind
	}
	return KindUnknown
}

// IsStatusError reports whether err is a non-2xx failure
func IsStatusError(err error) bool {
	return GetKind(err) == KindStatus
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	return GetKind(err) == KindNetwork
}

// IsParseError reports whether err is a body parse failure
func IsParseError(err error) bool {
	return GetKind(err) == KindParse
}

// Describe renders err the way it is shown as an error transcript entry.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	desc := strings.TrimRight(err.Error(), ". ")
	return fmt.Sprintf("Error: %s. %s", desc, ReachabilityHint)
}
