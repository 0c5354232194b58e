package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"

	apierrors "github.com/diogo/mcpchat/internal/errors"
)

func newTestClient(t *testing.T, hc *MockHttpClient, opts ...ClientOption) *Client {
	t.Helper()
	client, err := NewClient(append([]ClientOption{WithHTTPClient(hc)}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient() returned error: %v", err)
	}
	return client
}

func TestNewClient(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() returned error: %v", err)
	}
	if client.httpClient == nil {
		t.Error("Expected default HTTP client to be created")
	}
	if client.logger == nil {
		t.Error("Expected default logger")
	}
	if client.Timeout() != 0 {
		t.Errorf("Timeout() = %v, want 0", client.Timeout())
	}
	if !client.httpClient.GetFollowRedirect() {
		t.Error("default HTTP client should follow redirects")
	}
	if transportTimeoutSeconds != 0 {
		t.Errorf("transport timeout = %ds, want none by default", transportTimeoutSeconds)
	}
}

func TestSend_FollowsRedirect(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/chat/" {
			http.Redirect(w, r, "/chat", http.StatusTemporaryRedirect)
			return
		}
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"hello"}`))
	}))
	defer srv.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient() returned error: %v", err)
	}

	got, err := client.Send(context.Background(), srv.URL+"/chat/", "hi")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if got != "hello" {
		t.Errorf("Send() = %q, want %q", got, "hello")
	}
	if !strings.Contains(gotBody, `"message":"hi"`) {
		t.Errorf("redirected body = %q, want the original message", gotBody)
	}
}

func TestSend_SlowServerWithoutTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"response":"late"}`))
	}))
	defer srv.Close()

	client, err := NewClient()
	if err != nil {
		t.Fatal(err)
	}
	if got, err := client.Send(context.Background(), srv.URL, "hi"); err != nil || got != "late" {
		t.Errorf("Send() = %q, %v, want the late reply", got, err)
	}

	bounded, err := NewClient(WithTimeout(50 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bounded.Send(context.Background(), srv.URL, "hi"); err == nil {
		t.Error("WithTimeout should bound a slow call")
	}
}

func TestNewClient_Options(t *testing.T) {
	hc := NewMockHttpClient(nil, 200)
	client := newTestClient(t, hc, WithTimeout(5*time.Second), WithLogger(nil), WithDialer(nil))

	if client.httpClient != hc {
		t.Error("WithHTTPClient was not applied")
	}
	if client.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", client.Timeout())
	}
	if client.logger == nil || client.dialer == nil {
		t.Error("nil logger or dialer options should keep defaults")
	}
}

func TestSend_HTTPRequestContract(t *testing.T) {
	hc := NewMockHttpClient([]byte(`{"response":"hello"}`), 200)
	client := newTestClient(t, hc)

	got, err := client.Send(context.Background(), "http://localhost:8000/chat", "How many users?")
	if err != nil {
		t.Fatalf("Send() returned error: %v", err)
	}
	if got != "hello" {
		t.Errorf("Send() = %s, want hello", got)
	}

	reqs := hc.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 request, got %d", len(reqs))
	}
	req := reqs[0]
	if req.Method != fhttp.MethodPost {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if req.URL.String() != "http://localhost:8000/chat" {
		t.Errorf("URL = %s", req.URL.String())
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}
	if _, err := uuid.Parse(req.Header.Get(HeaderRequestID)); err != nil {
		t.Errorf("%s header is not a uuid: %q", HeaderRequestID, req.Header.Get(HeaderRequestID))
	}

	var body map[string]any
	if err := json.Unmarshal(hc.LastBody(), &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if len(body) != 1 || body["message"] != "How many users?" {
		t.Errorf("request body = %v, want {\"message\": \"How many users?\"}", body)
	}
}

func TestSend_HTTPSuccessBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"response field", `{"response":"hello"}`, "hello"},
		{"message field", `{"message":"hi"}`, "hi"},
		{"response wins over message", `{"message":"b","response":"a"}`, "a"},
		{"fallback compact json", `{"foo": 1}`, `{"foo":1}`},
		{"empty response falls through", `{"response":"","message":"m"}`, "m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, NewMockHttpClient([]byte(tt.body), 200))

			got, err := client.Send(context.Background(), "https://api.example.com/chat", "q")
			if err != nil {
				t.Fatalf("Send() returned error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Send() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSend_HTTPStatusError(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient([]byte("internal error"), 500))

	_, err := client.Send(context.Background(), "http://localhost:8000/chat", "q")
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}
	if !apierrors.IsStatusError(err) {
		t.Errorf("Expected status error, got %v", err)
	}
	if apierrors.GetHTTPStatus(err) != 500 {
		t.Errorf("GetHTTPStatus() = %d, want 500", apierrors.GetHTTPStatus(err))
	}
	if apierrors.GetResponseBody(err) != "internal error" {
		t.Errorf("GetResponseBody() = %s", apierrors.GetResponseBody(err))
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error text should carry the status: %s", err.Error())
	}
}

func TestSend_HTTPStatusErrorBodyLimited(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient([]byte(strings.Repeat("e", 10000)), 502))

	_, err := client.Send(context.Background(), "http://localhost:8000/chat", "q")
	if got := len(apierrors.GetResponseBody(err)); got != 4096 {
		t.Errorf("len(body) = %d, want 4096", got)
	}
}

func TestSend_NetworkError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:8000: connect: connection refused")
	client := newTestClient(t, NewMockHttpClientWithError(cause))

	_, err := client.Send(context.Background(), "http://localhost:8000/chat", "q")
	if !apierrors.IsNetworkError(err) {
		t.Fatalf("Expected network error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected error to wrap the transport cause")
	}
	if !errors.Is(err, apierrors.ErrRequestFailed) {
		t.Error("Expected error to match ErrRequestFailed")
	}
}

func TestSend_InvalidJSON(t *testing.T) {
	client := newTestClient(t, NewMockHttpClient([]byte("<html>oops</html>"), 200))

	_, err := client.Send(context.Background(), "http://localhost:8000/chat", "q")
	if !apierrors.IsParseError(err) {
		t.Fatalf("Expected parse error, got %v", err)
	}
}

func TestSend_UnsupportedScheme(t *testing.T) {
	hc := NewMockHttpClient([]byte(`{}`), 200)
	client := newTestClient(t, hc)

	for _, endpoint := range []string{"ftp://host/chat", "localhost:8000/chat", ""} {
		_, err := client.Send(context.Background(), endpoint, "q")
		if apierrors.GetKind(err) != apierrors.KindProtocol {
			t.Errorf("Send(%q) kind = %v, want protocol", endpoint, apierrors.GetKind(err))
		}
	}
	if len(hc.Requests()) != 0 {
		t.Error("no HTTP request should be made for an unsupported scheme")
	}
}

func TestSend_UsesEndpointPerCall(t *testing.T) {
	hc := NewMockHttpClient(nil, 200)
	hc.Handler = func(req *fhttp.Request) (*fhttp.Response, error) {
		return NewMockResponse([]byte(`{"response":"ok"}`), 200), nil
	}
	client := newTestClient(t, hc)

	_, _ = client.Send(context.Background(), "http://a/chat", "1")
	_, _ = client.Send(context.Background(), "http://b/chat", "2")

	reqs := hc.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].URL.Host != "a" || reqs[1].URL.Host != "b" {
		t.Errorf("hosts = %s, %s; want a, b", reqs[0].URL.Host, reqs[1].URL.Host)
	}
}
