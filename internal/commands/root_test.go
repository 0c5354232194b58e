package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	http "github.com/bogdanfinn/fhttp"

	"github.com/diogo/mcpchat/internal/api"
	"github.com/diogo/mcpchat/internal/chat"
	"github.com/diogo/mcpchat/internal/config"
	"github.com/diogo/mcpchat/internal/tui"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of a server
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeTUI records the calls the commands make into the TUI
type fakeTUI struct {
	chatSession *chat.Session
	chatOpts    tui.ChatOptions
	chatCalls   int

	fetcher      tui.TaskFetcher
	tasksBaseURL string
	tasksCalls   int

	err error
}

func (f *fakeTUI) RunChat(session *chat.Session, opts tui.ChatOptions) error {
	f.chatCalls++
	f.chatSession = session
	f.chatOpts = opts
	return f.err
}

func (f *fakeTUI) RunTasks(fetcher tui.TaskFetcher, baseURL string) error {
	f.tasksCalls++
	f.fetcher = fetcher
	f.tasksBaseURL = baseURL
	return f.err
}

type testEnv struct {
	deps   *Dependencies
	http   *api.MockHttpClient
	tui    *fakeTUI
	stdout *syncBuffer
	stderr *syncBuffer
	copied []string
	home   string
}

// newTestEnv isolates HOME and the environment overrides, and routes every
// outbound request through a mock that answers with body and status.
func newTestEnv(t *testing.T, body string, status int) *testEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{config.EnvEndpoint, config.EnvAPIURL, config.EnvViteAPIURL, config.EnvLogLevel, "GLAMOUR_STYLE"} {
		t.Setenv(key, "")
	}

	env := &testEnv{
		tui:    &fakeTUI{},
		stdout: &syncBuffer{},
		stderr: &syncBuffer{},
		home:   home,
	}
	env.http = &api.MockHttpClient{
		Handler: func(req *http.Request) (*http.Response, error) {
			return api.NewMockResponse([]byte(body), status), nil
		},
	}
	env.deps = &Dependencies{
		NewClient: func(opts ...api.ClientOption) (APIClient, error) {
			return api.NewClient(append(opts, api.WithHTTPClient(env.http))...)
		},
		TUI:           env.tui,
		Stdin:         strings.NewReader(""),
		Stdout:        env.stdout,
		Stderr:        env.stderr,
		StdinPiped:    func() bool { return false },
		StdoutTTY:     func() bool { return false },
		TerminalWidth: func() int { return 80 },
		Clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	return e.runContext(context.Background(), args...)
}

func (e *testEnv) runContext(ctx context.Context, args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// saveConfig writes cfg as the config file of the test HOME
func (e *testEnv) saveConfig(t *testing.T, mutate func(*config.Config)) {
	t.Helper()
	cfg := config.DefaultConfig()
	mutate(&cfg)
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
}

func TestRootCmd_Version(t *testing.T) {
	env := newTestEnv(t, `{}`, 200)

	if err := env.run("--version"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "mcpchat "+Version) {
		t.Errorf("stdout = %q, want version", env.stdout.String())
	}
	if len(env.http.Requests()) != 0 {
		t.Error("version should not send a request")
	}
}

func TestRootCmd_NoInputShowsHelp(t *testing.T) {
	env := newTestEnv(t, `{}`, 200)

	if err := env.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(env.stdout.String(), "Usage:") {
		t.Errorf("stdout = %q, want help", env.stdout.String())
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd(newTestEnv(t, `{}`, 200).deps)

	want := []string{"chat", "tasks", "config", "serve"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestRootCmd_TooManyArgs(t *testing.T) {
	env := newTestEnv(t, `{}`, 200)

	if err := env.run("one", "two"); err == nil {
		t.Error("expected error for two positional arguments")
	}
}

func TestReadPrompt(t *testing.T) {
	dir := t.TempDir()
	promptFile := filepath.Join(dir, "prompt.md")
	if err := os.WriteFile(promptFile, []byte("from file"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		file   string
		args   []string
		piped  bool
		stdin  string
		want   string
		wantOK bool
		errSub string
	}{
		{name: "file wins", file: promptFile, args: []string{"arg"}, want: "from file", wantOK: true},
		{name: "argument", args: []string{"arg"}, piped: true, stdin: "ignored", want: "arg", wantOK: true},
		{name: "piped stdin", piped: true, stdin: "from stdin\n", want: "from stdin\n", wantOK: true},
		{name: "nothing", wantOK: false},
		{name: "missing file", file: filepath.Join(dir, "nope"), errSub: "failed to read file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, `{}`, 200)
			env.deps.Stdin = strings.NewReader(tt.stdin)
			env.deps.StdinPiped = func() bool { return tt.piped }
			a := &app{deps: env.deps, opts: rootOptions{file: tt.file}}

			got, ok, err := a.readPrompt(tt.args)
			if tt.errSub != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSub) {
					t.Fatalf("readPrompt() error = %v, want %q", err, tt.errSub)
				}
				return
			}
			if err != nil {
				t.Fatalf("readPrompt() error = %v", err)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("readPrompt() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestReportedError(t *testing.T) {
	inner := errors.New("boom")
	var err error = reportedError{inner}

	if err.Error() != "boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("reportedError should unwrap to the inner error")
	}
}

func TestNewDependencies(t *testing.T) {
	deps := NewDependencies()

	if deps.NewClient == nil || deps.TUI == nil || deps.Clipboard == nil {
		t.Fatal("NewDependencies() left a field nil")
	}
	if deps.TerminalWidth() <= 0 {
		t.Error("TerminalWidth() should be positive")
	}
	if deps.Stdout != io.Writer(os.Stdout) {
		t.Error("Stdout should default to os.Stdout")
	}
}
