package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/mcpchat/internal/config"
)

func TestQuery_Raw(t *testing.T) {
	env := newTestEnv(t, `{"response":"Hello there"}`, 200)

	if err := env.run("--raw", "hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if got := env.stdout.String(); got != "Hello there\n" {
		t.Errorf("stdout = %q, want %q", got, "Hello there\n")
	}

	reqs := env.http.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	if got := reqs[0].URL.String(); got != config.DefaultEndpoint {
		t.Errorf("URL = %q, want %q", got, config.DefaultEndpoint)
	}
	if body := string(env.http.LastBody()); !strings.Contains(body, `"message":"hello"`) {
		t.Errorf("body = %s, want message", body)
	}
}

func TestQuery_EndpointSources(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		envVar string
		flag   string
		want   string
	}{
		{name: "default", want: config.DefaultEndpoint},
		{name: "config file", file: "http://file.test/chat", want: "http://file.test/chat"},
		{name: "environment", file: "http://file.test/chat", envVar: "http://env.test/chat", want: "http://env.test/chat"},
		{name: "flag", envVar: "http://env.test/chat", flag: "http://flag.test/chat", want: "http://flag.test/chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, `{"response":"ok"}`, 200)
			if tt.file != "" {
				env.saveConfig(t, func(c *config.Config) { c.Endpoint = tt.file })
			}
			if tt.envVar != "" {
				t.Setenv(config.EnvEndpoint, tt.envVar)
			}
			args := []string{"--raw", "hi"}
			if tt.flag != "" {
				args = append(args, "--endpoint", tt.flag)
			}

			if err := env.run(args...); err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got := env.http.Requests()[0].URL.String(); got != tt.want {
				t.Errorf("URL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQuery_Decorated(t *testing.T) {
	env := newTestEnv(t, `{"response":"Hello there"}`, 200)

	if err := env.run("hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := env.stdout.String()
	if !strings.Contains(out, "✦ Assistant") || !strings.Contains(out, "Hello there") {
		t.Errorf("stdout = %q, want labelled reply", out)
	}
	if !strings.Contains(env.stderr.String(), "Done") {
		t.Errorf("stderr = %q, want spinner success", env.stderr.String())
	}
	if len(env.copied) != 0 {
		t.Error("clipboard is off by default")
	}
}

func TestQuery_Markdown(t *testing.T) {
	env := newTestEnv(t, `{"response":"# Title\n\n**bold** text"}`, 200)
	env.saveConfig(t, func(c *config.Config) {
		c.RenderMarkdown = true
		c.Markdown.Style = "dark"
	})

	if err := env.run("hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := env.stdout.String()
	if strings.Contains(out, "**bold**") {
		t.Errorf("stdout = %q, want rendered markdown", out)
	}
	if !strings.Contains(out, "bold") {
		t.Errorf("stdout = %q, want reply text", out)
	}
}

func TestQuery_Clipboard(t *testing.T) {
	env := newTestEnv(t, `{"response":"copy me"}`, 200)
	env.saveConfig(t, func(c *config.Config) { c.CopyToClipboard = true })

	if err := env.run("hello"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if len(env.copied) != 1 || env.copied[0] != "copy me" {
		t.Errorf("copied = %v, want [copy me]", env.copied)
	}
	if !strings.Contains(env.stderr.String(), "Copied to clipboard") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestQuery_ClipboardFailure(t *testing.T) {
	env := newTestEnv(t, `{"response":"copy me"}`, 200)
	env.saveConfig(t, func(c *config.Config) { c.CopyToClipboard = true })
	env.deps.Clipboard = func(string) error { return errors.New("no display") }

	if err := env.run("hello"); err != nil {
		t.Fatalf("run() should not fail on clipboard errors: %v", err)
	}
	if !strings.Contains(env.stderr.String(), "Failed to copy to clipboard: no display") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestQuery_OutputFile(t *testing.T) {
	for _, raw := range []bool{false, true} {
		env := newTestEnv(t, `{"response":"saved reply"}`, 200)
		out := filepath.Join(t.TempDir(), "reply.md")

		args := []string{"hello", "-o", out}
		if raw {
			args = append(args, "--raw")
		}
		if err := env.run(args...); err != nil {
			t.Fatalf("raw=%v: run() error = %v", raw, err)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("raw=%v: %v", raw, err)
		}
		if string(data) != "saved reply" {
			t.Errorf("raw=%v: file = %q", raw, data)
		}
		if env.stdout.String() != "" {
			t.Errorf("raw=%v: stdout = %q, want empty", raw, env.stdout.String())
		}
	}
}

func TestQuery_Stdin(t *testing.T) {
	env := newTestEnv(t, `{"response":"ok"}`, 200)
	env.deps.StdinPiped = func() bool { return true }
	env.deps.Stdin = strings.NewReader("  from stdin \n")

	if err := env.run("--raw"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if body := string(env.http.LastBody()); !strings.Contains(body, `"message":"from stdin"`) {
		t.Errorf("body = %s, want trimmed stdin prompt", body)
	}
}

func TestQuery_EmptyPrompt(t *testing.T) {
	env := newTestEnv(t, `{"response":"ok"}`, 200)

	err := env.run("   ")
	if err == nil || !strings.Contains(err.Error(), "prompt cannot be empty") {
		t.Fatalf("run() error = %v, want empty prompt error", err)
	}
	if len(env.http.Requests()) != 0 {
		t.Error("empty prompt should not send a request")
	}
}

func TestQuery_Failure(t *testing.T) {
	tests := []struct {
		name   string
		raw    bool
		stderr string
	}{
		{name: "decorated", stderr: "✗"},
		{name: "raw", raw: true, stderr: "HTTP error! status: 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, `{"detail":"boom"}`, 500)

			args := []string{"hello"}
			if tt.raw {
				args = append(args, "--raw")
			}
			err := env.run(args...)
			if err == nil {
				t.Fatal("expected error")
			}

			var reported reportedError
			if !errors.As(err, &reported) {
				t.Errorf("error %T should be marked as reported", err)
			}
			if !strings.Contains(env.stderr.String(), tt.stderr) {
				t.Errorf("stderr = %q, want %q", env.stderr.String(), tt.stderr)
			}
			if env.stdout.String() != "" {
				t.Errorf("stdout = %q, want empty", env.stdout.String())
			}
		})
	}
}

func TestQuery_ExtractsMessageField(t *testing.T) {
	env := newTestEnv(t, `{"message":"from message"}`, 200)

	if err := env.run("--raw", "hi"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := env.stdout.String(); got != "from message\n" {
		t.Errorf("stdout = %q", got)
	}
}
