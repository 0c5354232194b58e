package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/diogo/mcpchat/internal/config"
	"github.com/diogo/mcpchat/internal/models"
)

const tasksBody = `{"tasks":[
	{"id":2,"title":"Ship it","description":null,"status":"Done"},
	{"id":1,"title":"Buy milk","description":"2 litres","status":"To Do"}
],"total":2}`

func TestTasks_Lines(t *testing.T) {
	env := newTestEnv(t, tasksBody, 200)

	if err := env.run("tasks"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	want := "1. Ship it: Done\n2. Buy milk: To Do\n"
	if got := env.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	if got := env.http.Requests()[0].URL.String(); got != config.DefaultAPIURL+"/api/mcp/tasks" {
		t.Errorf("URL = %q", got)
	}
}

func TestTasks_APIURL(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		envVar string
		flag   string
		want   string
	}{
		{name: "config file", file: "http://file.test", want: "http://file.test/api/mcp/tasks"},
		{name: "environment", file: "http://file.test", envVar: "http://env.test", want: "http://env.test/api/mcp/tasks"},
		{name: "flag", envVar: "http://env.test", flag: "http://flag.test/", want: "http://flag.test/api/mcp/tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tasksBody, 200)
			if tt.file != "" {
				env.saveConfig(t, func(c *config.Config) { c.APIURL = tt.file })
			}
			if tt.envVar != "" {
				t.Setenv(config.EnvAPIURL, tt.envVar)
			}
			args := []string{"tasks"}
			if tt.flag != "" {
				args = append(args, "--api-url", tt.flag)
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

func TestTasks_JSON(t *testing.T) {
	env := newTestEnv(t, tasksBody, 200)

	if err := env.run("tasks", "--json"); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	var list models.TaskList
	if err := json.Unmarshal([]byte(env.stdout.String()), &list); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, env.stdout.String())
	}
	if list.Total != 2 || len(list.Tasks) != 2 || list.Tasks[0].Title != "Ship it" {
		t.Errorf("list = %+v", list)
	}
}

func TestTasks_Terminal(t *testing.T) {
	env := newTestEnv(t, tasksBody, 200)
	env.deps.StdoutTTY = func() bool { return true }

	if err := env.run("tasks"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := env.stdout.String()
	for _, want := range []string{"Ship it", "Done", "Buy milk", "To Do"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout = %q, want %q", out, want)
		}
	}
	if strings.Index(out, "Ship it") > strings.Index(out, "Buy milk") {
		t.Error("server order should be kept")
	}
}

func TestTasks_Empty(t *testing.T) {
	env := newTestEnv(t, `{"tasks":[],"total":0}`, 200)
	env.deps.StdoutTTY = func() bool { return true }

	if err := env.run("tasks"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := env.stdout.String(); got != "No tasks\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestTasks_Error(t *testing.T) {
	env := newTestEnv(t, `{"detail":"down"}`, 503)

	err := env.run("tasks")
	if err == nil || !strings.Contains(err.Error(), "failed to fetch tasks") {
		t.Fatalf("run() error = %v, want fetch failure", err)
	}
	if env.stdout.String() != "" {
		t.Errorf("stdout = %q, want empty", env.stdout.String())
	}
}

func TestTasks_TUI(t *testing.T) {
	env := newTestEnv(t, tasksBody, 200)

	if err := env.run("tasks", "--tui", "--api-url", "http://tui.test"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if env.tui.tasksCalls != 1 {
		t.Fatalf("RunTasks calls = %d, want 1", env.tui.tasksCalls)
	}
	if env.tui.tasksBaseURL != "http://tui.test" {
		t.Errorf("baseURL = %q", env.tui.tasksBaseURL)
	}
	if env.tui.fetcher == nil {
		t.Error("fetcher should be the API client")
	}
	if len(env.http.Requests()) != 0 {
		t.Error("the TUI fetches on its own")
	}
}
