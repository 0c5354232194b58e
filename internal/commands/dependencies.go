package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/mcpchat/internal/api"
	"github.com/diogo/mcpchat/internal/chat"
	"github.com/diogo/mcpchat/internal/models"
	"github.com/diogo/mcpchat/internal/tui"
)

// APIClient is what the commands need from the outbound client
type APIClient interface {
	Send(ctx context.Context, endpoint, message string) (string, error)
	FetchTasks(ctx context.Context, baseURL string) (*models.TaskList, error)
}

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(session *chat.Session, opts tui.ChatOptions) error
	RunTasks(fetcher tui.TaskFetcher, baseURL string) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the outbound client
	NewClient func(opts ...api.ClientOption) (APIClient, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether a prompt may be read from Stdin
	StdinPiped func() bool
	// StdoutTTY reports whether Stdout is a terminal
	StdoutTTY func() bool
	// TerminalWidth returns the width used for decorated output
	TerminalWidth func() int

	Clipboard func(string) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(session *chat.Session, opts tui.ChatOptions) error {
	return tui.RunChat(session, opts)
}

func (d *DefaultTUI) RunTasks(fetcher tui.TaskFetcher, baseURL string) error {
	return tui.RunTasks(fetcher, baseURL)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient: func(opts ...api.ClientOption) (APIClient, error) {
			return api.NewClient(opts...)
		},
		TUI:           &DefaultTUI{},
		Stdin:         os.Stdin,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		StdinPiped:    isStdinPiped,
		StdoutTTY:     isStdoutTTY,
		TerminalWidth: getTerminalWidth,
		Clipboard:     clipboard.WriteAll,
	}
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// isStdinPiped returns true when stdin is a pipe or file
func isStdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
