// Package commands provides CLI commands for mcpchat.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/mcpchat/internal/api"
	"github.com/diogo/mcpchat/internal/config"
	"github.com/diogo/mcpchat/internal/logging"
	"github.com/diogo/mcpchat/internal/tui"
)

// Version info (set at build time)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootOptions holds the flags shared by the command tree
type rootOptions struct {
	verbose  bool
	logLevel string
	endpoint string

	// One-shot flags
	file    string
	output  string
	raw     bool
	timeout time.Duration
}

// app carries the per-invocation state of the command tree
type app struct {
	deps *Dependencies
	opts rootOptions

	cfg     config.Config
	logger  *zap.Logger
	cleanup func()
}

// reportedError marks an error whose message was already printed
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// NewRootCmd builds the command tree over deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps}

	cmd := &cobra.Command{
		Use:   "mcpchat [prompt]",
		Short: "Terminal chat client for an MCP task backend",
		Long: `mcpchat sends natural-language questions to a chat backend and shows
the replies. The backend is reached over HTTP (POST {"message": ...}) or,
for ws:// and wss:// endpoints, over a WebSocket.

Examples:
  mcpchat chat                              Start interactive chat
  mcpchat "How many tasks are done?"        Send a single query
  mcpchat -f prompt.md                      Read prompt from file
  cat prompt.md | mcpchat                   Read prompt from stdin
  mcpchat "tasks" -o reply.md               Save the reply to a file
  mcpchat tasks                             List tasks
  mcpchat config set-endpoint ws://localhost:8004/ws/chat
  mcpchat serve --seed                      Run the local development backend`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(a.deps.Stdout, "mcpchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := a.readPrompt(args)
			if err != nil {
				return err
			}
			if !ok {
				// No input - show help
				return cmd.Help()
			}
			return a.runQuery(cmd.Context(), prompt)
		},
	}

	cmd.SetIn(deps.Stdin)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVar(&a.opts.verbose, "verbose", false, "Enable debug logging")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&a.opts.endpoint, "endpoint", "", "Chat endpoint URL (http, https, ws or wss)")

	cmd.Flags().StringVarP(&a.opts.output, "output", "o", "", "Save response to file")
	cmd.Flags().StringVarP(&a.opts.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().BoolVar(&a.opts.raw, "raw", false, "Print only the reply text")
	cmd.Flags().DurationVar(&a.opts.timeout, "timeout", 0, "Give up after this long (0 waits for the transport)")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	cmd.AddCommand(newChatCmd(a))
	cmd.AddCommand(newTasksCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newServeCmd(a))

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			tui.PrintError(err)
		}
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and builds the
// logger. The interactive chat owns the terminal, so toFile sends the log
// to the log file instead of stderr.
func (a *app) setup(toFile bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if a.opts.endpoint != "" {
		cfg.Endpoint = a.opts.endpoint
	}
	if a.opts.verbose {
		cfg.Verbose = true
	}
	if a.opts.logLevel != "" {
		cfg.LogLevel = a.opts.logLevel
	}

	lopts := logging.Options{
		Level:   cfg.LogLevel,
		Verbose: cfg.Verbose,
		Writer:  a.deps.Stderr,
	}
	if toFile {
		path, err := config.GetLogPath(cfg)
		if err != nil {
			return err
		}
		lopts.File = path
	}

	logger, cleanup, err := logging.New(lopts)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.cleanup = cleanup
	return nil
}

// close flushes the logger built by setup
func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

// newClient builds the outbound client with the app logger
func (a *app) newClient(opts ...api.ClientOption) (APIClient, error) {
	opts = append([]api.ClientOption{api.WithLogger(a.logger)}, opts...)
	client, err := a.deps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// readPrompt returns the prompt from --file, the argument or piped stdin,
// in that order. ok is false when no input was given.
func (a *app) readPrompt(args []string) (prompt string, ok bool, err error) {
	// Check for file input
	if a.opts.file != "" {
		data, err := os.ReadFile(a.opts.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	// Check for positional argument
	if len(args) > 0 {
		return args[0], true, nil
	}

	// Check for stdin
	if a.deps.StdinPiped != nil && a.deps.StdinPiped() {
		data, err := io.ReadAll(a.deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	return "", false, nil
}
