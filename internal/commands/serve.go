package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/mcpchat/internal/devserver"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		addr string
		dsn  string
		seed bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local development backend",
		Long: `Run a small task backend for local use and testing. It serves
POST /chat, the /ws/chat WebSocket and GET /api/mcp/tasks, backed by SQLite.

The chat understands: tasks [status], create <title>, add <a> <b>,
multiply <a> <b>. Anything else is echoed back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(false); err != nil {
				return err
			}
			defer a.close()

			return a.runServer(cmd.Context(), addr, dsn, seed)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	cmd.Flags().StringVar(&dsn, "db", ":memory:", "SQLite database path")
	cmd.Flags().BoolVar(&seed, "seed", false, "Insert sample tasks into an empty database")

	return cmd
}

func (a *app) runServer(ctx context.Context, addr, dsn string, seed bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := devserver.OpenTaskStore(dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	if seed {
		if err := store.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed tasks: %w", err)
		}
	}

	srv := devserver.New(store, devserver.WithLogger(a.logger.With(zap.String("db", dsn))))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("devserver shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
