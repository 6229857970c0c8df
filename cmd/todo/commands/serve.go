package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/todoflow-labs/todo-client/internal/app"
	"github.com/todoflow-labs/todo-client/internal/fakeapi"
	"github.com/todoflow-labs/todo-client/internal/logging"
)

// NewServeCmd creates the serve command, which runs the web frontend.
func NewServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web frontend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return app.Run(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}

// NewDevServerCmd creates the devserver command, an in-memory todo API for
// local development.
func NewDevServerCmd() *cobra.Command {
	var (
		addr     string
		welcome  bool
		logLevel string
	)
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory todo API for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(logLevel).With().Str("service", "todo-devserver").Logger()
			var fakeOpts []fakeapi.Option
			fakeOpts = append(fakeOpts, fakeapi.WithLogger(&logger))
			if welcome {
				fakeOpts = append(fakeOpts, fakeapi.WithWelcomeTodo())
			}
			backend := fakeapi.New(fakeOpts...)

			srv := &http.Server{Addr: addr, Handler: backend.Handler()}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = srv.Shutdown(context.Background())
			}()

			logger.Info().Msgf("todo devserver listening on %s", addr)
			fmt.Fprintf(cmd.OutOrStdout(), "todo API available at http://localhost%s/api/v1/todos\n", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("devserver failed: %w", err)
			}
			logger.Info().Int("todos", len(backend.Todos())).Msg("devserver stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&welcome, "welcome", true, "seed the welcome todo")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level")
	return cmd
}
