package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"

	"github.com/todoflow-labs/todo-client/internal/client"
	"github.com/todoflow-labs/todo-client/internal/config"
	"github.com/todoflow-labs/todo-client/internal/events"
	"github.com/todoflow-labs/todo-client/internal/handler"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/metrics"
	"github.com/todoflow-labs/todo-client/internal/store"
	"github.com/todoflow-labs/todo-client/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

// Deps are the pieces every entry point needs.
type Deps struct {
	Logger  *logging.Logger
	Client  *client.Client
	Store   *store.Store
	cleanup []func(context.Context)
}

// Close releases tracing and NATS resources.
func (d *Deps) Close(ctx context.Context) {
	for i := len(d.cleanup) - 1; i >= 0; i-- {
		d.cleanup[i](ctx)
	}
}

// Build wires logger, tracing, metrics, NATS and the store from cfg.
// Optional integrations are skipped when their config is empty.
func Build(ctx context.Context, cfg *config.Config) (*Deps, error) {
	logger := logging.New(cfg.LogLevel).With().Str("service", cfg.ServiceName).Logger()
	d := &Deps{Logger: &logger}

	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTELEndpoint)
		if err != nil {
			return nil, err
		}
		d.cleanup = append(d.cleanup, func(ctx context.Context) {
			if err := telemetry.Shutdown(ctx, tp); err != nil {
				logger.Warn().Err(err).Msg("failed to shut down tracer")
			}
		})
		logger.Info().Str("endpoint", cfg.OTELEndpoint).Msg("tracing enabled")
	}

	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr, func(err error) {
			logger.Error().Err(err).Msg("metrics server failed")
		})
		d.cleanup = append(d.cleanup, func(ctx context.Context) { _ = srv.Shutdown(ctx) })
		logger.Info().Msgf("metrics server listening on %s", cfg.MetricsAddr)
	}

	d.Client = client.New(cfg.APIURL, client.WithLogger(d.Logger))
	d.Store = store.New(d.Client, store.WithLogger(d.Logger))

	if cfg.NATSURL != "" {
		nc, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			d.Close(ctx)
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		d.cleanup = append(d.cleanup, func(context.Context) { nc.Close() })
		js, err := nc.JetStream()
		if err != nil {
			d.Close(ctx)
			return nil, fmt.Errorf("failed to init JetStream: %w", err)
		}
		pub, err := events.NewPublisher(js, d.Logger)
		if err != nil {
			d.Close(ctx)
			return nil, err
		}
		d.Store.Subscribe(pub.Handle)
		logger.Info().Str("url", cfg.NATSURL).Msg("publishing todo events to NATS")
	}

	return d, nil
}

// Run serves the web frontend until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	d, err := Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		d.Close(shutdownCtx)
	}()
	logger := d.Logger

	if err := d.Store.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Str("api_url", cfg.APIURL).Msg("initial load failed")
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: NewRouter(d.Store, logger)}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("api_url", cfg.APIURL).Msgf("todo frontend listening on %s", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter builds the frontend router around s.
func NewRouter(s *store.Store, logger *logging.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))

	r.With(jsonContentType).Get("/health", handler.Health)
	handler.Mount(r, s, logger)

	// Error handlers
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
		logger.Warn().Str("path", r.URL.Path).Msg("404 not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		logger.Warn().Str("path", r.URL.Path).Msg("405 method not allowed")
	})

	return r
}

func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Str("request_id", middleware.GetReqID(r.Context())).
				Dur("duration", time.Since(start)).
				Msg("http_request")
		})
	}
}

// Forces JSON Content-Type for the response
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Writes a structured JSON error
func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": msg,
	})
}
