package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/metrics"
)

const apiPrefix = "/api/v1"

const tracerName = "github.com/todoflow-labs/todo-client/internal/client"

// Client talks to the todo backend. It is the only component that performs
// network I/O against it. Calls are never retried.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logging.Logger
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a client for the backend at baseURL (scheme and host, the API
// prefix is appended).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/") + apiPrefix,
		http:    http.DefaultClient,
		logger:  logging.Nop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) List(ctx context.Context) ([]dto.Todo, error) {
	var todos []dto.Todo
	if err := c.do(ctx, "list", http.MethodGet, "/todos", nil, &todos, 0); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []dto.Todo{}
	}
	return todos, nil
}

func (c *Client) Get(ctx context.Context, id int) (dto.Todo, error) {
	var todo dto.Todo
	err := c.do(ctx, "get", http.MethodGet, todoPath(id), nil, &todo, id)
	return todo, err
}

func (c *Client) Create(ctx context.Context, intent dto.CreateTodo) (dto.Todo, error) {
	var todo dto.Todo
	err := c.do(ctx, "create", http.MethodPost, "/todos", intent, &todo, 0)
	return todo, err
}

// Update replaces every mutable field of the todo with the intent's values.
func (c *Client) Update(ctx context.Context, id int, intent dto.UpdateTodo) (dto.Todo, error) {
	var todo dto.Todo
	err := c.do(ctx, "update", http.MethodPut, todoPath(id), intent, &todo, id)
	return todo, err
}

func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, "delete", http.MethodDelete, todoPath(id), nil, nil, id)
}

// Toggle flips the completed flag server-side, so the caller never has to
// read it first.
func (c *Client) Toggle(ctx context.Context, id int) (dto.Todo, error) {
	var todo dto.Todo
	err := c.do(ctx, "toggle", http.MethodPut, todoPath(id)+"/toggle", nil, &todo, id)
	return todo, err
}

func todoPath(id int) string {
	return fmt.Sprintf("/todos/%d", id)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out any, id int) (err error) {
	ctx, span := c.tracer.Start(ctx, "todos."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", apiPrefix+path),
		),
	)
	start := time.Now()
	status := 0
	defer func() {
		metrics.ClientRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		span.SetAttributes(attribute.Int("http.status_code", status))
		if err != nil {
			metrics.ClientRequests.WithLabelValues(op, "error").Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Warn().Err(err).Str("op", op).Int("id", id).Int("status", status).Msg("todo backend call failed")
		} else {
			metrics.ClientRequests.WithLabelValues(op, "success").Inc()
			c.logger.Debug().Str("op", op).Int("id", id).Int("status", status).Msg("todo backend call succeeded")
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage pulls "error" out of a JSON error body, if there is one.
func errorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Error
}
