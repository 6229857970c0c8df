package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/client"
	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/fakeapi"
)

func setupBackend(t *testing.T) (*fakeapi.Server, *client.Client) {
	t.Helper()
	backend := fakeapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, client.New(srv.URL+"/", client.WithHTTPClient(srv.Client()))
}

func TestCreateListGet(t *testing.T) {
	backend, c := setupBackend(t)
	ctx := context.Background()

	todos, err := c.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)

	created, err := c.Create(ctx, dto.CreateTodo{Title: "Buy milk", Priority: dto.PriorityLow})
	require.NoError(t, err)
	assert.Greater(t, created.ID, 0)
	assert.False(t, created.Completed)
	assert.Equal(t, dto.PriorityLow, created.Priority)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	todos, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, backend.Todos(), todos)
}

func TestUpdateIsFullReplace(t *testing.T) {
	_, c := setupBackend(t)
	ctx := context.Background()

	created, err := c.Create(ctx, dto.CreateTodo{Title: "Write report", Description: "Q3", Priority: dto.PriorityHigh})
	require.NoError(t, err)

	intent := dto.UpdateFrom(created)
	intent.Completed = true
	updated, err := c.Update(ctx, created.ID, intent)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Q3", updated.Description)
	assert.Equal(t, dto.PriorityHigh, updated.Priority)
	assert.True(t, updated.Completed)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestToggleTwiceRestores(t *testing.T) {
	_, c := setupBackend(t)
	ctx := context.Background()

	created, err := c.Create(ctx, dto.CreateTodo{Title: "Walk dog", Priority: dto.PriorityMedium})
	require.NoError(t, err)

	once, err := c.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, once.Completed)

	twice, err := c.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Completed, twice.Completed)
}

func TestDelete(t *testing.T) {
	backend, c := setupBackend(t)
	ctx := context.Background()
	seeded := backend.Seed(dto.Todo{Title: "a"})

	require.NoError(t, c.Delete(ctx, seeded[0].ID))
	assert.Empty(t, backend.Todos())

	err := c.Delete(ctx, seeded[0].ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestGetMissingIsNotFound(t *testing.T) {
	_, c := setupBackend(t)

	_, err := c.Get(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrNotFound))

	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Todo not found", apiErr.Message)
	assert.Equal(t, "get", apiErr.Op)
}

func TestServerErrorIsReported(t *testing.T) {
	backend, c := setupBackend(t)
	backend.FailNext(1)

	_, err := c.List(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, client.ErrNotFound))

	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, err.Error(), "API returned status 500")
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := client.New(url)
	_, err := c.List(context.Background())
	require.Error(t, err)

	var apiErr *client.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.NotNil(t, apiErr.Unwrap())
}

func TestRequestHeadersAndPaths(t *testing.T) {
	type seen struct {
		method, path, contentType, requestID string
		body                                 string
	}
	var got []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = append(got, seen{r.Method, r.URL.Path, r.Header.Get("Content-Type"), r.Header.Get("X-Request-ID"), string(b)})
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			_, _ = w.Write([]byte(`{"id":7,"title":"t","priority":"low"}`))
		}
	}))
	t.Cleanup(srv.Close)

	c := client.New(srv.URL)
	ctx := context.Background()
	_, err := c.Toggle(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, 7))
	_, err = c.Update(ctx, 7, dto.UpdateTodo{Title: "t", Priority: dto.PriorityLow})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, http.MethodPut, got[0].method)
	assert.Equal(t, "/api/v1/todos/7/toggle", got[0].path)
	assert.Empty(t, got[0].body)
	assert.Empty(t, got[0].contentType)
	assert.NotEmpty(t, got[0].requestID)

	assert.Equal(t, http.MethodDelete, got[1].method)
	assert.Equal(t, "/api/v1/todos/7", got[1].path)

	assert.Equal(t, "application/json", got[2].contentType)
	assert.JSONEq(t, `{"title":"t","description":"","priority":"low","completed":false}`, got[2].body)
}
