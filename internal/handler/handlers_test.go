package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todoflow-labs/todo-client/internal/client"
	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/fakeapi"
	"github.com/todoflow-labs/todo-client/internal/handler"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/store"
)

func setupStore(t *testing.T) (*fakeapi.Server, *store.Store) {
	t.Helper()
	backend := fakeapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return backend, store.New(client.New(srv.URL, client.WithHTTPClient(srv.Client())))
}

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func formRequest(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestCreateTodo(t *testing.T) {
	backend, s := setupStore(t)
	logger := logging.New("debug")

	req := formRequest("/todos?filter=active", url.Values{
		"title":       {"  Buy milk "},
		"description": {""},
		"priority":    {"low"},
	})
	resp := httptest.NewRecorder()
	handler.CreateTodo(s, logger)(resp, req)

	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/?filter=active&success=Todo+created+successfully", resp.Header().Get("Location"))

	todos := s.Todos()
	require.Len(t, todos, 1)
	assert.Equal(t, "Buy milk", todos[0].Title)
	assert.Equal(t, dto.PriorityLow, todos[0].Priority)
	assert.Equal(t, backend.Todos(), todos)
}

func TestCreateTodoBlankTitle(t *testing.T) {
	backend, s := setupStore(t)

	req := formRequest("/todos", url.Values{"title": {"   "}})
	resp := httptest.NewRecorder()
	handler.CreateTodo(s, logging.Nop())(resp, req)

	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/?error=Title+is+required", resp.Header().Get("Location"))
	assert.Equal(t, store.MsgAddFailed, s.Error())
	assert.Equal(t, 0, backend.Requests())
}

func TestToggleTodo(t *testing.T) {
	backend, s := setupStore(t)
	seeded := backend.Seed(dto.Todo{Title: "Walk dog"})
	require.NoError(t, s.Refresh(context.Background()))

	req := httptest.NewRequest(http.MethodPost, "/todos/1/toggle", nil)
	req = withRouteParam(req, "id", "1")
	resp := httptest.NewRecorder()
	handler.ToggleTodo(s, logging.Nop())(resp, req)

	assert.Equal(t, http.StatusSeeOther, resp.Code)
	got, ok := s.Lookup(seeded[0].ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
}

func TestUpdateTodoKeepsUnsubmittedFields(t *testing.T) {
	backend, s := setupStore(t)
	backend.Seed(dto.Todo{Title: "Report", Description: "Q3", Priority: dto.PriorityHigh, Completed: true})
	require.NoError(t, s.Refresh(context.Background()))

	req := formRequest("/todos/1/update", url.Values{"title": {"Quarterly report"}})
	req = withRouteParam(req, "id", "1")
	resp := httptest.NewRecorder()
	handler.UpdateTodo(s, logging.Nop())(resp, req)

	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, "/?success=Todo+updated+successfully", resp.Header().Get("Location"))

	got, _ := s.Lookup(1)
	assert.Equal(t, "Quarterly report", got.Title)
	assert.Equal(t, "Q3", got.Description)
	assert.Equal(t, dto.PriorityHigh, got.Priority)
	assert.True(t, got.Completed)
}

func TestUpdateTodoUnknownID(t *testing.T) {
	_, s := setupStore(t)

	req := formRequest("/todos/9/update", url.Values{"title": {"x"}})
	req = withRouteParam(req, "id", "9")
	resp := httptest.NewRecorder()
	handler.UpdateTodo(s, logging.Nop())(resp, req)

	assert.Equal(t, "/?error=Todo+not+found", resp.Header().Get("Location"))
}

func TestDeleteTodo(t *testing.T) {
	backend, s := setupStore(t)
	backend.Seed(dto.Todo{Title: "a"})
	require.NoError(t, s.Refresh(context.Background()))

	req := httptest.NewRequest(http.MethodPost, "/todos/1/delete", nil)
	req = withRouteParam(req, "id", "1")
	resp := httptest.NewRecorder()
	handler.DeleteTodo(s, logging.Nop())(resp, req)

	assert.Equal(t, "/?success=Todo+deleted+successfully", resp.Header().Get("Location"))
	assert.Empty(t, s.Todos())
	assert.Empty(t, backend.Todos())
}

func TestDeleteTodoFailureShowsStoreError(t *testing.T) {
	backend, s := setupStore(t)
	backend.Seed(dto.Todo{Title: "a"})
	require.NoError(t, s.Refresh(context.Background()))
	backend.FailNext(1)

	req := httptest.NewRequest(http.MethodPost, "/todos/1/delete", nil)
	req = withRouteParam(req, "id", "1")
	resp := httptest.NewRecorder()
	handler.DeleteTodo(s, logging.Nop())(resp, req)

	assert.Equal(t, "/", resp.Header().Get("Location"))
	assert.Len(t, s.Todos(), 1)
	assert.Equal(t, store.MsgDeleteFailed, s.Error())
}

func TestInvalidID(t *testing.T) {
	_, s := setupStore(t)

	req := httptest.NewRequest(http.MethodPost, "/todos/abc/toggle", nil)
	req = withRouteParam(req, "id", "abc")
	resp := httptest.NewRecorder()
	handler.ToggleTodo(s, logging.Nop())(resp, req)

	assert.Equal(t, "/", resp.Header().Get("Location"))
	assert.Equal(t, "Invalid todo ID", s.Error())
}

func TestIndexRendersView(t *testing.T) {
	backend, s := setupStore(t)
	backend.Seed(dto.Todo{Title: "open task"}, dto.Todo{Title: "done task", Completed: true})
	require.NoError(t, s.Refresh(context.Background()))

	router := chi.NewRouter()
	handler.Mount(router, s, logging.Nop())

	req := httptest.NewRequest(http.MethodGet, "/?filter=active", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	body := resp.Body.String()
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, body, "1 of 2 tasks completed")
	assert.Contains(t, body, "open task")
	assert.NotContains(t, body, "done task")
	assert.Equal(t, dto.FilterActive, s.Filter())
}

func TestIndexShowsAndDismissesError(t *testing.T) {
	backend, s := setupStore(t)
	backend.FailNext(1)
	require.Error(t, s.Refresh(context.Background()))

	router := chi.NewRouter()
	handler.Mount(router, s, logging.Nop())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, resp.Body.String(), "Failed to load todos")
	assert.Contains(t, resp.Body.String(), "No todos yet")

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/error/dismiss", nil))
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Empty(t, s.Error())
}

func TestHealth(t *testing.T) {
	resp := httptest.NewRecorder()
	handler.Health(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, resp.Body.String())
}
