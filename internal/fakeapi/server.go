// Package fakeapi serves the todo backend contract from memory. It backs the
// tests and the `todo devserver` command.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/logging"
)

type Server struct {
	mu       sync.Mutex
	todos    []dto.Todo
	nextID   int
	failNext int
	requests int
	now      func() time.Time
	logger   *logging.Logger
}

type Option func(*Server)

func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithWelcomeTodo seeds the single starter todo a fresh backend shows.
func WithWelcomeTodo() Option {
	return func(s *Server) {
		s.insert(dto.Todo{
			Title:       "Welcome to Todo App",
			Description: "This is your first todo item. You can edit, complete, or delete it.",
			Priority:    dto.PriorityMedium,
		})
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		nextID: 1,
		now:    time.Now,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed inserts todos as if they had been created, assigning fresh ids.
func (s *Server) Seed(todos ...dto.Todo) []dto.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dto.Todo, 0, len(todos))
	for _, t := range todos {
		out = append(out, s.insert(t))
	}
	return out
}

func (s *Server) insert(t dto.Todo) dto.Todo {
	ts := s.now().UTC().Format(time.RFC3339Nano)
	t.ID = s.nextID
	s.nextID++
	t.CreatedAt, t.UpdatedAt = ts, ts
	if t.Priority == "" {
		t.Priority = dto.PriorityMedium
	}
	s.todos = append(s.todos, t)
	return t
}

// Todos returns a copy of the backend's current collection.
func (s *Server) Todos() []dto.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]dto.Todo(nil), s.todos...)
}

// FailNext makes the next n requests answer 500.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

// Requests reports how many API requests reached the server.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Route("/api/v1/todos", func(r chi.Router) {
		r.Use(s.faults)
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Get("/{id}", s.get)
		r.Put("/{id}", s.update)
		r.Delete("/{id}", s.delete)
		r.Put("/{id}/toggle", s.toggle)
	})
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			s.mu.Lock()
			s.requests++
			s.mu.Unlock()
		}
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("fakeapi request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) faults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failNext > 0
		if fail {
			s.failNext--
		}
		s.mu.Unlock()
		if fail {
			writeError(w, http.StatusInternalServerError, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	todos := s.Todos()
	if todos == nil {
		todos = []dto.Todo{}
	}
	writeJSON(w, http.StatusOK, todos)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		writeJSON(w, http.StatusOK, s.todos[i])
		return
	}
	writeError(w, http.StatusNotFound, "Todo not found")
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in dto.CreateTodo
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	s.mu.Lock()
	created := s.insert(dto.Todo{Title: in.Title, Description: in.Description, Priority: in.Priority})
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var in dto.UpdateTodo
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	// full replacement: every mutable field comes from the request
	t := s.todos[i]
	t.Title = strings.TrimSpace(in.Title)
	t.Description = in.Description
	t.Priority = in.Priority
	t.Completed = in.Completed
	t.UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
	s.todos[i] = t
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Todo deleted successfully"})
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		writeError(w, http.StatusNotFound, "Todo not found")
		return
	}
	s.todos[i].Completed = !s.todos[i].Completed
	s.todos[i].UpdatedAt = s.now().UTC().Format(time.RFC3339Nano)
	writeJSON(w, http.StatusOK, s.todos[i])
}

// index must be called with s.mu held.
func (s *Server) index(id int) int {
	for i, t := range s.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
