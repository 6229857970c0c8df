package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/store"
)

// Mount registers the page routes on r.
func Mount(r chi.Router, s *store.Store, logger *logging.Logger) {
	r.Get("/", Index(s, logger))
	r.Post("/todos", CreateTodo(s, logger))
	r.Post("/todos/{id}/toggle", ToggleTodo(s, logger))
	r.Post("/todos/{id}/update", UpdateTodo(s, logger))
	r.Post("/todos/{id}/delete", DeleteTodo(s, logger))
	r.Post("/refresh", Refresh(s, logger))
	r.Post("/error/dismiss", DismissError(s))
}
