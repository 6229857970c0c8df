package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/store"
)

// Index renders the current view. A filter query parameter switches the
// store's filter first.
func Index(s *store.Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if f := q.Get("filter"); f != "" && dto.ParseFilter(f) != s.Filter() {
			s.SetFilter(dto.ParseFilter(f))
		}

		st := s.Snapshot()
		data := pageData{
			View:       st.View(),
			Loading:    st.Loading,
			Error:      st.Err,
			FlashError: q.Get("error"),
			Success:    q.Get("success"),
			Filters:    []dto.Filter{dto.FilterAll, dto.FilterActive, dto.FilterCompleted},
			Priorities: []dto.Priority{dto.PriorityLow, dto.PriorityMedium, dto.PriorityHigh},
		}

		var buf bytes.Buffer
		if err := page.Execute(&buf, data); err != nil {
			logger.Error().Err(err).Msg("failed to render index")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}
}

func CreateTodo(s *store.Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Msg("handling create todo")
		if err := r.ParseForm(); err != nil {
			redirect(w, r, "error", "Invalid form data")
			return
		}

		priority, _ := dto.ParsePriority(r.FormValue("priority"))
		intent := dto.CreateTodo{
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Priority:    priority,
		}
		if _, err := s.Add(r.Context(), intent); err != nil {
			failed(w, r, err)
			return
		}
		redirect(w, r, "success", "Todo created successfully")
	}
}

func ToggleTodo(s *store.Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoID(s, w, r)
		if !ok {
			return
		}
		logger.Debug().Int("id", id).Msg("handling toggle todo")
		_, _ = s.Toggle(r.Context(), id)
		redirect(w, r, "", "")
	}
}

// UpdateTodo merges the submitted fields over the locally held todo, so the
// full-replace request never drops a field the form did not carry.
func UpdateTodo(s *store.Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoID(s, w, r)
		if !ok {
			return
		}
		logger.Debug().Int("id", id).Msg("handling update todo")
		if err := r.ParseForm(); err != nil {
			redirect(w, r, "error", "Invalid form data")
			return
		}

		current, ok := s.Lookup(id)
		if !ok {
			redirect(w, r, "error", "Todo not found")
			return
		}
		intent := dto.UpdateFrom(current)
		if r.Form.Has("title") {
			intent.Title = r.FormValue("title")
		}
		if r.Form.Has("description") {
			intent.Description = r.FormValue("description")
		}
		if r.Form.Has("priority") {
			intent.Priority, _ = dto.ParsePriority(r.FormValue("priority"))
		}
		if r.Form.Has("completed") {
			intent.Completed, _ = strconv.ParseBool(r.FormValue("completed"))
		}

		if _, err := s.Update(r.Context(), id, intent); err != nil {
			failed(w, r, err)
			return
		}
		redirect(w, r, "success", "Todo updated successfully")
	}
}

func DeleteTodo(s *store.Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := todoID(s, w, r)
		if !ok {
			return
		}
		logger.Debug().Int("id", id).Msg("handling delete todo")
		if err := s.Remove(r.Context(), id); err != nil {
			redirect(w, r, "", "")
			return
		}
		redirect(w, r, "success", "Todo deleted successfully")
	}
}

func Refresh(s *store.Store, logger *logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Msg("handling refresh")
		_ = s.Refresh(r.Context())
		redirect(w, r, "", "")
	}
}

func DismissError(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.DismissError()
		redirect(w, r, "", "")
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

// todoID parses the id route parameter. A malformed id is recorded as the
// store's error before redirecting.
func todoID(s *store.Store, w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		s.Reject("parse id", "Invalid todo ID")
		redirect(w, r, "", "")
		return 0, false
	}
	return id, true
}

// failed redirects after a store failure. The store already holds the
// operation's message; a rejected form also gets the reason as a flash.
func failed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, dto.ErrInvalidIntent) {
		redirect(w, r, "error", dto.Message(err))
		return
	}
	redirect(w, r, "", "")
}

// redirect sends the browser back to the list, keeping the active filter and
// attaching an optional flash message.
func redirect(w http.ResponseWriter, r *http.Request, key, msg string) {
	q := url.Values{}
	if f := r.URL.Query().Get("filter"); f != "" {
		q.Set("filter", string(dto.ParseFilter(f)))
	}
	if key != "" {
		q.Set(key, msg)
	}
	target := "/"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
