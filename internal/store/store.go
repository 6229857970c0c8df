// Package store holds the client-side copy of the todo list and keeps it in
// step with the backend.
//
// Every mutation is pessimistic: the backend call completes first and only
// then is the local list changed, using the entity the backend returned. A
// failed call leaves the list untouched and records a single human-readable
// error message, which stays until DismissError is called.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/metrics"
)

const (
	MsgLoadFailed   = "Failed to load todos. Please make sure the backend server is running."
	MsgLoadOne      = "Failed to load todo"
	MsgAddFailed    = "Failed to add todo"
	MsgUpdateFailed = "Failed to update todo"
	MsgDeleteFailed = "Failed to delete todo"
)

// ErrMissingID is returned when the backend answers a create without
// assigning an id.
var ErrMissingID = errors.New("backend returned a todo without an id")

// Remote is the backend as the store sees it. *client.Client implements it.
type Remote interface {
	List(ctx context.Context) ([]dto.Todo, error)
	Get(ctx context.Context, id int) (dto.Todo, error)
	Create(ctx context.Context, intent dto.CreateTodo) (dto.Todo, error)
	Update(ctx context.Context, id int, intent dto.UpdateTodo) (dto.Todo, error)
	Delete(ctx context.Context, id int) error
	Toggle(ctx context.Context, id int) (dto.Todo, error)
}

type Store struct {
	remote Remote
	logger *logging.Logger

	mu         sync.RWMutex
	todos      []dto.Todo
	refreshing int
	errMsg     string
	filter     dto.Filter

	subMu   sync.Mutex
	nextSub int
	subs    []subscription
}

type Option func(*Store)

func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(remote Remote, opts ...Option) *Store {
	s := &Store{
		remote: remote,
		logger: logging.Nop(),
		filter: dto.FilterAll,
		todos:  []dto.Todo{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh replaces the whole local list with the backend's. On failure the
// previous list is kept. The loading flag is raised for the duration of the
// call and cleared on every exit path.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.refreshing++
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st, Change{Kind: ChangeLoading})

	defer func() {
		s.mu.Lock()
		s.refreshing--
		st := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(st, Change{Kind: ChangeLoading})
	}()

	todos, err := s.remote.List(ctx)
	if err != nil {
		return s.fail("refresh", 0, MsgLoadFailed, err)
	}

	s.mu.Lock()
	s.todos = dedupe(todos)
	st = s.snapshotLocked()
	s.mu.Unlock()
	s.logger.Debug().Int("count", len(todos)).Msg("todo list refreshed")
	s.notify(st, Change{Kind: ChangeRefreshed})
	return nil
}

// Get fetches one todo and, if it is already held locally, replaces the
// local copy with it.
func (s *Store) Get(ctx context.Context, id int) (dto.Todo, error) {
	todo, err := s.remote.Get(ctx, id)
	if err != nil {
		return dto.Todo{}, s.fail("get", id, MsgLoadOne, err)
	}
	if st, ok := s.replace(todo); ok {
		s.notify(st, Change{Kind: ChangeUpdated, ID: id, Todo: &todo})
	}
	return todo, nil
}

// Add validates the intent, creates the todo remotely and appends the
// backend's entity to the end of the list. A rejected intent records the same
// message as a failed request; the returned error wraps dto.ErrInvalidIntent.
func (s *Store) Add(ctx context.Context, intent dto.CreateTodo) (dto.Todo, error) {
	intent, err := intent.Normalize()
	if err != nil {
		return dto.Todo{}, s.fail("add", 0, MsgAddFailed, err)
	}

	created, err := s.remote.Create(ctx, intent)
	if err != nil {
		return dto.Todo{}, s.fail("add", 0, MsgAddFailed, err)
	}
	if created.ID <= 0 {
		return dto.Todo{}, s.fail("add", 0, MsgAddFailed, ErrMissingID)
	}

	s.mu.Lock()
	if i := indexOf(s.todos, created.ID); i >= 0 {
		s.todos[i] = created
	} else {
		s.todos = append(s.todos, created)
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st, Change{Kind: ChangeAdded, ID: created.ID, Todo: &created})
	return created, nil
}

// Toggle flips completion server-side and stores the returned entity.
func (s *Store) Toggle(ctx context.Context, id int) (dto.Todo, error) {
	updated, err := s.remote.Toggle(ctx, id)
	if err != nil {
		return dto.Todo{}, s.fail("toggle", id, MsgUpdateFailed, err)
	}
	st, _ := s.replace(updated)
	s.notify(st, Change{Kind: ChangeUpdated, ID: id, Todo: &updated})
	return updated, nil
}

// Update sends a full replacement for the todo. Build intent with
// dto.UpdateFrom so fields the caller is not changing keep their values.
func (s *Store) Update(ctx context.Context, id int, intent dto.UpdateTodo) (dto.Todo, error) {
	intent, err := intent.Normalize()
	if err != nil {
		return dto.Todo{}, s.fail("update", id, MsgUpdateFailed, err)
	}

	updated, err := s.remote.Update(ctx, id, intent)
	if err != nil {
		return dto.Todo{}, s.fail("update", id, MsgUpdateFailed, err)
	}
	st, _ := s.replace(updated)
	s.notify(st, Change{Kind: ChangeUpdated, ID: id, Todo: &updated})
	return updated, nil
}

// Remove deletes the todo remotely, then drops it from the local list. An id
// that is not held locally is not an error once the backend confirms.
func (s *Store) Remove(ctx context.Context, id int) error {
	if err := s.remote.Delete(ctx, id); err != nil {
		return s.fail("remove", id, MsgDeleteFailed, err)
	}

	s.mu.Lock()
	if i := indexOf(s.todos, id); i >= 0 {
		s.todos = append(s.todos[:i:i], s.todos[i+1:]...)
	}
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st, Change{Kind: ChangeRemoved, ID: id})
	return nil
}

func (s *Store) SetFilter(f dto.Filter) {
	s.mu.Lock()
	s.filter = dto.ParseFilter(string(f))
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st, Change{Kind: ChangeFiltered})
}

func (s *Store) Filter() dto.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// Error returns the current error message, or "" when there is none.
func (s *Store) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *Store) DismissError() {
	s.mu.Lock()
	s.errMsg = ""
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st, Change{Kind: ChangeDismissed})
}

// Reject records msg as the current error for a request the caller refused
// before reaching the store, such as a malformed id.
func (s *Store) Reject(op, msg string) {
	_ = s.fail(op, 0, msg, errors.New(msg))
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshing > 0
}

// Todos returns a copy of the local list in backend order.
func (s *Store) Todos() []dto.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dto.Todo{}, s.todos...)
}

// Lookup returns the locally held todo with id.
func (s *Store) Lookup(id int) (dto.Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.todos, id); i >= 0 {
		return s.todos[i], true
	}
	return dto.Todo{}, false
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	return State{
		Todos:   append([]dto.Todo{}, s.todos...),
		Loading: s.refreshing > 0,
		Err:     s.errMsg,
		Filter:  s.filter,
	}
}

// fail records msg as the current error and returns err unchanged.
func (s *Store) fail(op string, id int, msg string, err error) error {
	s.mu.Lock()
	s.errMsg = msg
	st := s.snapshotLocked()
	s.mu.Unlock()

	metrics.StoreErrors.WithLabelValues(op).Inc()
	s.logger.Error().Err(err).Str("op", op).Int("id", id).Msg(msg)
	s.notify(st, Change{Kind: ChangeFailed, ID: id, Err: err})
	return err
}

// replace swaps in todo for the local entry with the same id. It returns the
// resulting state and whether such an entry existed.
func (s *Store) replace(todo dto.Todo) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.todos, todo.ID)
	if i >= 0 {
		s.todos[i] = todo
	}
	return s.snapshotLocked(), i >= 0
}

func indexOf(todos []dto.Todo, id int) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// dedupe keeps the first entry for each id.
func dedupe(todos []dto.Todo) []dto.Todo {
	seen := make(map[int]struct{}, len(todos))
	out := make([]dto.Todo, 0, len(todos))
	for _, t := range todos {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
