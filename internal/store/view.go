package store

import "github.com/todoflow-labs/todo-client/internal/dto"

// State is a copy of everything the store holds.
type State struct {
	Todos   []dto.Todo
	Loading bool
	Err     string
	Filter  dto.Filter
}

// View is the filtered list plus counts over the whole list.
type View struct {
	Filter    dto.Filter
	Todos     []dto.Todo
	Total     int
	Completed int
	Active    int
}

// View derives the current projection. It is recomputed on every call.
func (s *Store) View() View {
	return s.Snapshot().View()
}

func (st State) View() View {
	total, completed, active := dto.Counts(st.Todos)
	return View{
		Filter:    st.Filter,
		Todos:     dto.Apply(st.Todos, st.Filter),
		Total:     total,
		Completed: completed,
		Active:    active,
	}
}

type ChangeKind string

const (
	ChangeLoading   ChangeKind = "loading"
	ChangeRefreshed ChangeKind = "refreshed"
	ChangeAdded     ChangeKind = "added"
	ChangeUpdated   ChangeKind = "updated"
	ChangeRemoved   ChangeKind = "removed"
	ChangeFiltered  ChangeKind = "filtered"
	ChangeFailed    ChangeKind = "failed"
	ChangeDismissed ChangeKind = "dismissed"
)

// Change describes what just happened to the store. Todo is set for added
// and updated, Err for failed.
type Change struct {
	Kind ChangeKind
	ID   int
	Todo *dto.Todo
	Err  error
}

// Listener is called after every state change, outside the store's lock.
type Listener func(State, Change)

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// notify hands every subscriber st, the state taken under the lock that
// applied c.
func (s *Store) notify(st State, c Change) {
	s.subMu.Lock()
	subs := s.subs
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(st, c)
	}
}
