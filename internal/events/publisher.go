package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/logging"
	"github.com/todoflow-labs/todo-client/internal/store"
)

const (
	StreamName    = "todo_events"
	SubjectPrefix = "todo.events."
)

// Event is the JSON payload published for each confirmed change.
type Event struct {
	Type      string    `json:"type"`
	ID        int       `json:"id,omitempty"`
	Todo      *dto.Todo `json:"todo,omitempty"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
	Active    int       `json:"active"`
}

// Publisher forwards store changes to JetStream. Attach it with
// store.Subscribe(p.Handle).
type Publisher struct {
	js     nats.JetStreamContext
	logger *logging.Logger
}

// NewPublisher makes sure the events stream exists.
func NewPublisher(js nats.JetStreamContext, logger *logging.Logger) (*Publisher, error) {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPrefix + ">"},
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) && !strings.Contains(err.Error(), "file already in use") {
		return nil, fmt.Errorf("failed to create JetStream stream: %w", err)
	}
	return &Publisher{js: js, logger: logger}, nil
}

// Handle is a store.Listener. Only confirmed list changes are published;
// publish failures are logged and never reach the store.
func (p *Publisher) Handle(st store.State, c store.Change) {
	switch c.Kind {
	case store.ChangeAdded, store.ChangeUpdated, store.ChangeRemoved, store.ChangeRefreshed:
	default:
		return
	}

	total, completed, active := dto.Counts(st.Todos)
	data, err := json.Marshal(Event{
		Type:      string(c.Kind),
		ID:        c.ID,
		Todo:      c.Todo,
		Total:     total,
		Completed: completed,
		Active:    active,
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to encode todo event")
		return
	}

	subject := SubjectPrefix + string(c.Kind)
	if _, err := p.js.Publish(subject, data); err != nil {
		p.logger.Error().Err(err).Str("subject", subject).Msg("failed to publish todo event")
		return
	}
	p.logger.Debug().Str("subject", subject).Int("id", c.ID).Msg("todo event published")
}
