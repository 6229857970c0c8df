// internal/dto/todo.go
package dto

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts low/medium/high in any case. Empty input means medium.
func ParsePriority(s string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, true
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	default:
		return Priority(s), false
	}
}

// Todo is the backend's representation of a task. Timestamps stay opaque
// strings; CreatedTime/UpdatedTime parse them for display only.
type Todo struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	Priority    Priority `json:"priority"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func (t Todo) CreatedTime() time.Time { return parseTimestamp(t.CreatedAt) }

func (t Todo) UpdatedTime() time.Time { return parseTimestamp(t.UpdatedAt) }

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// CreateTodo is what a caller may submit to create a todo.
type CreateTodo struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority" validate:"required,oneof=low medium high"`
}

// UpdateTodo replaces every mutable field of a todo. It is not a patch:
// build it with UpdateFrom so unchanged fields carry their current values.
type UpdateTodo struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority" validate:"required,oneof=low medium high"`
	Completed   bool     `json:"completed"`
}

func UpdateFrom(t Todo) UpdateTodo {
	return UpdateTodo{
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
	}
}
