package dto

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidIntent is wrapped by every validation failure.
var ErrInvalidIntent = errors.New("invalid todo")

var validate = validator.New()

// Normalize trims the text fields, defaults an empty priority to medium and
// validates the result. It returns the cleaned intent.
func (c CreateTodo) Normalize() (CreateTodo, error) {
	c.Title = strings.TrimSpace(c.Title)
	c.Description = strings.TrimSpace(c.Description)
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	return c, check(c)
}

// Normalize trims the text fields and validates the result. Priority has no
// default here: an update replaces every field, so it must be set explicitly.
func (u UpdateTodo) Normalize() (UpdateTodo, error) {
	u.Title = strings.TrimSpace(u.Title)
	u.Description = strings.TrimSpace(u.Description)
	return u, check(u)
}

func check(intent any) error {
	err := validate.Struct(intent)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidIntent, err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		return fmt.Errorf("%w: title is required", ErrInvalidIntent)
	case "Priority":
		return fmt.Errorf("%w: invalid priority %q (must be 'low', 'medium', or 'high')", ErrInvalidIntent, fe.Value())
	default:
		return fmt.Errorf("%w: %s failed %s", ErrInvalidIntent, strings.ToLower(fe.Field()), fe.Tag())
	}
}

// Message strips the sentinel prefix so the text can be shown to a user.
func Message(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, ErrInvalidIntent.Error()+": "); ok {
		msg = rest
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
