package board

import (
	"context"
	"fmt"

	"github.com/s1natex/taskboard-GO/internal/tasks"
)

type Action string

const (
	ActionSubmit    Action = "submit"
	ActionToggle    Action = "toggle"
	ActionDelete    Action = "delete"
	ActionDeleteAll Action = "delete-all"
)

// Command is one user action, decoupled from how it was triggered.
type Command struct {
	Action    Action
	Fields    tasks.Fields
	ID        string
	Title     string
	Confirmed bool
}

type handler func(ctx context.Context, cmd Command) error

func (c *Controller) commandTable() map[Action]handler {
	return map[Action]handler{
		ActionSubmit: func(ctx context.Context, cmd Command) error {
			out := c.Submit(ctx, cmd.Fields)
			if len(out.Errors) > 0 {
				return &tasks.ValidationError{Fields: out.Errors}
			}
			return out.LocalErr
		},
		ActionToggle: func(context.Context, Command) error {
			c.Toggle()
			return nil
		},
		ActionDelete: func(ctx context.Context, cmd Command) error {
			return c.Delete(ctx, cmd.ID, cmd.Title)
		},
		ActionDeleteAll: func(ctx context.Context, cmd Command) error {
			return c.DeleteAll(ctx, cmd.Confirmed)
		},
	}
}

// Dispatch runs cmd through the command table. Remote failures are never
// returned: they surface as warnings on the board.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	h, ok := c.handlers[cmd.Action]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	return h(ctx, cmd)
}
