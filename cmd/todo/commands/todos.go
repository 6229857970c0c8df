package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/store"
)

// NewListCmd creates the list command
func NewListCmd(opts *rootOptions) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		Long:  "List todos, optionally only the active or completed ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withStore(cmd, func(ctx context.Context, s *store.Store) error {
				if err := s.Refresh(ctx); err != nil {
					return err
				}
				s.SetFilter(dto.ParseFilter(filter))
				v := s.View()

				out := cmd.OutOrStdout()
				if len(v.Todos) == 0 {
					if v.Filter == dto.FilterAll {
						fmt.Fprintln(out, "No todos yet")
					} else {
						fmt.Fprintf(out, "No %s todos\n", v.Filter)
					}
				} else {
					printTodos(out, v.Todos)
				}
				fmt.Fprintf(out, "\n%d of %d tasks completed, %d active\n", v.Completed, v.Total, v.Active)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", string(dto.FilterAll), "all, active or completed")
	return cmd
}

func NewGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withStore(cmd, func(ctx context.Context, s *store.Store) error {
				todo, err := s.Get(ctx, id)
				if err != nil {
					return err
				}
				printTodo(cmd.OutOrStdout(), todo)
				return nil
			})
		},
	}
}

func NewAddCmd(opts *rootOptions) *cobra.Command {
	var (
		description string
		priority    string
	)
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Create a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _ := dto.ParsePriority(priority)
			intent := dto.CreateTodo{
				Title:       strings.Join(args, " "),
				Description: description,
				Priority:    p,
			}
			return opts.withStore(cmd, func(ctx context.Context, s *store.Store) error {
				todo, err := s.Add(ctx, intent)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created todo %d: %s\n", todo.ID, todo.Title)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "todo description")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(dto.PriorityMedium), "low, medium or high")
	return cmd
}

// NewUpdateCmd creates the update command. The backend replaces every field,
// so the current todo is fetched first and only the flags given change it.
func NewUpdateCmd(opts *rootOptions) *cobra.Command {
	var (
		title       string
		description string
		priority    string
		completed   bool
	)
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			return opts.withStore(cmd, func(ctx context.Context, s *store.Store) error {
				current, err := s.Get(ctx, id)
				if err != nil {
					return err
				}
				intent := dto.UpdateFrom(current)
				if flags.Changed("title") {
					intent.Title = title
				}
				if flags.Changed("description") {
					intent.Description = description
				}
				if flags.Changed("priority") {
					intent.Priority, _ = dto.ParsePriority(priority)
				}
				if flags.Changed("completed") {
					intent.Completed = completed
				}

				todo, err := s.Update(ctx, id, intent)
				if err != nil {
					return err
				}
				printTodo(cmd.OutOrStdout(), todo)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark completed (--completed=false to reopen)")
	return cmd
}

func NewToggleCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Flip a todo between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withStore(cmd, func(ctx context.Context, s *store.Store) error {
				todo, err := s.Toggle(ctx, id)
				if err != nil {
					return err
				}
				state := "active"
				if todo.Completed {
					state = "completed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Todo %d is now %s\n", todo.ID, state)
				return nil
			})
		},
	}
}

func NewRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.withStore(cmd, func(ctx context.Context, s *store.Store) error {
				if err := s.Remove(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted todo %d\n", id)
				return nil
			})
		},
	}
}
