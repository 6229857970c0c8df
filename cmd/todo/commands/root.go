package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/todoflow-labs/todo-client/internal/app"
	"github.com/todoflow-labs/todo-client/internal/config"
	"github.com/todoflow-labs/todo-client/internal/dto"
	"github.com/todoflow-labs/todo-client/internal/store"
)

// LoadFunc supplies configuration; main passes config.Load.
type LoadFunc func() (*config.Config, error)

type rootOptions struct {
	load   LoadFunc
	apiURL string
}

// NewRootCmd creates the todo command tree.
func NewRootCmd(load LoadFunc) *cobra.Command {
	opts := &rootOptions{load: load}

	rootCmd := &cobra.Command{
		Use:           "todo",
		Short:         "Manage your todo list",
		Long:          "Create, list, edit, complete and delete todos stored by the todo API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "todo API base URL (overrides TODO_API_URL)")

	rootCmd.AddCommand(NewListCmd(opts))
	rootCmd.AddCommand(NewGetCmd(opts))
	rootCmd.AddCommand(NewAddCmd(opts))
	rootCmd.AddCommand(NewUpdateCmd(opts))
	rootCmd.AddCommand(NewToggleCmd(opts))
	rootCmd.AddCommand(NewRemoveCmd(opts))
	rootCmd.AddCommand(NewServeCmd(opts))
	rootCmd.AddCommand(NewDevServerCmd())

	return rootCmd
}

func (o *rootOptions) config() (*config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.apiURL != "" {
		cfg.APIURL = o.apiURL
	}
	return cfg, nil
}

// withStore builds the dependencies, runs fn and turns a store failure into
// the store's user-facing message. A rejected intent reports its reason.
func (o *rootOptions) withStore(cmd *cobra.Command, fn func(ctx context.Context, s *store.Store) error) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close(context.Background())

	if err := fn(ctx, d.Store); err != nil {
		if errors.Is(err, dto.ErrInvalidIntent) {
			return errors.New(dto.Message(err))
		}
		if msg := d.Store.Error(); msg != "" {
			return errors.New(msg)
		}
		return err
	}
	return nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo ID %q", arg)
	}
	return id, nil
}

func printTodos(w io.Writer, todos []dto.Todo) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tTITLE\tCREATED")
	for _, t := range todos {
		done := " "
		if t.Completed {
			done = "x"
		}
		created := t.CreatedAt
		if ts := t.CreatedTime(); !ts.IsZero() {
			created = ts.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%d\t[%s]\t%s\t%s\t%s\n", t.ID, done, t.Priority, t.Title, created)
	}
	_ = tw.Flush()
}

func printTodo(w io.Writer, t dto.Todo) {
	fmt.Fprintf(w, "ID:          %d\n", t.ID)
	fmt.Fprintf(w, "Title:       %s\n", t.Title)
	if t.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", t.Description)
	}
	fmt.Fprintf(w, "Priority:    %s\n", t.Priority)
	fmt.Fprintf(w, "Completed:   %t\n", t.Completed)
	fmt.Fprintf(w, "Created:     %s\n", t.CreatedAt)
	fmt.Fprintf(w, "Updated:     %s\n", t.UpdatedAt)
}
