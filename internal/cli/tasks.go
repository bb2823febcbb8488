package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tasklist/internal/client"
	"tasklist/internal/models"
)

// session bundles what a client command needs for one run.
type session struct {
	api  *client.Client
	ctrl *client.Controller
}

func (a *app) newSession(cmd *cobra.Command, assumeYes bool) *session {
	api := client.New(a.cfg.Client.BaseURL, &http.Client{Timeout: a.cfg.Client.Timeout})
	view := &textView{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
	confirm := &promptConfirm{
		in:  bufio.NewReader(cmd.InOrStdin()),
		out: cmd.OutOrStdout(),
		yes: assumeYes,
	}
	return &session{api: api, ctrl: client.NewController(api, view, confirm)}
}

// resolve finds a task by its 1-based position in the current list or,
// failing that, by id.
func (s *session) resolve(ctx context.Context, ref string) (models.Task, error) {
	tasks, err := s.api.List(ctx)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to load tasks: %w", err)
	}

	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tasks) {
		return tasks[n-1], nil
	}
	for _, task := range tasks {
		if task.ID == ref {
			return task, nil
		}
	}
	return models.Task{}, fmt.Errorf("no task matches %q", ref)
}

// reportedError marks a failure the view has already shown to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// dispatch runs one controller action.
func (s *session) dispatch(ctx context.Context, a client.Action) error {
	err := s.ctrl.Dispatch(ctx, a)
	if err == nil || errors.Is(err, client.ErrDeclined) {
		return err
	}
	return &reportedError{err: err}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.newSession(cmd, false).dispatch(cmd.Context(), client.Action{Kind: client.ActionLoad})
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(strings.Join(args, " "))
			if title == "" {
				return errors.New("title is required")
			}
			return a.newSession(cmd, false).dispatch(cmd.Context(), client.Action{Kind: client.ActionCreate, Title: title})
		},
	}
}

// newDoneCmd builds `done` (completed=true) or `undo` (completed=false).
func newDoneCmd(a *app, completed bool) *cobra.Command {
	use, short := "done <n|id>", "Mark a task as completed"
	if !completed {
		use, short = "undo <n|id>", "Mark a task as not completed"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.newSession(cmd, false)
			ctx := cmd.Context()

			task, err := s.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if task.Completed == completed {
				return s.dispatch(ctx, client.Action{Kind: client.ActionLoad})
			}
			return s.dispatch(ctx, client.Action{Kind: client.ActionToggle, Task: task})
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <n|id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.newSession(cmd, yes)
			ctx := cmd.Context()

			task, err := s.resolve(ctx, args[0])
			if err != nil {
				return err
			}
			err = s.dispatch(ctx, client.Action{Kind: client.ActionDelete, Task: task})
			if errors.Is(err, client.ErrDeclined) {
				fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}
