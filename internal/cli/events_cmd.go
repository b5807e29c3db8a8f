package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/timeai/internal/cli/formatter"
	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/alexanderramin/timeai/internal/repository"
	"github.com/alexanderramin/timeai/internal/service"
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App, opts *runOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Manage the local calendar store",
	}

	cmd.AddCommand(
		newEventsAddCmd(app),
		newEventsUpdateCmd(app),
		newEventsListCmd(app, opts),
		newEventsDeleteCmd(app),
		newEventsImportCmd(app, opts),
		newEventsSlotCmd(app, opts),
		newEventsRescheduleCmd(app, opts),
	)

	return cmd
}

func newEventsAddCmd(app *App) *cobra.Command {
	var (
		title, start, end string
		tasks             []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Events()
			if err != nil {
				return err
			}
			e := &domain.StoredEvent{Title: title, Tasks: tasks}
			if e.Start, err = parseFlagTime(app, "start", start); err != nil {
				return err
			}
			if e.End, err = parseFlagTime(app, "end", end); err != nil {
				return err
			}
			if err := events.Add(cmd.Context(), e); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Event title (required)")
	cmd.Flags().StringVar(&start, "start", "", "Start time, ISO-8601 (required)")
	cmd.Flags().StringVar(&end, "end", "", "End time, ISO-8601 (required)")
	cmd.Flags().StringArrayVar(&tasks, "task", nil, "Task attached to the event (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func newEventsUpdateCmd(app *App) *cobra.Command {
	var (
		title, start, end string
		tasks             []string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a stored event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Events()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			id, err := resolveEventID(ctx, events, args[0])
			if err != nil {
				return err
			}
			e, err := events.Get(ctx, id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("title") {
				e.Title = title
			}
			if cmd.Flags().Changed("start") {
				if e.Start, err = parseFlagTime(app, "start", start); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("end") {
				if e.End, err = parseFlagTime(app, "end", end); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("task") {
				e.Tasks = tasks
			}

			if err := events.Update(ctx, e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", e.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&start, "start", "", "New start time")
	cmd.Flags().StringVar(&end, "end", "", "New end time")
	cmd.Flags().StringArrayVar(&tasks, "task", nil, "Replace the task list (repeatable)")

	return cmd
}

func newEventsListCmd(app *App, opts *runOptions) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored events in start order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Events()
			if err != nil {
				return err
			}
			filter, err := rangeFilter(app, from, to)
			if err != nil {
				return err
			}
			list, err := events.List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			if opts.format == formatText {
				_, err := io.WriteString(cmd.OutOrStdout(), formatter.FormatEvents(list, app.now().In(app.location())))
				return err
			}
			views := make([]contract.EventView, 0, len(list))
			for _, e := range list {
				views = append(views, contract.NewEventView(e))
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Only events starting at or after this time")
	cmd.Flags().StringVar(&to, "to", "", "Only events starting before this time")

	return cmd
}

func newEventsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Events()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			id, err := resolveEventID(ctx, events, args[0])
			if err != nil {
				return err
			}
			if err := events.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
}

func newEventsImportCmd(app *App, opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <payload|->",
		Short: "Store every well-formed event of a {events: [...]} payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := app.Events()
			if err != nil {
				return err
			}
			data, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			req, err := contract.DecodeRequest(data)
			if err != nil {
				return fmt.Errorf("invalid payload: %w", err)
			}

			res, err := events.Import(cmd.Context(), req)
			if err != nil {
				return err
			}
			resp := &contract.ImportResponse{
				Imported: res.IDs,
				Skipped:  res.Skipped,
			}
			if resp.Imported == nil {
				resp.Imported = []string{}
			}
			if resp.Skipped == nil {
				resp.Skipped = []contract.SkippedEvent{}
			}

			if opts.format == formatText {
				_, err := io.WriteString(cmd.OutOrStdout(), formatter.FormatImport(resp))
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func newEventsSlotCmd(app *App, opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "slot [task]...",
		Short: "Find the next free slot for tasks around the stored events",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := storedPayload(cmd.Context(), app)
			if err != nil {
				return err
			}
			for _, task := range args {
				raw, err := json.Marshal(task)
				if err != nil {
					return err
				}
				req.Tasks = append(req.Tasks, raw)
			}
			return runStored(cmd, app, opts, contract.OpSmartSlot, req)
		},
	}
}

func newEventsRescheduleCmd(app *App, opts *runOptions) *cobra.Command {
	var conflictsOnly bool

	cmd := &cobra.Command{
		Use:   "reschedule",
		Short: "Show the stored events with overlaps pushed later",
		Long:  "Resolves overlaps among the stored events and prints the result. The store is left unchanged.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := storedPayload(cmd.Context(), app)
			if err != nil {
				return err
			}
			op := contract.OpReschedule
			if conflictsOnly {
				op = contract.OpRescheduleConflicts
			}
			return runStored(cmd, app, opts, op, req)
		},
	}

	cmd.Flags().BoolVar(&conflictsOnly, "conflicts-only", false, "Print only id, start and end")

	return cmd
}

// storedPayload loads every stored event as a scheduling request.
func storedPayload(ctx context.Context, app *App) (*contract.Request, error) {
	events, err := app.Events()
	if err != nil {
		return nil, err
	}
	return events.Payload(ctx, repository.EventFilter{})
}

func runStored(cmd *cobra.Command, app *App, opts *runOptions, op contract.Operation, req *contract.Request) error {
	if err := opts.apply(app, req); err != nil {
		return err
	}
	res, err := app.Scheduler.Run(cmd.Context(), op, req)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), app, opts, req, res)
}

// resolveEventID accepts a full event id or a unique prefix of one.
func resolveEventID(ctx context.Context, events service.EventService, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("event ID is required")
	}

	list, err := events.List(ctx, repository.EventFilter{})
	if err != nil {
		return "", err
	}

	var matches []string
	for _, e := range list {
		if e.ID == input {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, input) {
			matches = append(matches, e.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("event not found: %q: %w", input, repository.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("event ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

func parseFlagTime(app *App, name, value string) (domain.Timestamp, error) {
	ts, err := domain.ParseTimestamp(value, app.location())
	if err != nil {
		return domain.Timestamp{}, fmt.Errorf("--%s: %w", name, err)
	}
	return ts, nil
}

// rangeFilter turns --from/--to values into a store filter. Empty values
// leave that side open.
func rangeFilter(app *App, from, to string) (repository.EventFilter, error) {
	var filter repository.EventFilter
	if from != "" {
		ts, err := parseFlagTime(app, "from", from)
		if err != nil {
			return filter, err
		}
		filter.From = timePtr(ts.Time)
	}
	if to != "" {
		ts, err := parseFlagTime(app, "to", to)
		if err != nil {
			return filter, err
		}
		filter.To = timePtr(ts.Time)
	}
	return filter, nil
}

func timePtr(t time.Time) *time.Time { return &t }
