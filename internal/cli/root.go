package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/timeai/internal/cli/formatter"
	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/alexanderramin/timeai/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services CLI commands run against.
type App struct {
	Scheduler service.SchedulerService
	Batch     service.BatchService
	// Events opens the calendar store on first use.
	Events func() (service.EventService, error)

	// Location interprets naive --now, --from and --to values.
	Location *time.Location
	// Now is the reference time when --now is not given.
	Now func() time.Time

	// Setup, when set, runs before any command with the --config value and
	// fills in the fields above.
	Setup func(configPath string) error
}

const (
	formatJSON = "json"
	formatText = "text"
)

// runOptions are the persistent flags shared by every command.
type runOptions struct {
	now         string
	diagnostics bool
	format      string
	configPath  string
}

// NewRootCmd creates the top-level "timeai" command. Called with an
// operation name and a JSON payload it runs that operation and prints the
// result.
func NewRootCmd(app *App) *cobra.Command {
	opts := &runOptions{}

	root := &cobra.Command{
		Use:   "timeai <operation> <payload|->",
		Short: "Find free calendar slots and resolve overlapping events",
		Long: "Operations: smart_slot, reschedule, reschedule_conflicts.\n" +
			"The payload is {\"tasks\": [...], \"events\": [...]}; pass - to read it from stdin.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.format != formatJSON && opts.format != formatText {
				return fmt.Errorf("unknown --format %q (want json or text)", opts.format)
			}
			if app.Setup != nil {
				return app.Setup(opts.configPath)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return writeJSON(cmd.OutOrStdout(), contract.EmptyResponse{})
			}
			op := contract.Operation(args[0])
			if !op.Valid() {
				return writeJSON(cmd.OutOrStdout(), contract.EmptyResponse{})
			}

			data, err := readPayload(cmd, args[1])
			if err != nil {
				return err
			}
			req, err := contract.DecodeRequest(data)
			if err != nil {
				return fmt.Errorf("invalid payload: %w", err)
			}
			if err := opts.apply(app, req); err != nil {
				return err
			}

			res, err := app.Scheduler.Run(cmd.Context(), op, req)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), app, opts, req, res)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.now, "now", "", "Reference time (ISO-8601); the search starts the day after")
	pf.BoolVar(&opts.diagnostics, "diagnostics", false, "Include skipped entries and feasibility in results")
	pf.StringVar(&opts.format, "format", formatJSON, "Output format: json or text")
	pf.StringVar(&opts.configPath, "config", "", "Config file (default ./timeai.yaml or ~/.timeai/timeai.yaml)")

	root.AddCommand(
		newEventsCmd(app, opts),
		newBatchCmd(app, opts),
	)

	return root
}

// apply copies the run flags onto a decoded request.
func (o *runOptions) apply(app *App, req *contract.Request) error {
	req.Diagnostics = o.diagnostics
	if o.now == "" {
		return nil
	}
	ts, err := domain.ParseTimestamp(o.now, app.location())
	if err != nil {
		return fmt.Errorf("--now: %w", err)
	}
	req.Now = &ts.Time
	return nil
}

// readPayload returns arg itself, or stdin when arg is "-".
func readPayload(cmd *cobra.Command, arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading payload from stdin: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// render prints a scheduling result in the selected format.
func render(w io.Writer, app *App, opts *runOptions, req *contract.Request, res any) error {
	if opts.format != formatText {
		return writeJSON(w, res)
	}
	var out string
	switch r := res.(type) {
	case *contract.SmartSlotResponse:
		now := app.now()
		if req.Now != nil {
			now = *req.Now
		}
		out = formatter.FormatSlot(r, now.In(app.location())) + "\n"
	case *contract.RescheduleResponse:
		out = formatter.FormatReschedule(r)
	case *contract.ConflictsResponse:
		out = formatter.FormatConflicts(r)
	default:
		return writeJSON(w, res)
	}
	_, err := io.WriteString(w, out)
	return err
}

func (a *App) location() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
