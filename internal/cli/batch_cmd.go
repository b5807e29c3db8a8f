package cli

import (
	"time"

	"github.com/alexanderramin/timeai/internal/contract"
	"github.com/alexanderramin/timeai/internal/domain"
	"github.com/spf13/cobra"
)

func newBatchCmd(app *App, opts *runOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Run newline-delimited requests from stdin",
		Long: "Each input line is {\"op\": \"<operation>\", \"payload\": {...}}.\n" +
			"One JSON result is written per line, in input order.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var now *time.Time
			if opts.now != "" {
				ts, err := domain.ParseTimestamp(opts.now, app.location())
				if err != nil {
					return err
				}
				now = &ts.Time
			}
			diagnostics := opts.diagnostics

			prepare := func(req *contract.Request) {
				req.Diagnostics = diagnostics
				if now != nil {
					t := *now
					req.Now = &t
				}
			}
			return app.Batch.RunBatch(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), prepare)
		},
	}
}
