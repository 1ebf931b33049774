package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/avask/buildgrid/internal/app"
	"github.com/avask/buildgrid/internal/hcl"
)

// newPlanCmd builds the `buildgrid plan` command: expansion and planning
// only, with no job executed. Configuration conflicts and missing fields
// surface here exactly as they would at the start of a real run.
func newPlanCmd(outW io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan PIPELINE",
		Short: "Expand and plan the matrix without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.NewConfig(app.Config{
				PipelinePath: args[0],
				ProjectDir:   opts.projectDir,
				LogFormat:    opts.logFormat,
				LogLevel:     opts.logLevel,
				Workers:      opts.workers,
				PlanOnly:     true,
			})
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}

			a := app.NewApp(outW, cfg, hcl.NewLoader(), nil)
			return a.Run(cmd.Context())
		},
	}
}
