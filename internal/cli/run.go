package cli

import (
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avask/buildgrid/internal/app"
	"github.com/avask/buildgrid/internal/hcl"
)

// newRunCmd builds the `buildgrid run` command: the full expand, plan,
// build, test, publish cycle.
func newRunCmd(outW io.Writer, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run PIPELINE",
		Short: "Execute the full build matrix",
		Long: `Run expands the matrix defined in the given pipeline file (or directory
of .hcl files), plans one job per combination, and executes every job's
build, test, and publish sequence concurrently. The command fails unless
every job reaches the published state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.NewConfig(app.Config{
				PipelinePath: args[0],
				ProjectDir:   opts.projectDir,
				ArtifactDir:  opts.artifactDir,
				ReportPath:   opts.reportPath,
				Event:        opts.event,
				Branch:       opts.branch,
				LogFormat:    opts.logFormat,
				LogLevel:     opts.logLevel,
				Workers:      opts.workers,
				StatusPort:   opts.statusPort,
			})
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}

			// An operator interrupt is the global abort: it cancels every
			// in-flight job without any of them cancelling each other.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a := app.NewApp(outW, cfg, hcl.NewLoader(), nil)
			return a.Run(ctx)
		},
	}

	cmd.Flags().IntVar(&opts.statusPort, "status-port", 0, "Port for the HTTP status server. 0 disables it.")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write a YAML run summary to this path.")
	cmd.Flags().StringVar(&opts.artifactDir, "artifact-dir", "", "Additional local directory to publish artifacts into.")
	cmd.Flags().StringVar(&opts.event, "event", os.Getenv("BUILDGRID_EVENT"), "Hosting event that started this run, matched against the trigger block.")
	cmd.Flags().StringVar(&opts.branch, "branch", os.Getenv("BUILDGRID_BRANCH"), "Branch the event targets, matched against the trigger block.")

	return cmd
}
