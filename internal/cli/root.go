package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// options holds the global flag values shared by all subcommands.
type options struct {
	logFormat   string
	logLevel    string
	workers     int
	statusPort  int
	reportPath  string
	artifactDir string
	projectDir  string
	event       string
	branch      string
}

// validate checks flag values that cobra cannot constrain on its own.
func (o *options) validate() error {
	o.logFormat = strings.ToLower(o.logFormat)
	if o.logFormat != "text" && o.logFormat != "json" {
		return &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	o.logLevel = strings.ToLower(o.logLevel)
	switch o.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if o.workers < 1 {
		return &ExitError{Code: 2, Message: fmt.Sprintf("invalid workers: %d, must be at least 1", o.workers)}
	}
	return nil
}

// NewRootCmd builds the buildgrid command tree writing to outW.
func NewRootCmd(outW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "buildgrid",
		Short: "Cross-platform build-test-release matrix orchestrator",
		Long: `buildgrid expands a declarative build matrix, compiles a binary for every
OS/toolchain combination, runs the test suite per toolchain, and publishes
each artifact under a deterministic per-combination name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.validate()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format: 'text' or 'json'.")
	pf.StringVar(&opts.logLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn', or 'error'.")
	pf.IntVar(&opts.workers, "workers", 4, "Number of concurrent workers executing jobs.")
	pf.StringVarP(&opts.projectDir, "project-dir", "C", ".", "Directory of the project being built.")

	root.SetOut(outW)
	root.SetErr(outW)

	root.AddCommand(newRunCmd(outW, opts))
	root.AddCommand(newPlanCmd(outW, opts))
	root.AddCommand(newVersionCmd(outW))

	return root
}
