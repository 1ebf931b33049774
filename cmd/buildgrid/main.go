package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/avask/buildgrid/internal/cli"
)

// main is the entrypoint for the buildgrid binary.
func main() {
	// Minimal logger until the app configures the real one.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if err := run(os.Stdout, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command tree; split out of main for testability.
func run(outW io.Writer, args []string) error {
	cmd := cli.NewRootCmd(outW)
	cmd.SetArgs(args)
	return cmd.Execute()
}
