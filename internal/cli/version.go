package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags.
var version = "dev"

func newVersionCmd(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the buildgrid version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(outW, "buildgrid %s\n", version)
		},
	}
}
