// Level generation tool for the pipes puzzle
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCommand creates the root command for the pipegen CLI.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "pipegen",
		Short:        "Generate and inspect pipes levels",
		Long:         "Batch tooling for pipes levels: procedural generation, validation, and board previews.",
		SilenceUsage: true,
	}
	cmd.AddCommand(newGenCommand())
	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newShowCommand())
	return cmd
}
