package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugoPeyronCode/pipes.go/pipe"
)

// newCheckCommand creates the check command.
func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <level.json>...",
		Short: "Validate level files",
		Long: `Validate level JSON files without storing them.

Each file is decoded, structurally validated, and built into its
unscrambled board, which is reported as finished (fully connected,
no leaks) or not.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			failures := 0
			for _, path := range args {
				if err := checkLevel(cmd, path); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					failures++
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d file(s) failed validation", failures, len(args))
			}
			return nil
		},
	}
	return cmd
}

func checkLevel(cmd *cobra.Command, path string) error {
	level, err := readLevel(path)
	if err != nil {
		return err
	}
	editor, err := pipe.LoadEditor(level)
	if err != nil {
		return err
	}
	b := editor.Board()
	verdict := "not finished"
	if b.IsComplete() {
		verdict = "finished"
	}
	state := b.State()
	fmt.Fprintf(cmd.OutOrStdout(), "%s: level %q ok, %dx%d grid, %s (%d leaks)\n",
		path, level.ID, level.GridSize, level.GridSize, verdict, len(state.Leaking))
	return nil
}

// readLevel decodes and validates one level file.
func readLevel(path string) (*pipe.Level, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return pipe.DecodeLevel(file)
}
