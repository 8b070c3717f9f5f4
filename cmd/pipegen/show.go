package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugoPeyronCode/pipes.go/pipe"
)

// newShowCommand creates the show command.
func newShowCommand() *cobra.Command {
	var scramble int64
	var leaks bool
	cmd := &cobra.Command{
		Use:   "show <level.json>",
		Short: "Print a level's board",
		Long: `Print the board a level file describes.

The board is shown unscrambled by default; --scramble shows the
playable form a client would see after scrambling with the given
seed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, args[0], scramble, leaks)
		},
	}
	cmd.Flags().Int64Var(&scramble, "scramble", 0, "Show the level scrambled with this seed")
	cmd.Flags().BoolVar(&leaks, "leaks", false, "Show leak detail under the board")
	return cmd
}

func runShow(cmd *cobra.Command, path string, scramble int64, leaks bool) error {
	level, err := readLevel(path)
	if err != nil {
		return err
	}
	editor, err := pipe.LoadEditor(level)
	if err != nil {
		return err
	}
	b := editor.Board()
	if scramble != 0 {
		b, err = editor.TestBoard(scramble)
		if err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s", b.String())
	if leaks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s", b.LeaksString())
	}
	return nil
}
