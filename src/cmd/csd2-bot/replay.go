package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"csd2-bot/src/recipe"
	"csd2-bot/src/runtimeinit"
)

var errReplayMismatch = errors.New("replay found mismatches")

func newReplayCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <dir>",
		Short: "Replay recorded fixtures through the mapper",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			fixtures, err := recipe.LoadFixtures(args[0])
			if err != nil {
				return err
			}
			mismatches := recipe.Replay(runtimeinit.NewMapper(cfg, logger), fixtures)

			out := cmd.OutOrStdout()
			for _, mm := range mismatches {
				fmt.Fprintf(out, "FAIL %s\n  want %v\n  got  %v\n", mm.Fixture.Path, mm.Fixture.Expected.KeysToPress, mm.Got)
			}
			fmt.Fprintf(out, "%d/%d fixtures passed\n", len(fixtures)-len(mismatches), len(fixtures))
			if len(mismatches) > 0 {
				return fmt.Errorf("%w: %d of %d", errReplayMismatch, len(mismatches), len(fixtures))
			}
			return nil
		},
	}
}
