package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"csd2-bot/src/recipe"
	"csd2-bot/src/runtimeinit"
)

func newMapCmd(opts *cliOptions) *cobra.Command {
	var available []string
	cmd := &cobra.Command{
		Use:   "map [steps...]",
		Short: "Map recipe steps onto the given ingredient slots and print the keys",
		Example: `  csd2-bot map --available "Ketchup,Buns,,Beef" Buns Beef Ketchup
  csd2-bot map --available "Cut,Cheese" "Cut eight times, add Cheese"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			res := runtimeinit.NewMapper(cfg, logger).Map(args, available)
			printMapResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&available, "available", nil, "Comma separated slot labels, in slot order")
	_ = cmd.MarkFlagRequired("available")
	return cmd
}

func printMapResult(w io.Writer, res recipe.MapResult) {
	if res.Special != recipe.SpecialNone {
		fmt.Fprintf(w, "special page: %s\n", res.Special)
	}
	fmt.Fprintf(w, "keys: %s\n", strings.Join(res.Keys, " "))
	if res.Hold != nil {
		fmt.Fprintf(w, "hold: %s for %s\n", res.Hold.Key, res.Hold.Duration)
	}
	for _, m := range res.Matches {
		fmt.Fprintf(w, "  %q -> %q (slot %d, ratio %.2f, score %.2f)\n", m.Target, m.Text, m.Index+1, m.Ratio, m.Score)
	}
	if len(res.Unmatched) > 0 {
		fmt.Fprintf(w, "unmatched: %s\n", strings.Join(res.Unmatched, ", "))
	}
}
