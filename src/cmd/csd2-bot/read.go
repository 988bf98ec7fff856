package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"csd2-bot/src/clipboard"
	"csd2-bot/src/ocr"
	"csd2-bot/src/reader"
	"csd2-bot/src/recipe"
	"csd2-bot/src/screenshot"
)

func newReadCmd(opts *cliOptions) *cobra.Command {
	var copyOut bool
	cmd := &cobra.Command{
		Use:   "read",
		Short: "OCR the recipe and the ingredient panel once and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enableDPIAwareness()
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			engine, err := ocr.NewTesseract(cfg.BotSettings.OCRLanguage, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize OCR: %w", err)
			}
			defer engine.Close()

			text, err := readOnce(cmd.Context(), reader.New(screenshot.Screen{}, engine, cfg, logger))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			if copyOut {
				return clipboard.Write(text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the result to the clipboard")
	return cmd
}

func readOnce(ctx context.Context, rd *reader.Reader) (string, error) {
	raw, err := rd.ReadRecipe(ctx)
	if err != nil {
		return "", fmt.Errorf("read recipe: %w", err)
	}
	panel, err := rd.ReadIngredientPanel(ctx)
	if err != nil {
		return "", fmt.Errorf("read ingredient panel: %w", err)
	}
	pages, _ := recipe.Consolidate(raw, rd)
	return formatReading(rd.IsRecipeTriggerActive(), raw, pages, panel), nil
}

func formatReading(trigger bool, raw recipe.RecipeData, pages [][]string, panel []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "trigger active: %v\n", trigger)
	b.WriteString("recipe:\n")
	for i := 0; i < recipe.PageCount; i++ {
		fmt.Fprintf(&b, "  page %d: %s\n", i+1, strings.Join(raw[i], ", "))
	}
	fmt.Fprintf(&b, "  extra:  %s\n", strings.Join(raw.Extra(), ", "))
	fmt.Fprintf(&b, "pages to play: %d\n", len(pages))
	for i, steps := range pages {
		fmt.Fprintf(&b, "  %d: %s\n", i+1, strings.Join(steps, ", "))
	}
	b.WriteString("panel:\n")
	for i, label := range panel {
		if label == "" {
			label = "(empty)"
		}
		fmt.Fprintf(&b, "  slot %d: %s\n", i+1, label)
	}
	return b.String()
}
