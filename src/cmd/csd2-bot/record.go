package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"csd2-bot/src/hotkey"
	"csd2-bot/src/ocr"
	"csd2-bot/src/reader"
	"csd2-bot/src/recorder"
	"csd2-bot/src/screenshot"
)

func newRecordCmd(opts *cliOptions) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a human playing one order as replayable fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enableDPIAwareness()
			cfg, logger, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			engine, err := ocr.NewTesseract(cfg.BotSettings.OCRLanguage, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize OCR: %w", err)
			}
			defer engine.Close()

			rd := reader.New(screenshot.Screen{}, engine, cfg, logger)
			rec, err := recorder.New(rd, hotkey.Stream(ctx, logger), cfg, outDir, logger)
			if err != nil {
				return err
			}
			dir, err := rec.Record(ctx)
			if errors.Is(err, recorder.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "recording aborted, nothing saved")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", filepath.Join("tests", "fixtures", "generated"), "Directory for recorded fixtures")
	return cmd
}
