package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"csd2-bot/src/eventloop"
	"csd2-bot/src/failsafe"
	"csd2-bot/src/hotkey"
	"csd2-bot/src/keyboard"
	"csd2-bot/src/notification"
	"csd2-bot/src/ocr"
	"csd2-bot/src/reader"
	"csd2-bot/src/runtimeinit"
	"csd2-bot/src/screenshot"
	"csd2-bot/src/session"
	"csd2-bot/src/singleinstance"
	"csd2-bot/src/tray"
)

func newRunCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the bot until stopped (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.noTray, "no-tray", false, "Do not show the tray icon")
	return cmd
}

// runBot runs the bot. Without a console a startup failure would go
// unseen, so in tray mode it is also shown in a message box.
func runBot(cmd *cobra.Command, opts *cliOptions) error {
	err := startBot(cmd, opts)
	if err != nil && !opts.noTray {
		notification.ShowBlockingError("csd2-bot stopped", err.Error())
	}
	return err
}

func startBot(cmd *cobra.Command, opts *cliOptions) error {
	enableDPIAwareness()

	cfg, logger, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := singleinstance.NewServer(logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Close()
	go func() {
		select {
		case <-srv.StopRequests():
			cancel()
		case <-ctx.Done():
		}
	}()

	engine, err := ocr.NewTesseract(cfg.BotSettings.OCRLanguage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR: %w", err)
	}
	defer engine.Close()

	rd := reader.New(screenshot.Screen{}, engine, cfg, logger)
	ctrl, err := session.NewController(session.Options{
		Reader:      rd,
		Keyboard:    keyboard.New(logger),
		Trigger:     rd,
		Pages:       rd,
		Mapper:      runtimeinit.NewMapper(cfg, logger),
		ConfirmKey:  cfg.Controls.ConfirmKey,
		PageTurnKey: cfg.Controls.PageTurnKey,
		KeyDelay:    cfg.BotSettings.KeyDelayDuration(),
		PageDelay:   cfg.BotSettings.PageDelayDuration(),
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	if cfg.BotSettings.EnableFailsafe {
		go failsafe.New(cfg.BotSettings.FailsafeCornerPx, logger).Watch(ctx, cancel)
	}
	if combo := cfg.Controls.StopHotkey; combo != "" {
		if err := hotkey.Listen(ctx, combo, logger, cancel); err != nil {
			logger.Warn("stop hotkey disabled", zap.Error(err))
		}
	}

	loop := eventloop.New(ctrl, cfg.BotSettings.MainLoopDelayDuration(), logger)
	logger.Info("bot running, move the mouse to the top-left corner or press the stop hotkey to quit",
		zap.String("stop_hotkey", cfg.Controls.StopHotkey))

	if opts.noTray {
		err = loop.Run(ctx)
	} else {
		errCh := make(chan error, 1)
		go func() {
			errCh <- loop.Run(ctx)
			cancel()
		}()
		tray.Run(ctx, statusFor(ctrl), cancel, logger)
		err = <-errCh
	}

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("bot stopped", zap.Int("served", loop.Served()))
	return err
}

func statusFor(ctrl *session.Controller) tray.StatusFunc {
	return func() (string, bool) {
		state, page := ctrl.State()
		if state == session.ProcessingPage {
			return fmt.Sprintf("%s %d", state, page), true
		}
		return state.String(), state != session.WaitingForTrigger
	}
}
