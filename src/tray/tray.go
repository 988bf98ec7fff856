// Package tray shows the bot state in the system tray and offers a Quit
// item.
package tray

import (
	"context"
	"time"

	"github.com/getlantern/systray"
	"go.uber.org/zap"
)

const (
	title        = "CSD2 Bot"
	pollInterval = 500 * time.Millisecond
)

// StatusFunc reports the text shown in the tooltip and whether an order is
// in progress.
type StatusFunc func() (string, bool)

// Run blocks in the tray event loop until ctx is done or Quit is clicked.
// onQuit is called when the user picks Quit.
func Run(ctx context.Context, status StatusFunc, onQuit func(), logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("tray")
	systray.Run(func() { onReady(ctx, status, onQuit, log) }, func() { log.Debug("tray exited") })
}

func onReady(ctx context.Context, status StatusFunc, onQuit func(), log *zap.Logger) {
	busy := false
	systray.SetIcon(Icon(busy))
	systray.SetTitle(title)
	systray.SetTooltip(title)

	mStatus := systray.AddMenuItem("Starting...", "Current bot state")
	mStatus.Disable()
	mQuit := systray.AddMenuItem("Quit", "Stop the bot")

	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		last := ""
		for {
			select {
			case <-ctx.Done():
				systray.Quit()
				return
			case <-mQuit.ClickedCh:
				log.Info("quit requested from tray")
				if onQuit != nil {
					onQuit()
				}
				systray.Quit()
				return
			case <-ticker.C:
				text, nowBusy := status()
				if text != last {
					last = text
					systray.SetTooltip(title + ": " + text)
					mStatus.SetTitle(text)
				}
				if nowBusy != busy {
					busy = nowBusy
					systray.SetIcon(Icon(busy))
				}
			}
		}
	}()
}
