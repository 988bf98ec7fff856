// Package failsafe stops the bot when the mouse is thrown into the top-left
// corner of the screen.
package failsafe

import (
	"context"
	"time"

	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"
)

const PollInterval = 100 * time.Millisecond

// InCorner reports whether (x,y) lies within cornerPx of the origin.
func InCorner(x, y, cornerPx int) bool {
	return x >= 0 && y >= 0 && x <= cornerPx && y <= cornerPx
}

// Watcher polls the cursor position.
type Watcher struct {
	CornerPx int
	Interval time.Duration
	Locate   func() (int, int)
	Log      *zap.Logger
}

func New(cornerPx int, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		CornerPx: cornerPx,
		Interval: PollInterval,
		Locate:   robotgo.Location,
		Log:      logger.Named("failsafe"),
	}
}

// Watch blocks until ctx is done or the cursor reaches the corner, in which
// case it calls cancel.
func (w *Watcher) Watch(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			x, y := w.Locate()
			if InCorner(x, y, w.CornerPx) {
				w.Log.Warn("failsafe triggered, stopping", zap.Int("x", x), zap.Int("y", y))
				cancel()
				return
			}
		}
	}
}
