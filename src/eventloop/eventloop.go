package eventloop

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"csd2-bot/src/session"
)

// Attempter runs one poll or one full order.
type Attempter interface {
	RunAttempt(ctx context.Context) (session.Outcome, error)
}

// Loop is the single-threaded driver of the bot. Attempts never overlap.
type Loop struct {
	ctrl  Attempter
	delay time.Duration
	log   *zap.Logger

	Sleep func(ctx context.Context, d time.Duration) error

	served int
	failed int
}

func New(ctrl Attempter, delay time.Duration, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{ctrl: ctrl, delay: delay, log: logger.Named("loop"), Sleep: session.Sleep}
}

// Run polls until ctx is cancelled and returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("bot loop started", zap.Duration("delay", l.delay))
	defer func() {
		l.log.Info("bot loop stopped", zap.Int("served", l.served), zap.Int("failed", l.failed))
	}()

	for {
		out, err := l.ctrl.RunAttempt(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case err != nil && errors.Is(err, session.ErrAttemptPanicked):
			l.failed++
			l.log.Error("attempt crashed, resuming", zap.Error(err))
		case err != nil:
			l.failed++
			l.log.Warn("attempt failed, resuming", zap.Error(err))
		case out == session.OutcomeServed:
			l.served++
			l.log.Info("order complete", zap.Int("served", l.served))
		case out == session.OutcomeNoRecipe:
			l.log.Debug("trigger seen without a readable recipe")
		}

		if err := l.Sleep(ctx, l.delay); err != nil {
			return err
		}
	}
}

// Served returns the number of orders served so far. It is only safe to
// call after Run returned.
func (l *Loop) Served() int { return l.served }
