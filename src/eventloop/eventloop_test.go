package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"csd2-bot/src/session"
)

type step struct {
	out session.Outcome
	err error
}

type scripted struct {
	steps  []step
	calls  int
	cancel context.CancelFunc
}

func (s *scripted) RunAttempt(ctx context.Context) (session.Outcome, error) {
	if s.calls >= len(s.steps) {
		s.cancel()
		return session.OutcomeIdle, ctx.Err()
	}
	st := s.steps[s.calls]
	s.calls++
	return st.out, st.err
}

func TestRunCountsServedOrders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctrl := &scripted{cancel: cancel, steps: []step{
		{out: session.OutcomeIdle},
		{out: session.OutcomeServed},
		{err: errors.New("ocr failed")},
		{err: session.ErrAttemptPanicked},
		{out: session.OutcomeNoRecipe},
		{out: session.OutcomeServed},
	}}

	l := New(ctrl, time.Second, nil)
	var sleeps int
	l.Sleep = func(ctx context.Context, d time.Duration) error {
		assert.Equal(t, time.Second, d)
		sleeps++
		return ctx.Err()
	}

	err := l.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, l.Served())
	assert.Equal(t, 2, l.failed)
	assert.Equal(t, 6, sleeps)
	assert.Equal(t, 6, ctrl.calls)
}

func TestRunStopsDuringSleep(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ctrl := &scripted{cancel: cancel, steps: make([]step, 1000)}

	done := make(chan error, 1)
	go func() { done <- New(ctrl, time.Hour, nil).Run(ctx) }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
