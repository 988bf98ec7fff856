package keyboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"A", "a", false},
		{" s ", "s", false},
		{"Enter", "enter", false},
		{"Return", "enter", false},
		{"Tab", "tab", false},
		{"Esc", "escape", false},
		{"F5", "f5", false},
		{"f24", "f24", false},
		{"F25", "", true},
		{"1", "1", false},
		{"", "", true},
		{"Hyper", "", true},
	}
	for _, tt := range tests {
		got, err := KeyName(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownKey, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func fakeRobot() (*Robot, *[]string) {
	var events []string
	r := New(nil)
	r.tap = func(key string) error {
		events = append(events, "tap "+key)
		return nil
	}
	r.toggle = func(key, dir string) error {
		events = append(events, dir+" "+key)
		return nil
	}
	r.wait = func(ctx context.Context, d time.Duration) error {
		events = append(events, "sleep "+d.String())
		return ctx.Err()
	}
	return r, &events
}

func TestPress(t *testing.T) {
	r, events := fakeRobot()
	require.NoError(t, r.Press("S", "A", "Enter"))
	assert.Equal(t, []string{"tap s", "tap a", "tap enter"}, *events)
}

func TestPressStopsOnUnknownKey(t *testing.T) {
	r, events := fakeRobot()
	err := r.Press("A", "Hyper", "S")
	assert.ErrorIs(t, err, ErrUnknownKey)
	assert.Equal(t, []string{"tap a"}, *events)
}

func TestPressBackendError(t *testing.T) {
	r, _ := fakeRobot()
	boom := errors.New("no display")
	r.tap = func(string) error { return boom }
	assert.ErrorIs(t, r.Press("A"), boom)
}

func TestHold(t *testing.T) {
	r, events := fakeRobot()
	require.NoError(t, r.Hold(context.Background(), "A", 2500*time.Millisecond))
	assert.Equal(t, []string{"down a", "sleep 2.5s", "up a"}, *events)
}

func TestHoldReleasesOnCancel(t *testing.T) {
	r, _ := fakeRobot()
	var events []string
	r.toggle = func(key, dir string) error {
		events = append(events, dir+" "+key)
		return nil
	}
	r.wait = wait

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	err := r.Hold(ctx, "A", 10*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{"down a", "up a"}, events)
}

func TestHoldUnknownKeyNeverPresses(t *testing.T) {
	r, events := fakeRobot()
	assert.ErrorIs(t, r.Hold(context.Background(), "Hyper", time.Second), ErrUnknownKey)
	assert.Empty(t, *events)
}
