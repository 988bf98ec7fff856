// Package keyboard sends synthetic key presses to the game window.
package keyboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"
	"go.uber.org/zap"
)

var ErrUnknownKey = errors.New("unknown key name")

var aliases = map[string]string{
	"return":   "enter",
	"esc":      "escape",
	"spacebar": "space",
	"del":      "delete",
	"bksp":     "backspace",
	"pgup":     "pageup",
	"pgdn":     "pagedown",
	"control":  "ctrl",
	"option":   "alt",
}

var named = map[string]bool{
	"enter": true, "tab": true, "space": true, "escape": true,
	"backspace": true, "delete": true, "insert": true,
	"home": true, "end": true, "pageup": true, "pagedown": true,
	"up": true, "down": true, "left": true, "right": true,
	"shift": true, "ctrl": true, "alt": true, "cmd": true,
}

// KeyName maps a configured key name ("Enter", "A", "F5") to the name the
// input backend understands.
func KeyName(name string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[k]; ok {
		k = a
	}
	switch {
	case len(k) == 1 && k[0] > ' ' && k[0] < 0x7f:
		return k, nil
	case named[k]:
		return k, nil
	case len(k) > 1 && k[0] == 'f':
		if n, err := strconv.Atoi(k[1:]); err == nil && n >= 1 && n <= 24 {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// Robot presses keys through robotgo.
type Robot struct {
	tap    func(key string) error
	toggle func(key, dir string) error
	wait   func(ctx context.Context, d time.Duration) error
	log    *zap.Logger
}

func New(logger *zap.Logger) *Robot {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Robot{
		tap:    func(key string) error { return robotgo.KeyTap(key) },
		toggle: func(key, dir string) error { return robotgo.KeyToggle(key, dir) },
		wait:   wait,
		log:    logger.Named("keyboard"),
	}
}

// Press taps each key in order. It stops at the first key that cannot be
// sent.
func (r *Robot) Press(keys ...string) error {
	for _, name := range keys {
		k, err := KeyName(name)
		if err != nil {
			return err
		}
		if err := r.tap(k); err != nil {
			return fmt.Errorf("press %q: %w", name, err)
		}
		r.log.Debug("key pressed", zap.String("key", k))
	}
	return nil
}

// Hold keeps key down for d or until ctx is done. The key is released in
// both cases, and a cancelled ctx is returned after the release.
func (r *Robot) Hold(ctx context.Context, key string, d time.Duration) error {
	k, err := KeyName(key)
	if err != nil {
		return err
	}
	if err := r.toggle(k, "down"); err != nil {
		return fmt.Errorf("hold %q: %w", key, err)
	}
	waitErr := r.wait(ctx, d)
	if err := r.toggle(k, "up"); err != nil {
		return fmt.Errorf("release %q: %w", key, err)
	}
	if waitErr != nil {
		r.log.Info("key hold interrupted", zap.String("key", k))
		return waitErr
	}
	r.log.Debug("key held", zap.String("key", k), zap.Duration("duration", d))
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
