// Package hotkey watches the global keyboard hook for the emergency stop
// combination and streams key events to the fixture recorder.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

var ErrNoKeys = errors.New("hotkey has no usable keys")

// KeyEvent is a key transition with the key already named.
type KeyEvent struct {
	Name string
	Down bool
}

// Stream starts the global hook and forwards named key events until ctx is
// done. Keys without a known name are dropped.
func Stream(ctx context.Context, logger *zap.Logger) <-chan KeyEvent {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("hotkey")
	out := make(chan KeyEvent, 16)

	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				log.Error("panic in keyboard hook", zap.Any("panic", r))
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Error("keyboard hook did not start")
			return
		}
		defer gohook.End()
		log.Debug("keyboard hook started")

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Debug("keyboard hook closed")
					return
				}
				if ev.Kind != gohook.KeyDown && ev.Kind != gohook.KeyUp {
					continue
				}
				name := KeyNameForRawcode(ev.Rawcode)
				if name == "" {
					continue
				}
				select {
				case out <- KeyEvent{Name: name, Down: ev.Kind == gohook.KeyDown}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Listen calls callback every time the combo (e.g. "Ctrl+Alt+Q") is
// completed. It returns once the listener is running.
func Listen(ctx context.Context, combo string, logger *zap.Logger, callback func()) error {
	m, err := NewMatcher(combo)
	if err != nil {
		return err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.Named("hotkey")
	log.Info("stop hotkey registered", zap.String("combo", combo))

	events := Stream(ctx, logger)
	go func() {
		for ev := range events {
			if m.Feed(ev) {
				log.Info("hotkey pressed", zap.String("combo", combo))
				if callback != nil {
					callback()
				}
			}
		}
	}()
	return nil
}

// Matcher tracks which keys of a combination are held.
type Matcher struct {
	mu      sync.Mutex
	keys    []string
	pressed map[string]bool
}

func NewMatcher(combo string) (*Matcher, error) {
	var keys []string
	for _, k := range parseHotkey(combo) {
		if len(keyNameToRawcodes(k)) == 0 {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoKeys, combo)
	}
	return &Matcher{keys: keys, pressed: make(map[string]bool, len(keys))}, nil
}

// Feed records ev and reports whether it completed the combination. The
// held state resets after a match so holding the keys fires once.
func (m *Matcher) Feed(ev KeyEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !ev.Down {
		delete(m.pressed, ev.Name)
		return false
	}
	m.pressed[ev.Name] = true
	for _, k := range m.keys {
		if !m.pressed[k] {
			return false
		}
	}
	clear(m.pressed)
	return true
}

// parseHotkey converts "Ctrl+Alt+q" to normalized key names.
func parseHotkey(combo string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "win", "super":
			part = "cmd"
		case "return":
			part = "enter"
		case "esc":
			part = "escape"
		}
		keys = append(keys, part)
	}
	return keys
}

var special = map[string][]uint16{
	"ctrl":      {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":       {164, 165}, // VK_LMENU, VK_RMENU
	"shift":     {160, 161},
	"cmd":       {91, 92},
	"space":     {32},
	"enter":     {13},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"insert":    {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pagedown":  {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes.
// Modifiers map to both their left and right variants.
func keyNameToRawcodes(name string) []uint16 {
	name = strings.ToLower(strings.TrimSpace(name))
	if codes, ok := special[name]; ok {
		return codes
	}
	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	var n int
	if _, err := fmt.Sscanf(name, "f%d", &n); err == nil && n >= 1 && n <= 24 && name == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)}
	}
	return nil
}

var rawcodeNames = func() map[uint16]string {
	m := make(map[uint16]string)
	for name, codes := range special {
		for _, c := range codes {
			m[c] = name
		}
	}
	for c := 'a'; c <= 'z'; c++ {
		m[uint16(c-'a')+65] = string(c)
	}
	for c := '0'; c <= '9'; c++ {
		m[uint16(c-'0')+48] = string(c)
	}
	for n := 1; n <= 24; n++ {
		m[uint16(111+n)] = fmt.Sprintf("f%d", n)
	}
	return m
}()

// KeyNameForRawcode is the inverse of the virtual key mapping, "" when
// unknown.
func KeyNameForRawcode(code uint16) string {
	return rawcodeNames[code]
}
