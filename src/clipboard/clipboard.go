// Package clipboard copies diagnostic output for pasting into bug reports
// and fixture files.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
	writeMu  sync.Mutex
)

// Write puts text on the system clipboard, initializing it on first use.
func Write(text string) error {
	initOnce.Do(func() { initErr = clipboard.Init() })
	if initErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", initErr)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
