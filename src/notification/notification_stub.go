//go:build !windows

package notification

import (
	"fmt"
	"os"
)

// ShowBlockingError prints the message on platforms without a message box.
func ShowBlockingError(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, trimMessage(message))
}
