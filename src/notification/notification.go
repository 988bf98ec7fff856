// Package notification reports fatal startup problems to a user who launched
// the bot without a console.
package notification

import "strings"

const maxMessageLen = 500

func trimMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	if r := []rune(msg); len(r) > maxMessageLen {
		return string(r[:maxMessageLen]) + "..."
	}
	return msg
}
