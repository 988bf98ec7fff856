package singleinstance

import (
	"os"
	"strconv"
)

const (
	defaultPortStart = 49600
	defaultPortEnd   = 49610

	PortStartEnvVar = "CSD2_BOT_PORT_START"
	PortEndEnvVar   = "CSD2_BOT_PORT_END"
)

// getPortRange returns the inclusive port range, falling back to defaults
// when the variables are unset or invalid and clamping to [1024, 65535].
func getPortRange() (int, int) {
	start := defaultPortStart
	end := defaultPortEnd
	if v := os.Getenv(PortStartEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			start = n
		}
	}
	if v := os.Getenv(PortEndEnvVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			end = n
		}
	}
	if start < 1024 {
		start = 1024
	}
	if end > 65535 {
		end = 65535
	}
	if end < start {
		start, end = end, start
	}
	return start, end
}
