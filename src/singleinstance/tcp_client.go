package singleinstance

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// RequestStop asks a running resident to stop. It returns false when no
// resident was found.
func RequestStop(ctx context.Context) (bool, error) {
	port, ok := DetectResidentPort(ctx)
	if !ok {
		return false, nil
	}
	addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
	resp, err := roundTrip(addr, stopRequest, timeoutFrom(ctx, 2*time.Second))
	if err != nil {
		return true, fmt.Errorf("stop request to %s: %w", addr, err)
	}
	if resp != okResponse {
		return true, fmt.Errorf("resident on %s refused stop: %q", addr, resp)
	}
	return true, nil
}
