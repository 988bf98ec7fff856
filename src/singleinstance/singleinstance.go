// Package singleinstance keeps one resident bot per user session. The
// resident owns a loopback TCP port; later invocations detect it there and
// can ask it to stop.
package singleinstance

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var ErrAlreadyRunning = errors.New("another csd2-bot instance is already running")

// Server owns the resident port.
type Server interface {
	// Start binds the first port of the configured range. It fails with
	// ErrAlreadyRunning when that port is taken.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// StopRequests delivers one value per STOP received from a client.
	StopRequests() <-chan struct{}
	Close() error
}

func NewServer(logger *zap.Logger) Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return newTcpServer(logger.Named("singleinstance"))
}
