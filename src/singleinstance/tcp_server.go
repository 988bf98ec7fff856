package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	stopRequest  = "STOP\n"
	okResponse   = "OK\n"
)

type tcpServer struct {
	mu    sync.Mutex
	lis   net.Listener
	port  int
	stops chan struct{}
	log   *zap.Logger
}

func newTcpServer(logger *zap.Logger) *tcpServer {
	return &tcpServer{stops: make(chan struct{}, 1), log: logger}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	start, _ := getPortRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		if resp, perr := roundTrip(addr, pingRequest, 300*time.Millisecond); perr == nil && resp == pongResponse {
			return fmt.Errorf("%w (port %d)", ErrAlreadyRunning, start)
		}
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.lis = lis
	s.port = start
	s.log.Debug("listening", zap.String("addr", addr))
	go s.acceptLoop(ctx, lis)
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return nil
}

func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *tcpServer) StopRequests() <-chan struct{} { return s.stops }

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		s.handle(c)
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *tcpServer) handle(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(3 * time.Second))
	line, _ := bufio.NewReader(c).ReadString('\n')

	var resp string
	switch line {
	case pingRequest:
		resp = pongResponse
	case stopRequest:
		resp = okResponse
		s.log.Info("stop requested by another instance", zap.String("remote", c.RemoteAddr().String()))
		select {
		case s.stops <- struct{}{}:
		default:
		}
	default:
		s.log.Debug("unknown request", zap.String("line", line))
		return
	}
	w := bufio.NewWriter(c)
	_, _ = w.WriteString(resp)
	_ = w.Flush()
}

func (s *tcpServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis == nil {
		return nil
	}
	err := s.lis.Close()
	s.lis = nil
	s.port = 0
	return err
}
