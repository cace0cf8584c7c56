// Package tcp serves the fixed-frame protocol over TCP, one goroutine per
// connection.
package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/dmitrijs2005/groupshare/internal/logging"
	"github.com/dmitrijs2005/groupshare/internal/protocol"
	"github.com/dmitrijs2005/groupshare/internal/server/metrics"
	"github.com/google/uuid"
)

// Handler answers requests and is told when a connection goes away.
type Handler interface {
	Handle(ctx context.Context, conn uuid.UUID, msg protocol.Message) protocol.Message
	Disconnect(ctx context.Context, conn uuid.UUID)
}

type Server struct {
	address string
	handler Handler
	logger  logging.Logger

	mu     sync.Mutex
	conns  map[uuid.UUID]net.Conn
	closed bool
	wg     sync.WaitGroup
}

func NewServer(address string, h Handler, l logging.Logger) *Server {
	return &Server{
		address: address,
		handler: h,
		logger:  l.With("module", "tcp_server"),
		conns:   make(map[uuid.UUID]net.Conn),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled, then closes ln
// and every live connection and waits for their handlers to return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping TCP server...")
		ln.Close()
		s.closeAll()
	}()

	s.logger.Info(ctx, "Starting TCP server", "address", ln.Addr().String())

	var acceptErr error
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				acceptErr = err
			}
			break
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}

	cancel()
	s.wg.Wait()
	return acceptErr
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := uuid.New()
	if !s.track(id, conn) {
		conn.Close()
		return
	}
	defer s.untrack(id)

	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsCurrent.Inc()
	defer metrics.ConnectionsCurrent.Dec()

	s.logger.Info(ctx, "connection accepted", "conn", id, "remote", conn.RemoteAddr().String())
	defer func() {
		s.handler.Disconnect(context.WithoutCancel(ctx), id)
		s.logger.Info(ctx, "connection closed", "conn", id)
	}()

	for {
		msg, err := protocol.ReadMessage(conn)

		var resp protocol.Message
		switch {
		case err == nil:
			resp = s.handler.Handle(ctx, id, msg)
		case errors.Is(err, protocol.ErrBadLength):
			s.logger.Warn(ctx, "malformed frame", "conn", id, "error", err)
			resp = protocol.Status(protocol.StatusBadRequest)
		case errors.Is(err, io.EOF):
			return
		default:
			if ctx.Err() == nil {
				s.logger.Debug(ctx, "read failed", "conn", id, "error", err)
			}
			return
		}

		if err := protocol.WriteMessage(conn, resp); err != nil {
			s.logger.Error(ctx, "write failed", "conn", id, "opcode", resp.Opcode, "error", err)
			return
		}
	}
}

// track registers conn for shutdown. It reports false once the server is
// closing.
func (s *Server) track(id uuid.UUID, conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[id] = conn
	return true
}

func (s *Server) untrack(id uuid.UUID) {
	s.mu.Lock()
	conn, ok := s.conns[id]
	delete(s.conns, id)
	s.mu.Unlock()
	if ok {
		conn.Close()
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, conn := range s.conns {
		conn.Close()
	}
}

// Connections returns the number of live connections. Only tests use it.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
