// Package server implements the TCP acceptor (spec.md C8): binding the
// listening socket, spawning one session worker per accepted connection,
// and coordinating graceful shutdown via golang.org/x/sync/errgroup.
package server

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/go-resp/kvserver/internal/executor"
	"github.com/go-resp/kvserver/internal/session"
)

// Server owns the shared keyspace and pub/sub registry (through
// executor.Server) and the listening socket.
type Server struct {
	Addr        string
	IdleTimeout time.Duration
	Log         *logrus.Logger

	Executor *executor.Server

	nextID   uint64
	clients  sync.Map // id -> net.Conn, for INFO's connected_clients and shutdown
	listener net.Listener
}

// New builds a Server bound to addr, wiring an executor.Server so INFO can
// report the live client count.
func New(addr string, idleTimeout time.Duration, log *logrus.Logger, port int) *Server {
	s := &Server{
		Addr:        addr,
		IdleTimeout: idleTimeout,
		Log:         log,
		Executor:    executor.New(port),
	}
	s.Executor.SetClientCounter(s.clientCount)
	return s
}

func (s *Server) clientCount() int {
	n := 0
	s.clients.Range(func(_, _ interface{}) bool { n++; return true })
	return n
}

// Run binds the listener and serves connections until ctx is cancelled,
// then closes every open connection, waits for their sessions to finish,
// and returns. A non-nil error from Listen
// corresponds to spec.md §6's exit code 2 (I/O error binding the
// listener).
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})
	group.Go(func() error {
		return s.acceptLoop(gctx, ln)
	})

	return group.Wait()
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				// Close every live connection so each session's read loop
				// ends and the deferred wg.Wait can return.
				s.clients.Range(func(_, c interface{}) bool {
					c.(net.Conn).Close()
					return true
				})
				return nil
			default:
				return err
			}
		}

		id := atomic.AddUint64(&s.nextID, 1)
		s.clients.Store(id, conn)

		var entry *logrus.Entry
		if s.Log != nil {
			entry = s.Log.WithField("conn_id", id).WithField("remote", conn.RemoteAddr().String())
			entry.WithField("event", "accept").Info("connection accepted")
		}

		sess := session.New(id, conn, s.Executor, entry, s.IdleTimeout)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.clients.Delete(id)
			sess.Serve()
		}()
	}
}
