// Package session implements the per-connection state machine (spec.md
// C7): a framing loop over the socket, the Normal/Subscribed mode switch,
// and the single outbound mailbox that lets command replies and pub/sub
// deliveries share one ordered, non-interleaved emit path.
package session

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-resp/kvserver/internal/executor"
	"github.com/go-resp/kvserver/internal/pubsub"
	"github.com/go-resp/kvserver/internal/redisproto"
	"github.com/go-resp/kvserver/internal/resp"
)

// Mode is the connection's pub/sub mode (spec.md §3).
type Mode int

const (
	Normal Mode = iota
	Subscribed
)

// Session owns one client connection end to end: reading and decoding
// request frames, dispatching them through the executor, and draining its
// outbound mailbox onto the socket.
type Session struct {
	id      uint64
	conn    net.Conn
	server  *executor.Server
	log     *logrus.Entry
	timeout time.Duration

	outbound chan resp.Frame
	execSess *executor.Session

	mode Mode
}

// New wires a freshly-accepted connection into a Session. id must be
// unique for the lifetime of server's pub/sub registry.
func New(id uint64, conn net.Conn, server *executor.Server, log *logrus.Entry, idleTimeout time.Duration) *Session {
	outbound := make(chan resp.Frame, pubsub.OutboundMailboxCapacity)
	return &Session{
		id:       id,
		conn:     conn,
		server:   server,
		log:      log,
		timeout:  idleTimeout,
		outbound: outbound,
		execSess: &executor.Session{ID: id, Mailbox: outbound},
	}
}

// Serve runs the session until the connection closes, the client sends
// QUIT, or a framing error forces shutdown. It always cleans up the
// pub/sub registry's record of this connection before returning.
func (s *Session) Serve() {
	defer s.cleanup()

	writerDone := make(chan struct{})
	go s.drainOutbound(writerDone)

	s.readLoop()

	close(s.outbound)
	<-writerDone
}

func (s *Session) cleanup() {
	s.server.PubSub.Disconnect(s.id)
	s.conn.Close()
	if s.log != nil {
		s.log.WithField("event", "close").Info("connection closed")
	}
}

// drainOutbound is the single writer goroutine spec.md §4.6 and §9's
// design notes require: every frame, whether a command reply or a pub/sub
// delivery, is serialized here so writes are never interleaved.
func (s *Session) drainOutbound(done chan<- struct{}) {
	defer close(done)
	for frame := range s.outbound {
		if _, err := s.conn.Write(resp.Encode(frame)); err != nil {
			if s.log != nil {
				s.log.WithField("event", "io_error").WithError(err).Error("write failed")
			}
			return
		}
	}
}

func (s *Session) readLoop() {
	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)

	for {
		if s.timeout > 0 {
			s.conn.SetReadDeadline(time.Now().Add(s.timeout))
		}

		n, err := s.conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			return
		}

		for {
			frame, consumed, derr := resp.Decode(buf)
			if derr == resp.ErrIncomplete {
				break
			}
			if derr != nil {
				s.safeSend(resp.Err("ERR Protocol error"))
				return
			}
			buf = buf[consumed:]
			if !s.handleFrame(frame) {
				return
			}
		}
	}
}

// handleFrame dispatches one decoded request frame and reports whether the
// session should keep reading.
func (s *Session) handleFrame(frame resp.Frame) bool {
	cmd, cerr := redisproto.Generate(frame)
	if cerr != nil {
		if s.log != nil {
			s.log.WithField("event", "command_error").WithError(cerr).Info("command rejected")
		}
		s.safeSend(resp.Err(cerr.Error()))
		return true
	}

	if s.mode == Subscribed && !redisproto.AllowedWhileSubscribed(cmd.Kind) {
		s.safeSend(resp.Err(redisproto.NewForbiddenInSubscribe(cmd.Name).Error()))
		return true
	}

	for _, reply := range s.server.Execute(cmd, s.execSess) {
		s.safeSend(reply)
	}

	switch {
	case cmd.Kind == redisproto.Quit:
		return false
	case s.server.PubSub.ChannelCount(s.id) > 0:
		s.mode = Subscribed
	default:
		s.mode = Normal
	}
	return true
}

// safeSend posts frame to the outbound mailbox. Unlike pub/sub deliveries
// (pubsub.Registry.Publish, which drops under backpressure), a command
// reply is never dropped: spec.md §8 property 4 requires every successful
// write to be observable, and there is exactly one command in flight per
// connection at a time so the mailbox only ever holds the small backlog of
// pub/sub deliveries ahead of it.
func (s *Session) safeSend(frame resp.Frame) {
	s.outbound <- frame
}
