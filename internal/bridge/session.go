/*
Package bridge implements the IRC-facing protocol server.

This file defines the Session struct, representing one accepted IRC client
connection: its socket, its identity attributes, and its registration state.
*/
package bridge

import (
	"bufio"
	"net"
	"sync"

	"github.com/ergochat/irc-go/ircmsg"
	"github.com/rs/zerolog"

	"dircd/internal/pkg/logx"
	"dircd/internal/pkg/randx"
)

// Session represents one accepted IRC client connection.
//
// The ID is assigned at accept time and is the registry key for the whole
// connection lifetime; the nickname is a mutable display attribute and is
// deliberately never used as an identity key, so two sessions sharing a
// nickname survive each other's disconnects.
type Session struct {
	// ID is the unique session identifier assigned at accept time.
	ID string

	// conn is the underlying TCP connection.
	conn net.Conn

	// writer buffers outbound wire lines; writeMu serializes writes, since
	// broadcasts and the per-connection handler write concurrently.
	writer  *bufio.Writer
	writeMu sync.Mutex

	// mu protects the identity attributes below, which broadcasts read from
	// other goroutines while the handshake is still filling them in.
	mu         sync.RWMutex
	nickname   string
	username   string
	realname   string
	hostname   string
	registered bool

	// nickOK and userOK track handshake progress. Only the connection's own
	// goroutine touches them.
	nickOK bool
	userOK bool

	// pending accumulates pre-registration lines; the whole queue is
	// re-evaluated on every new chunk until the handshake is satisfied.
	pending []string

	// framer reassembles the connection's byte stream into command lines.
	framer LineFramer

	// done is closed when the connection handler exits, stopping the
	// keep-alive ticker.
	done chan struct{}

	// structured logger with session context.
	logger zerolog.Logger
}

// newSession constructs a Session for an accepted connection.
func newSession(conn net.Conn) *Session {
	id := randx.SessionID()

	hostname := ""
	if addr := conn.RemoteAddr(); addr != nil {
		hostname = addr.String()
		if host, _, err := net.SplitHostPort(hostname); err == nil {
			hostname = host
		}
	}

	s := &Session{
		ID:       id,
		conn:     conn,
		writer:   bufio.NewWriter(conn),
		hostname: hostname,
		done:     make(chan struct{}),
		logger: logx.Logger().With().
			Str("component", "session").
			Str("session_id", id).
			Str("remote", hostname).
			Logger(),
	}
	return s
}

// Nickname returns the session's current nickname ("" before NICK is seen).
func (s *Session) Nickname() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nickname
}

// Username returns the username parsed from the USER line.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Hostname returns the remote host of the connection.
func (s *Session) Hostname() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hostname
}

// Registered reports whether the session completed the NICK/USER handshake.
func (s *Session) Registered() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registered
}

func (s *Session) setNickname(nick string) {
	s.mu.Lock()
	s.nickname = nick
	s.mu.Unlock()
}

func (s *Session) setUserInfo(username, realname string) {
	s.mu.Lock()
	s.username = username
	s.realname = realname
	s.mu.Unlock()
}

func (s *Session) setRegistered() {
	s.mu.Lock()
	s.registered = true
	s.mu.Unlock()
}

// Send serializes a message and writes it to the session's socket.
// Writes are fire-and-forget: a slow or broken client never propagates its
// failure to other sessions; the read loop notices the dead socket instead.
func (s *Session) Send(msg ircmsg.Message) {
	line, err := serialize(msg)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Dropping unserializable outbound message.")
		return
	}
	s.sendRaw(line)
}

// sendRaw writes one already-terminated wire line.
func (s *Session) sendRaw(line string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.writer.WriteString(line); err != nil {
		s.logger.Debug().Err(err).Msg("Write failed; socket likely closed.")
		return
	}
	if err := s.writer.Flush(); err != nil {
		s.logger.Debug().Err(err).Msg("Flush failed; socket likely closed.")
	}
}

// close tears down the socket and stops the keep-alive ticker.
func (s *Session) close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.conn.Close()
}
