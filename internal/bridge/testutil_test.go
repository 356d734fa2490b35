package bridge

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"dircd/internal/configs"
	"dircd/internal/directory"
)

// scriptConn is a net.Conn stand-in that captures everything written to it.
// Reads report EOF immediately; tests drive the server's handlers directly
// instead of through a socket read loop.
type scriptConn struct {
	mu  sync.Mutex
	out bytes.Buffer
}

func (c *scriptConn) Read(p []byte) (int, error) { return 0, io.EOF }

func (c *scriptConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

func (c *scriptConn) Close() error                     { return nil }
func (c *scriptConn) LocalAddr() net.Addr              { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (c *scriptConn) RemoteAddr() net.Addr             { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000} }
func (c *scriptConn) SetDeadline(time.Time) error      { return nil }
func (c *scriptConn) SetReadDeadline(time.Time) error  { return nil }
func (c *scriptConn) SetWriteDeadline(time.Time) error { return nil }

// lines returns the wire lines written so far, without terminators.
func (c *scriptConn) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw := strings.TrimSuffix(c.out.String(), "\n")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// reset discards captured output.
func (c *scriptConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.out.Reset()
}

// sendCall records one outbound delivery handed to the fake sender.
type sendCall struct {
	Target string
	Text   string
}

// fakeSender implements platform.Sender and records every delivery.
type fakeSender struct {
	mu           sync.Mutex
	channelSends []sendCall
	userSends    []sendCall
	fail         bool
}

func (f *fakeSender) SendToChannel(ctx context.Context, channelID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("delivery refused")
	}
	f.channelSends = append(f.channelSends, sendCall{Target: channelID, Text: text})
	return nil
}

func (f *fakeSender) SendToUser(ctx context.Context, nickname, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("delivery refused")
	}
	f.userSends = append(f.userSends, sendCall{Target: nickname, Text: text})
	return nil
}

func (f *fakeSender) channelCalls() []sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sendCall(nil), f.channelSends...)
}

func (f *fakeSender) userCalls() []sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sendCall(nil), f.userSends...)
}

// testConfig returns a minimal configuration for handler-level tests.
func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Token:          "secret",
		Port:           6667,
		ServerHostname: "localghost",
	}
}

// seedDirectory builds a directory with one server, two channels, and a
// couple of users in known states.
func seedDirectory() *directory.Directory {
	dir := directory.New()
	dir.Replace([]*directory.Server{
		{
			ID:   "srv-1",
			Name: "Testy_Server",
			Channels: []*directory.Channel{
				{
					ID:   "chan-general",
					Name: "Testy_Server.general",
					Users: []*directory.User{
						{ID: "u1", Nickname: "alice", Mode: directory.ModeVoice},
						{ID: "u2", Nickname: "bob", Mode: directory.ModeOffline},
						{ID: "u3", Nickname: "carol", Mode: directory.ModeOperator},
					},
				},
				{
					ID:   "chan-dev",
					Name: "Testy_Server.dev",
					Users: []*directory.User{
						{ID: "u1", Nickname: "alice", Mode: directory.ModeVoice},
					},
				},
			},
		},
	})
	return dir
}

// newTestServer wires a Server over fakes, skipping the TCP listener.
func newTestServer(cfg *configs.AppConfig, dir *directory.Directory) (*Server, *fakeSender) {
	sender := &fakeSender{}
	srv := NewServer(cfg, dir, NewRegistry(), sender)
	srv.ctx = context.Background()
	return srv, sender
}

// newTestSession builds a session over a scriptConn.
func newTestSession() (*Session, *scriptConn) {
	conn := &scriptConn{}
	return newSession(conn), conn
}

// registeredSession runs the handshake so the session lands in the registry.
func registeredSession(srv *Server, nick string) (*Session, *scriptConn) {
	s, conn := newTestSession()
	srv.handleUnregistered(s, []string{"NICK " + nick, "USER " + nick + " 0 * :" + nick})
	conn.reset()
	return s, conn
}
