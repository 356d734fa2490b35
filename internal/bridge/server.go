/*
This file implements the TCP listener and per-connection lifecycle: accept
loop, keep-alive pings, flood control, and the read loop that feeds the
framer, the registration handler, and the command router.
*/
package bridge

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"dircd/internal/configs"
	"dircd/internal/directory"
	"dircd/internal/pkg/limiter"
	"dircd/internal/pkg/logx"
	"dircd/internal/pkg/randx"
	"dircd/internal/platform"
)

const (
	// pingInterval is how often each connection receives a keep-alive PING.
	pingInterval = 30 * time.Second

	// readBufSize is the per-connection read chunk size.
	readBufSize = 4096

	// Flood control per client IP: sustained lines per second and burst.
	lineRate  rate.Limit = 10
	lineBurst            = 40
)

// Server is the IRC-facing TCP server. One goroutine per connection; all
// cross-connection state lives in the registry and the directory, both
// internally locked.
type Server struct {
	cfg      *configs.AppConfig
	dir      *directory.Directory
	registry *Registry
	sender   platform.Sender

	limiter  *limiter.IPRateLimiter
	listener net.Listener

	// ctx is the server's lifetime context, set at Start. Outbound platform
	// deliveries inherit it.
	ctx context.Context

	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewServer constructs a Server over the given directory, registry, and
// outbound sender.
func NewServer(cfg *configs.AppConfig, dir *directory.Directory, registry *Registry, sender platform.Sender) *Server {
	return &Server{
		cfg:      cfg,
		dir:      dir,
		registry: registry,
		sender:   sender,
		limiter:  limiter.NewIPRateLimiter(lineRate, lineBurst),
		logger:   logx.Logger().With().Str("component", "irc").Logger(),
	}
}

// Start binds the listener and launches the accept loop. It returns once the
// listener is bound; a bind failure is returned so startup can abort.
func (srv *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", srv.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to bind IRC listener on %s: %w", srv.cfg.ListenAddr(), err)
	}
	srv.listener = ln
	srv.ctx = ctx

	srv.logger.Info().Str("addr", ln.Addr().String()).Msg("IRC listener bound.")

	// Unblock Accept when the context ends.
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	srv.wg.Add(1)
	go srv.acceptLoop(ctx)
	return nil
}

// Wait blocks until the accept loop and every connection handler have exited.
func (srv *Server) Wait() {
	srv.wg.Wait()
}

func (srv *Server) acceptLoop(ctx context.Context) {
	defer srv.wg.Done()

	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				srv.logger.Info().Msg("IRC listener shut down.")
			} else {
				srv.logger.Error().Err(err).Msg("Accept failed, listener closing.")
			}
			return
		}

		srv.wg.Add(1)
		go srv.handleConn(ctx, conn)
	}
}

// handleConn owns one client connection from accept to teardown.
func (srv *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer srv.wg.Done()

	s := newSession(conn)
	s.logger.Info().Msg("Client connected.")

	defer func() {
		s.close()
		srv.registry.Remove(s.ID)
		s.logger.Info().Str("nickname", s.Nickname()).Msg("Client disconnected.")
	}()

	go srv.pingLoop(ctx, s)

	buf := make([]byte, readBufSize)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return
		}

		lines := s.framer.Push(buf[:n])
		if len(lines) == 0 {
			continue
		}

		kept := lines[:0]
		for _, line := range lines {
			if !srv.limiter.Allow(s.Hostname()) {
				droppedLines.Inc()
				s.logger.Warn().Msg("Dropping line, client over rate limit.")
				continue
			}
			kept = append(kept, line)
		}

		if !s.Registered() {
			srv.handleUnregistered(s, kept)
			continue
		}
		for _, line := range kept {
			srv.dispatch(s, line)
		}
	}
}

// pingLoop sends a keep-alive PING with a fresh token every interval until
// the connection or the server goes away. Responses are not tracked; dead
// peers surface through the read loop.
func (srv *Server) pingLoop(ctx context.Context, s *Session) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			token, err := randx.PingToken()
			if err != nil {
				s.logger.Warn().Err(err).Msg("Skipping keep-alive ping.")
				continue
			}
			s.Send(pingMsg(token))
		}
	}
}
