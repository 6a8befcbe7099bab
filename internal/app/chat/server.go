/*
Package chat contains the core logic for the chat service.

This file defines the Server struct, which owns the listening socket, the
process-wide running flag, and the shared registry/history/router. The accept
loop spawns one goroutine per connection; shutdown flips the flag exactly
once, announces the closure to every client, and releases the listener and
all transports.
*/
package chat

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tinyirc/internal/configs"
	"tinyirc/internal/pkg/limiter"
	"tinyirc/internal/pkg/logx"
)

// Server owns the listener and the shared chat state.
type Server struct {
	// cfg holds the read-only runtime configuration.
	cfg *configs.AppConfig

	// shared mutable state: the username namespace and the replay buffer.
	registry *Registry
	history  *History

	// router fans messages out to sessions.
	router *Router

	// throttle bounds per-IP connection attempts at the accept loop.
	throttle *limiter.IPRateLimiter

	// listener is the owned listening socket, nil until Listen.
	listener net.Listener

	// running is the process-wide service flag. It transitions true to false
	// exactly once, on shutdown or fatal listener error, never back.
	running atomic.Bool

	// sessMu guards the set of every open session, negotiating ones included,
	// so shutdown can release all transports promptly.
	sessMu   sync.Mutex
	sessions map[*Session]struct{}

	// shutdownOnce guarantees the shutdown sequence runs once.
	shutdownOnce sync.Once

	// wg tracks session goroutines for a clean shutdown.
	wg sync.WaitGroup

	// structured logger with Server context.
	logger zerolog.Logger
}

// NewServer constructs a Server with fresh shared state. The service is
// considered running from construction; sessions, the monitor, and the admin
// console all consult Running.
func NewServer(cfg *configs.AppConfig) *Server {
	serverLogger := logx.Logger().With().Str("component", "Server").Logger()

	registry := NewRegistry()
	history := NewHistory()

	s := &Server{
		cfg:      cfg,
		registry: registry,
		history:  history,
		router:   NewRouter(registry, history),
		throttle: limiter.NewIPRateLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptBurst),
		sessions: make(map[*Session]struct{}),
		logger:   serverLogger,
	}

	s.running.Store(true)

	return s
}

// Running reports whether the service is still accepting work.
func (s *Server) Running() bool {
	return s.running.Load()
}

// Registry returns the shared username registry.
func (s *Server) Registry() *Registry {
	return s.registry
}

// History returns the shared message history.
func (s *Server) History() *History {
	return s.history
}

// Router returns the broadcast router.
func (s *Server) Router() *Router {
	return s.router
}

// Listen binds the listening socket on the configured port.
func (s *Server) Listen() error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to bind listener on port %d: %w", s.cfg.Port, err)
	}

	s.listener = l
	return nil
}

// Addr returns the bound listener address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the accept loop until the service stops. Each accepted
// connection gets its own session goroutine. A non-shutdown accept failure
// is fatal to the whole service and triggers the orderly shutdown sequence.
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("The chat server is running.")

	for s.Running() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.Running() || errors.Is(err, net.ErrClosed) {
				break
			}

			s.logger.Error().Err(err).Msg("Listener failed. Shutting the service down.")
			s.Shutdown()
			return err
		}

		remote := conn.RemoteAddr().String()

		if !s.throttle.Allow(remote) {
			s.logger.Warn().Str("remote_addr", remote).Msg("Connection throttled.")
			_ = conn.Close()
			continue
		}

		s.logger.Debug().Str("remote_addr", remote).Msg("Accepted connection.")

		sess := newSession(s, conn)
		s.track(sess)

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			sess.Run()
		}()
	}

	return nil
}

// Shutdown stops the service exactly once: flips the running flag, announces
// the closure, sends SERVER_CLOSING to every named session, closes the
// listener and all transports, and waits for session goroutines to finish.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.logger.Info().Msg("Shutting the chat service down.")

		s.running.Store(false)

		s.router.SendToAll(ServerName, "Server is shutting down", true)

		for _, sess := range s.registry.Snapshot() {
			if err := sess.send(SignalServerClosing); err != nil {
				s.logger.Debug().Err(err).Str("name", sess.Name()).Msg("Failed to deliver closing signal.")
			}
		}

		if s.listener != nil {
			if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				s.logger.Warn().Err(err).Msg("Listener close failed.")
			}
		}

		// Closing every transport, negotiating sessions included, unblocks
		// pending reads so the wait below cannot stall on an idle peer.
		s.sessMu.Lock()
		open := make([]*Session, 0, len(s.sessions))
		for sess := range s.sessions {
			open = append(open, sess)
		}
		s.sessMu.Unlock()

		for _, sess := range open {
			sess.Disconnect("")
			_ = sess.conn.Close()
		}

		s.wg.Wait()

		s.logger.Info().Msg("Chat service stopped.")
	})
}

// track records an open session for shutdown bookkeeping.
func (s *Server) track(sess *Session) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	s.sessions[sess] = struct{}{}
}

// forget drops a closed session from the shutdown bookkeeping.
func (s *Server) forget(sess *Session) {
	s.sessMu.Lock()
	defer s.sessMu.Unlock()

	delete(s.sessions, sess)
}
