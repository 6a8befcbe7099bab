/*
Package chat contains the core logic for the chat service.

This file defines the Session struct, the per-connection state machine. A
session is created on accept, negotiates a unique display name, relays chat
messages while active, and runs its cleanup exactly once when it closes from
any state.
*/
package chat

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"tinyirc/internal/pkg/logx"
)

// writeWait is the deadline applied to every wire write, so a stalled peer
// can never block the router, the monitor, or the admin console for long.
const writeWait = 10 * time.Second

// Leave and kick reasons delivered to clients and echoed in departure
// announcements.
const (
	ReasonLeaving     = "leaving"
	ReasonAdminKick   = "kicked by an admin"
	ReasonPingTimeout = "connection timed out"
	ReasonInactivity  = "inactivity"
)

// Session represents one client connection and its server-side state.
// The session's own goroutine drives the state machine; the router, the
// liveness monitor, and the admin console only write to the transport
// (serialized by writeMu) and flip the guarded liveness fields.
type Session struct {
	// id is a unique identifier used for log correlation.
	id string

	// srv is the owning server, giving access to the registry, history,
	// router, and configuration.
	srv *Server

	// underlying transport and its buffered line reader.
	conn   net.Conn
	reader *bufio.Reader

	// flood bounds how fast this session may broadcast chat messages.
	flood *rate.Limiter

	// writeMu serializes all writes to the transport.
	writeMu sync.Mutex

	// mu guards the mutable state below.
	mu sync.Mutex

	// name is the claimed display name, empty until the handshake completes.
	name string

	// connected is the liveness flag. The read loop observes it going false
	// and proceeds through cleanup.
	connected bool

	// leaveReason is appended to the departure announcement when present.
	leaveReason string

	// liveness bookkeeping read and written by the session loop and the monitor.
	connectedAt      time.Time
	lastPingSent     time.Time
	lastPingReceived time.Time
	lastMessage      time.Time

	// closeOnce guarantees cleanup runs exactly once per session.
	closeOnce sync.Once

	// structured logger with session context.
	logger zerolog.Logger
}

// newSession constructs a Session for a freshly accepted connection.
func newSession(srv *Server, conn net.Conn) *Session {
	id := uuid.NewString()
	now := time.Now()

	sessionLogger := logx.Logger().With().
		Str("component", "Session").
		Str("session_id", id).
		Str("remote_addr", conn.RemoteAddr().String()).
		Logger()

	return &Session{
		id:               id,
		srv:              srv,
		conn:             conn,
		reader:           bufio.NewReader(conn),
		flood:            rate.NewLimiter(rate.Limit(srv.cfg.MessageRate), srv.cfg.MessageBurst),
		connected:        true,
		connectedAt:      now,
		lastPingReceived: now,
		lastMessage:      now,
		logger:           sessionLogger,
	}
}

// Run drives the session state machine: handshake, history replay, join
// announcement, relay loop, and finally the once-only cleanup.
func (s *Session) Run() {
	defer s.close()

	s.logger.Info().Msg("Session started. Negotiating display name.")

	if !s.negotiate() {
		return
	}

	s.replayHistory()
	s.srv.router.SendToAll(ServerName, s.Name()+" has joined the server!", true)

	s.relay()
}

// negotiate runs the name handshake. It loops prompting for a candidate name
// until one passes validation and is claimed atomically in the registry, and
// reports whether the session joined. The client may retry indefinitely while
// the service runs; a cancel sentinel or a dead transport abandons the
// handshake without joining.
func (s *Session) negotiate() bool {
	for s.srv.Running() && s.Connected() {
		if err := s.send(SignalSubmitName); err != nil {
			return false
		}

		line, err := s.readLine()
		if err != nil {
			s.logger.Info().Err(err).Msg("Connection lost during name negotiation.")
			return false
		}

		if line == CancelSentinel {
			s.logger.Info().Msg("Name negotiation cancelled by the client.")
			return false
		}

		candidate := strings.TrimSpace(line)

		if validationErr := ValidateName(candidate); validationErr != nil {
			s.logger.Debug().
				Str("candidate", candidate).
				Int("code", validationErr.Code).
				Msg("Candidate name rejected.")

			if err := s.send(SignalNameDenied + " " + validationErr.Message); err != nil {
				return false
			}
			continue
		}

		if claimErr := s.srv.registry.Claim(candidate, s); claimErr != nil {
			s.logger.Debug().Str("candidate", candidate).Msg("Candidate name already in use.")

			if err := s.send(SignalNameDenied + " " + claimErr.Message); err != nil {
				return false
			}
			continue
		}

		s.mu.Lock()
		s.name = candidate
		s.mu.Unlock()

		if err := s.send(SignalNameAccepted + " " + candidate); err != nil {
			return false
		}

		s.logger.Info().Str("name", candidate).Msg("Name accepted. Session is active.")
		return true
	}

	return false
}

// replayHistory re-delivers every recorded message to this client only,
// preserving insertion order and original sender attribution. Replay goes
// through single-recipient sends and never re-appends to history.
func (s *Session) replayHistory() {
	name := s.Name()
	for _, entry := range s.srv.history.Snapshot() {
		s.srv.router.SendTo(entry.From, name, entry.Text, true)
	}
}

// relay is the active-state read loop. PING lines update liveness
// bookkeeping, DISCONNECT leaves gracefully, and everything else is a chat
// message broadcast to all sessions. Read errors close only this session.
func (s *Session) relay() {
	for s.srv.Running() && s.Connected() {
		line, err := s.readLine()
		if err != nil {
			// A kick or shutdown closes the transport underneath us; the
			// recorded reason wins over the resulting read error.
			if s.srv.Running() && s.Connected() {
				s.setLeaveReason(err.Error())
				s.logger.Info().Err(err).Msg("Read failed. Closing session.")
			}
			return
		}

		now := time.Now()

		switch {
		case strings.HasPrefix(line, SignalPing):
			s.mu.Lock()
			s.lastPingReceived = now
			s.mu.Unlock()

		case strings.HasPrefix(line, SignalDisconnect):
			s.setLeaveReason(ReasonLeaving)
			return

		default:
			if s.flood.Allow() {
				s.srv.router.SendToAll(s.Name(), line, true)
			} else {
				s.logger.Warn().Msg("Message flood limit exceeded. Dropping message.")
			}

			s.mu.Lock()
			s.lastMessage = now
			s.mu.Unlock()
		}
	}
}

// close runs the idempotent session cleanup: release the name, announce the
// departure if a name was ever claimed, and close the transport.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.connected = false
		name := s.name
		reason := strings.TrimSpace(s.leaveReason)
		s.mu.Unlock()

		s.srv.registry.Release(name, s)
		s.srv.forget(s)

		if name != "" {
			announcement := name + " has disconnected"
			if reason != "" {
				announcement += " - " + reason
			}
			s.srv.router.SendToAll(ServerName, announcement, true)
		}

		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warn().Err(err).Msg("Transport close failed.")
		}

		s.logger.Info().Str("name", name).Str("reason", reason).Msg("Session closed.")
	})
}

// readLine reads one newline-terminated line, re-arming the idle read
// deadline first, and returns it without its line terminator.
func (s *Session) readLine() (string, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.srv.cfg.ReadTimeout)); err != nil {
		return "", err
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// send writes one line to the transport under the write mutex and a write
// deadline. Safe to call from any goroutine.
func (s *Session) send(line string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	_, err := s.conn.Write([]byte(line + "\n"))
	return err
}

// sendKicked delivers the KICKED reason line, logging delivery failures
// instead of propagating them.
func (s *Session) sendKicked(reason string) {
	if err := s.send(SignalKicked + " " + reason); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to deliver kick signal.")
	}
}

// Kick notifies the client it was kicked, marks the session for
// disconnection, and force-closes the transport to unblock a pending read.
func (s *Session) Kick(reason string) {
	s.logger.Warn().Str("name", s.Name()).Str("reason", reason).Msg("Kicking session.")

	s.sendKicked(reason)
	s.Disconnect(reason)

	if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn().Err(err).Msg("Transport close failed during kick.")
	}
}

// Disconnect marks the session for disconnection with the given reason. The
// session's own loop observes the flag and proceeds through cleanup; callers
// never block on this session's transport.
func (s *Session) Disconnect(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return
	}

	s.connected = false
	s.leaveReason = reason
}

// Purge instructs the client to clear its displayed history.
func (s *Session) Purge(count int) {
	if err := s.send(fmt.Sprintf("%s %d", SignalPurge, count)); err != nil {
		s.logger.Debug().Err(err).Msg("Failed to deliver purge signal.")
	}
}

// setLeaveReason records the reason for the departure announcement.
func (s *Session) setLeaveReason(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leaveReason = reason
}

// Name returns the claimed display name, or empty while negotiating.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.name
}

// Connected reports whether the session is still live.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connected
}

// Active reports whether the session has completed its handshake and is
// still live.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.connected && s.name != ""
}

// RemoteAddr returns the peer address of the underlying transport.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

// FormattedConnectionTime renders how long the session has been connected,
// as "02h 03m 04s", prefixed with a day field only when non-zero.
func (s *Session) FormattedConnectionTime() string {
	seconds := int64(time.Since(s.connectedAt).Seconds())

	sec := seconds % 60
	min := (seconds / 60) % 60
	hours := (seconds / 3600) % 24
	days := seconds / 86400

	if days <= 0 {
		return fmt.Sprintf("%02dh %02dm %02ds", hours, min, sec)
	}
	return fmt.Sprintf("%dd %02dh %02dm %02ds", days, hours, min, sec)
}

// livenessTimes is a consistent snapshot of the liveness timestamps, taken
// by the monitor once per sweep.
type livenessTimes struct {
	pingSent     time.Time
	pingReceived time.Time
	lastMessage  time.Time
}

func (s *Session) liveness() livenessTimes {
	s.mu.Lock()
	defer s.mu.Unlock()

	return livenessTimes{
		pingSent:     s.lastPingSent,
		pingReceived: s.lastPingReceived,
		lastMessage:  s.lastMessage,
	}
}

func (s *Session) stampPingSent(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastPingSent = t
}
