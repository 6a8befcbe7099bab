/*
Package chat contains the core logic for the chat service.

This file defines the Monitor struct, the liveness sweep. On a fixed period
it pings idle sessions and marks for disconnection any session that missed
pings or has been silent past the inactivity window. The monitor only writes
signals and flips flags; the affected session's own loop performs the cleanup,
so a stalled transport can never wedge the sweep.
*/
package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tinyirc/internal/pkg/logx"
)

// Monitor periodically enforces the ping/timeout protocol over all active
// sessions.
type Monitor struct {
	// srv supplies the registry and the timing configuration.
	srv *Server

	// structured logger with Monitor context.
	logger zerolog.Logger
}

// NewMonitor constructs a Monitor for the given server.
func NewMonitor(srv *Server) *Monitor {
	monitorLogger := logx.Logger().With().Str("component", "Monitor").Logger()

	return &Monitor{srv: srv, logger: monitorLogger}
}

// Run sweeps every SweepPeriod until the context is cancelled or the service
// stops running.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.srv.cfg.SweepPeriod)
	defer ticker.Stop()

	m.logger.Info().Dur("period", m.srv.cfg.SweepPeriod).Msg("Liveness monitor started.")

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Context cancelled. Liveness monitor exiting.")
			return

		case <-ticker.C:
			if !m.srv.Running() {
				m.logger.Info().Msg("Service stopped. Liveness monitor exiting.")
				return
			}

			m.sweep(time.Now())
		}
	}
}

// sweep examines a snapshot of the registry once. Per active session: ping
// when the last ping sent is older than the ping interval; kick when no ping
// was received within the ping timeout; kick when no chat message arrived
// within the inactivity window. The two kick checks are independent.
func (m *Monitor) sweep(now time.Time) {
	cfg := m.srv.cfg

	for _, s := range m.srv.registry.Snapshot() {
		if !s.Active() {
			continue
		}

		t := s.liveness()

		if now.Sub(t.pingSent) > cfg.PingInterval {
			if err := s.send(SignalPing); err != nil {
				m.logger.Debug().Err(err).Str("name", s.Name()).Msg("Ping delivery failed.")
			}
			s.stampPingSent(now)
		}

		if now.Sub(t.pingReceived) > cfg.PingTimeout {
			m.logger.Info().
				Str("name", s.Name()).
				Time("last_ping_received", t.pingReceived).
				Msg("Session missed pings. Marking for disconnection.")

			s.sendKicked(ReasonPingTimeout)
			s.Disconnect(ReasonPingTimeout)
		}

		if now.Sub(t.lastMessage) > cfg.InactivityTimeout {
			m.logger.Info().
				Str("name", s.Name()).
				Time("last_message", t.lastMessage).
				Msg("Session inactive too long. Marking for disconnection.")

			s.sendKicked(ReasonInactivity)
			s.Disconnect(ReasonInactivity)
		}
	}
}
