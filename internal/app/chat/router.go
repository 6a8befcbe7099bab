/*
Package chat contains the core logic for the chat service.

This file defines the Router struct, the message fan-out path. Broadcasts
append to history and go to every registered session, including the sender
(clients have no local echo); direct sends bypass history and target one
recipient, which is how history is replayed to newly joined clients.
*/
package chat

import (
	"github.com/rs/zerolog"

	"tinyirc/internal/pkg/logx"
)

// Router delivers messages to sessions via the registry.
type Router struct {
	// registry resolves recipients.
	registry *Registry

	// history records every broadcast message for replay.
	history *History

	// structured logger with Router context.
	logger zerolog.Logger
}

// NewRouter constructs a Router over the given registry and history.
func NewRouter(registry *Registry, history *History) *Router {
	routerLogger := logx.Logger().With().Str("component", "Router").Logger()

	return &Router{
		registry: registry,
		history:  history,
		logger:   routerLogger,
	}
}

// SendToAll appends (from, text) to history and delivers the formatted
// message line to every registered session, the sender included. Empty text
// is a no-op returning false. A failed delivery to one recipient is logged
// and never aborts delivery to the rest.
func (r *Router) SendToAll(from, text string, log bool) bool {
	if text == "" {
		return false
	}

	if log {
		r.logger.Info().
			Str("from", from).
			Str("to", "everyone").
			Str("text", text).
			Msg("Relaying message")
	}

	r.history.Append(from, text)

	line := FormatMessage(from, text)

	for _, recipient := range r.registry.Snapshot() {
		if err := recipient.send(line); err != nil {
			r.logger.Warn().
				Err(err).
				Str("recipient", recipient.Name()).
				Msg("Delivery failed. Continuing with remaining recipients.")
		}
	}

	return true
}

// SendTo delivers the formatted message line to the single named recipient,
// without touching history. Empty text or an unknown recipient is a no-op
// returning false.
func (r *Router) SendTo(from, to, text string, log bool) bool {
	if text == "" {
		return false
	}

	recipient := r.registry.Get(to)
	if recipient == nil {
		return false
	}

	if log {
		r.logger.Info().
			Str("from", from).
			Str("to", to).
			Str("text", text).
			Msg("Relaying message")
	}

	if err := recipient.send(FormatMessage(from, text)); err != nil {
		r.logger.Warn().
			Err(err).
			Str("recipient", to).
			Msg("Direct delivery failed.")
		return false
	}

	return true
}
