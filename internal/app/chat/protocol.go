/*
Package chat contains the core logic for the chat service: the listener,
per-connection sessions, the username registry, message history, broadcast
routing, and the liveness monitor.

This file defines the wire protocol: the newline-terminated signal lines
exchanged with clients, the MESSAGE framing, and candidate name validation.
*/
package chat

import (
	"regexp"
	"strings"

	"tinyirc/internal/pkg/errs"
)

// Server to client signal lines. Each is sent as a single newline-terminated
// UTF-8 line; signals carrying a payload append it after a single space,
// except MESSAGE which uses bracket framing (see FormatMessage).
const (
	SignalSubmitName    = "SUBMIT_NAME"
	SignalNameAccepted  = "NAME_ACCEPTED"
	SignalNameDenied    = "NAME_DENIED"
	SignalMessage       = "MESSAGE"
	SignalPing          = "PING"
	SignalKicked        = "KICKED"
	SignalServerClosing = "SERVER_CLOSING"
	SignalPurge         = "PURGE"
)

// Client to server signal lines. Any inbound line that is not one of these
// is treated as a chat message.
const (
	SignalDisconnect = "DISCONNECT"

	// CancelSentinel is sent by a client abandoning name negotiation.
	CancelSentinel = "\x00"
)

// ServerName is the sender attribution used for service announcements
// (joins, departures, purges, shutdown).
const ServerName = "SERVER"

// MaxNameLength is the upper bound on display name length, in characters.
const MaxNameLength = 32

// namePattern is the character set a display name must match in full.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidateName checks a trimmed candidate display name and returns nil if it
// is acceptable. Checks run in a fixed order so the first failing check
// determines the rejection reason: empty, then too long, then non-alphanumeric.
// Registry collision is checked separately during the claim.
func ValidateName(name string) *errs.CustomError {
	if name == "" {
		return errs.NewError(errs.ErrNameEmpty)
	}

	if len(name) > MaxNameLength {
		return errs.NewError(errs.ErrNameTooLong)
	}

	if !namePattern.MatchString(name) {
		return errs.NewError(errs.ErrNameNotAlphanumeric)
	}

	return nil
}

// FormatMessage builds the MESSAGE[<from>]<text> wire line for a chat
// message, escaping embedded newlines.
func FormatMessage(from, text string) string {
	return SignalMessage + "[" + from + "]" + EscapeText(text)
}

// EscapeText replaces embedded newlines with the literal two-character
// sequence backslash-n so multi-line messages survive line framing.
func EscapeText(text string) string {
	return strings.ReplaceAll(text, "\n", `\n`)
}

// UnescapeText reverses EscapeText.
func UnescapeText(text string) string {
	return strings.ReplaceAll(text, `\n`, "\n")
}
