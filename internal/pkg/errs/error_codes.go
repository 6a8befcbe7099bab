/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific protocol or system errors both internally
within the server and in the reason text delivered to clients over the wire.
*/
package errs

// 1xxx: Handshake / Name Negotiation Errors
const (
	// ErrNameEmpty indicates that the candidate name was empty after trimming.
	ErrNameEmpty = 1101

	// ErrNameTooLong indicates that the candidate name exceeded the 32 character limit.
	ErrNameTooLong = 1102

	// ErrNameNotAlphanumeric indicates that the candidate name contained characters
	// outside [A-Za-z0-9].
	ErrNameNotAlphanumeric = 1103

	// ErrNameInUse indicates that another session already holds the candidate name.
	ErrNameInUse = 1104

	// ErrNegotiationCancelled indicates that the client sent the cancel sentinel
	// or dropped the connection before completing the handshake.
	ErrNegotiationCancelled = 1105
)

// 2xxx: Messaging Errors
const (
	// ErrEmptyMessage indicates an attempt to broadcast an empty message.
	ErrEmptyMessage = 2201

	// ErrUnknownRecipient indicates a direct send to a name absent from the registry.
	ErrUnknownRecipient = 2202
)

// 3xxx: Session and Admin Errors
const (
	// ErrUnknownUser indicates an operator command referenced a name that is not connected.
	ErrUnknownUser = 3101

	// ErrUnspecifiedUser indicates an operator command that requires a name was given none.
	ErrUnspecifiedUser = 3102

	// ErrSessionClosed indicates an operation against a session that has already closed.
	ErrSessionClosed = 3103
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000
)
