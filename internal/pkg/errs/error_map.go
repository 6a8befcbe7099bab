/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct. For the
handshake errors, the Message text is exactly what the client receives after
NAME_DENIED, so changing it changes the wire protocol.
*/
package errs

// errorMap stores the CustomError template corresponding to every application
// error code. The key is the error code (int).
var errorMap = map[int]CustomError{
	// 1xxx: Handshake / Name Negotiation Errors
	ErrNameEmpty:            {Code: ErrNameEmpty, Message: "No name specified"},
	ErrNameTooLong:          {Code: ErrNameTooLong, Message: "Name was longer than the maximum (32) character limit"},
	ErrNameNotAlphanumeric:  {Code: ErrNameNotAlphanumeric, Message: "Name must contain only alphanumeric characters, and no spaces."},
	ErrNameInUse:            {Code: ErrNameInUse, Message: "Username is already in use"},
	ErrNegotiationCancelled: {Code: ErrNegotiationCancelled, Message: "Name negotiation cancelled by the client"},

	// 2xxx: Messaging Errors
	ErrEmptyMessage:     {Code: ErrEmptyMessage, Message: "Message is empty"},
	ErrUnknownRecipient: {Code: ErrUnknownRecipient, Message: "Recipient %q is not connected"},

	// 3xxx: Session and Admin Errors
	ErrUnknownUser:     {Code: ErrUnknownUser, Message: "Unknown user %q"},
	ErrUnspecifiedUser: {Code: ErrUnspecifiedUser, Message: "Unspecified user."},
	ErrSessionClosed:   {Code: ErrSessionClosed, Message: "Session is already closed"},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again."},
}
