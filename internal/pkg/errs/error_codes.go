/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or policy errors both internally
and in acknowledgements sent back to client connections.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrInvalidFrameFormat indicates that an inbound WebSocket frame was not valid JSON
	// or did not match the expected event envelope.
	ErrInvalidFrameFormat = 1002

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1003
)

// 2xxx: Room Membership Errors
const (
	// ErrJoinValidation indicates an empty username or room name at join time.
	ErrJoinValidation = 2101

	// ErrDuplicateConnection indicates a join attempt on a connection that is
	// already registered. A connection must disconnect before it can rejoin.
	ErrDuplicateConnection = 2102

	// ErrUnknownConnection indicates an event arrived for a connection that is
	// not registered (raced past its own disconnect). Never surfaced to clients.
	ErrUnknownConnection = 2103
)

// 3xxx: Content Policy Errors
const (
	// ErrProfanity indicates the message text matched the general profanity dictionary.
	ErrProfanity = 3001

	// ErrRestrictedWords indicates the message text matched the custom restricted-word list.
	ErrRestrictedWords = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
