/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific relay or system errors
both internally within the bridge and in the NOTICE lines reported to IRC clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1002
)

// 2xxx: Directory and Routing Errors
const (
	// ErrUserNotFound indicates that a PRIVMSG nickname target did not resolve
	// to any known remote user. Channel misses carry no code: they are
	// silent no-ops by design.
	ErrUserNotFound = 2102

	// ErrNotRegistered indicates that a session issued a command before
	// completing the NICK/USER handshake.
	ErrNotRegistered = 2201
)

// 3xxx: Platform Delivery Errors
const (
	// ErrChannelDeliveryFailed indicates that the platform adapter rejected a
	// channel message send.
	ErrChannelDeliveryFailed = 3001

	// ErrUserDeliveryFailed indicates that the platform adapter rejected a
	// direct message send.
	ErrUserDeliveryFailed = 3002

	// ErrGatewayDisconnected indicates that the platform gateway connection dropped.
	ErrGatewayDisconnected = 3003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general internal error.
	ErrUnknown = 5000
)
