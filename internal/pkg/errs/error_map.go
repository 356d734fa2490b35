/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
status API responses and the NOTICE text sent back to IRC sessions.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code
// used when the error surfaces through the status API.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrRateLimitExceeded: {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Directory and Routing Errors
	ErrUserNotFound:  {Code: ErrUserNotFound, Message: "No such user: %s"},
	ErrNotRegistered: {Code: ErrNotRegistered, Message: "Please Identify first"},

	// 3xxx: Platform Delivery Errors
	ErrChannelDeliveryFailed: {Code: ErrChannelDeliveryFailed, Message: "Could not deliver message to channel %s"},
	ErrUserDeliveryFailed:    {Code: ErrUserDeliveryFailed, Message: "Could not deliver message to user %s"},
	ErrGatewayDisconnected:   {Code: ErrGatewayDisconnected, Message: "Lost connection to the remote platform."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
