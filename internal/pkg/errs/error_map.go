/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct. The Message
strings for content-policy rejections are part of the client-facing contract and
must not change.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:      {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrInvalidFrameFormat: {Code: ErrInvalidFrameFormat, Message: "Unsupported message format."},
	ErrRateLimitExceeded:  {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room Membership Errors
	ErrJoinValidation:      {Code: ErrJoinValidation, Message: "Username and room are required!"},
	ErrDuplicateConnection: {Code: ErrDuplicateConnection, Message: "This connection already joined a room!"},
	ErrUnknownConnection:   {Code: ErrUnknownConnection, Message: "Connection is not registered."},

	// 3xxx: Content Policy Errors
	ErrProfanity:       {Code: ErrProfanity, Message: "Profanity is not allowed!"},
	ErrRestrictedWords: {Code: ErrRestrictedWords, Message: "Your message contains restricted words!"},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
