/*
Package errs provides custom error types and application-level error code constants.

This file defines the CustomError struct, which implements the standard Go error
interface and carries a business code, a user-facing message, and an HTTP status
code for the few places errors surface over plain HTTP.
*/
package errs

import (
	"fmt"
	"net/http"
	"strings"

	"chatrelay/internal/pkg/logx"
)

// CustomError is the error structure used throughout the application.
// The Message field is what gets acknowledged back to a client connection.
type CustomError struct {
	// Code is the business error code (see constants definition).
	Code int

	// Message is the user-facing error description.
	Message string

	// Status is the HTTP status code used when the error surfaces over HTTP.
	Status int
}

// Error implements the standard Go error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// NewError constructs a *CustomError from a predefined error code.
// Optional details are printf-style arguments for templated messages.
// An unknown code degrades to ErrUnknown rather than panicking.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]

	if !ok {
		logx.Error(
			fmt.Errorf("attempted to create an error with an unknown code in errorMap"),
			"Unknown error code requested",
			"requested_code", code,
		)

		unknownErr := errorMap[ErrUnknown]
		return &CustomError{
			Code:    unknownErr.Code,
			Message: unknownErr.Message,
			Status:  unknownErr.Status,
		}
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusOK
	}

	if code == ErrUnknown && len(details) > 0 {
		if originalErr, ok := details[0].(error); ok {
			logx.Error(
				originalErr,
				"Handling ErrUnknown with underlying error",
			)
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn(
				"Details provided for error, but message template has no formatting placeholders. Details ignored.",
			)
		}
	}

	return &customErr
}
