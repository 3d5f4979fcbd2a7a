package social

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a business failure returned by an actor command.
type ErrorCode string

const (
	CodeAlreadyExists            ErrorCode = "already_exists"
	CodeNotFound                 ErrorCode = "not_found"
	CodeLimitExceeded            ErrorCode = "limit_exceeded"
	CodeInvalidInput             ErrorCode = "invalid_input"
	CodeInsufficientParticipants ErrorCode = "insufficient_participants"
	CodeNoNewParticipants        ErrorCode = "no_new_participants"
)

// Error is a typed business failure. Commands return these as values;
// they are never panics and never wrap infrastructure faults.
type Error struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a typed business error.
func NewError(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// CodeOf extracts the business error code from err, or "" if err is not
// a business error.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err is a business error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
