package memento

import (
	"errors"
	"fmt"
)

// Error is returned by memento creation and reconstruction. Callers branch
// on Code; the Is helpers below see through wrapping.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// LogicalType is the type the memento refers to, if known.
	LogicalType string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes memento errors.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates malformed input to a service
	// operation or the codec.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// ErrCodeUnresolvedType indicates a logical type name this process has
	// no specification for.
	ErrCodeUnresolvedType ErrorCode = "UNRESOLVED_TYPE"

	// ErrCodeSerializationFailure indicates a payload that could not be
	// produced or read back.
	ErrCodeSerializationFailure ErrorCode = "SERIALIZATION_FAILURE"

	// ErrCodeLookupMiss indicates a bookmark that no longer resolves.
	ErrCodeLookupMiss ErrorCode = "LOOKUP_MISS"

	// ErrCodeNotRecreatable indicates an object no strategy applies to.
	ErrCodeNotRecreatable ErrorCode = "NOT_RECREATABLE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.LogicalType != "" {
		msg = fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.LogicalType)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code ErrorCode, logicalType string, err error, format string, args ...any) *Error {
	return &Error{
		Code:        code,
		LogicalType: logicalType,
		Message:     fmt.Sprintf(format, args...),
		Err:         err,
	}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var me *Error
	if errors.As(err, &me) {
		return me.Code, true
	}
	return "", false
}

func hasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// IsInvalidArgument returns true if err carries ErrCodeInvalidArgument.
func IsInvalidArgument(err error) bool { return hasCode(err, ErrCodeInvalidArgument) }

// IsUnresolvedType returns true if err carries ErrCodeUnresolvedType.
func IsUnresolvedType(err error) bool { return hasCode(err, ErrCodeUnresolvedType) }

// IsSerializationFailure returns true if err carries ErrCodeSerializationFailure.
func IsSerializationFailure(err error) bool { return hasCode(err, ErrCodeSerializationFailure) }

// IsLookupMiss returns true if err carries ErrCodeLookupMiss.
func IsLookupMiss(err error) bool { return hasCode(err, ErrCodeLookupMiss) }

// IsNotRecreatable returns true if err carries ErrCodeNotRecreatable.
func IsNotRecreatable(err error) bool { return hasCode(err, ErrCodeNotRecreatable) }
