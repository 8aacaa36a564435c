package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// NotFound indicates a referenced organization, folder, project, or path
	// segment does not exist in the loaded data or the remote backend
	NotFound ErrorCode = "NOT_FOUND"
	// AmbiguousMatch indicates more than one folder matched a path's segment
	// sequence (duplicate display names at every level)
	AmbiguousMatch ErrorCode = "AMBIGUOUS_MATCH"
	// PathParseError indicates malformed path syntax
	PathParseError ErrorCode = "PATH_PARSE_ERROR"
	// PermissionDenied indicates the caller lacks visibility into a resource
	PermissionDenied ErrorCode = "PERMISSION_DENIED"
	// RowParseError indicates a structurally malformed asset query row
	RowParseError ErrorCode = "ROW_PARSE_ERROR"
	// UnsupportedResource indicates a resource name with an unrecognized prefix
	UnsupportedResource ErrorCode = "UNSUPPORTED_RESOURCE"
	// CacheUnreadable indicates the cache file could not be read or parsed
	CacheUnreadable ErrorCode = "CACHE_UNREADABLE"
	// QueryInvalid indicates a bulk query filter value failed validation
	QueryInvalid ErrorCode = "QUERY_INVALID"
	// TransportError indicates a generic remote failure
	TransportError ErrorCode = "TRANSPORT_ERROR"
)

// Error represents a gcpath error with a stable code and message
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	cause   error
}

// New creates a new Error with the given code and formatted message
func New(code ErrorCode, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an underlying cause
func Wrap(code ErrorCode, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the error code of err, or the empty string if err does not
// carry one
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err carries the NotFound code
func IsNotFound(err error) bool {
	return CodeOf(err) == NotFound
}

// IsAmbiguousMatch reports whether err carries the AmbiguousMatch code
func IsAmbiguousMatch(err error) bool {
	return CodeOf(err) == AmbiguousMatch
}

// IsPathParseError reports whether err carries the PathParseError code
func IsPathParseError(err error) bool {
	return CodeOf(err) == PathParseError
}

// IsPermissionDenied reports whether err carries the PermissionDenied code
func IsPermissionDenied(err error) bool {
	return CodeOf(err) == PermissionDenied
}

// IsRowParseError reports whether err carries the RowParseError code
func IsRowParseError(err error) bool {
	return CodeOf(err) == RowParseError
}
