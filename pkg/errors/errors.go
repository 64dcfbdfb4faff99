package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	// ErrorTypeClassification means no content type or ID could be derived
	// from an input link. Terminal for that link, never retried.
	ErrorTypeClassification ErrorType = "classification"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	// ErrorTypeAPI is a well-formed response carrying a non-zero platform
	// status code. Non-retryable for that call.
	ErrorTypeAPI         ErrorType = "api"
	ErrorTypeSigning     ErrorType = "signing"
	ErrorTypeFilesystem  ErrorType = "filesystem"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a downloader error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error without an associated status code
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeClassification, ErrorTypeAPI, ErrorTypeParsing, ErrorTypeNotFound, ErrorTypeSigning, ErrorTypeFilesystem:
		return false
	default:
		return false
	}
}
