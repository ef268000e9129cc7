package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials  = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrMissingCredential   = New("MISSING_CREDENTIAL", http.StatusUnauthorized, "missing authorization")
	ErrMalformedCredential = New("MALFORMED_CREDENTIAL", http.StatusUnauthorized, "invalid authorization header")
	ErrInvalidCredential   = New("INVALID_CREDENTIAL", http.StatusUnauthorized, "invalid or expired token")
	ErrEmailTaken          = New("EMAIL_TAKEN", http.StatusUnauthorized, "email is already used")
	ErrInvalidDomain       = New("INVALID_DOMAIN", http.StatusUnauthorized, "invalid domain")
	ErrInvalidUsername     = New("INVALID_USERNAME", http.StatusUnauthorized, "invalid username")
	ErrRegistrationFailed  = New("REGISTRATION_FAILED", http.StatusUnauthorized, "failed to register user")
	ErrUnauthorized        = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict            = New("CONFLICT", http.StatusConflict, "conflict")
	ErrOfferingFull        = New("OFFERING_FULL", http.StatusPreconditionFailed, "offering is already full")
	ErrAlreadyEnrolled     = New("ALREADY_ENROLLED", http.StatusPreconditionFailed, "already enrolled in offering")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss           = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// IsTransient reports whether an error looks like a transport or server
// fault rather than a business rejection. Anything that did not decode into
// an *Error never reached a handler, so it counts as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return true
	}
	return e.Status >= http.StatusInternalServerError
}
