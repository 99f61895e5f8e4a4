package model

import "errors"

// Kind classifies a domain error so the transport layer can pick a status.
type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindAuthorization Kind = "FORBIDDEN"
	KindConflict      Kind = "CONFLICT"
	KindUnexpected    Kind = "INTERNAL_ERROR"
)

// Error is a domain error with a stable kind and a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError creates a domain error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of the first domain error in err's chain,
// or KindUnexpected when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Token error codes returned by the auth middleware
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// Shared errors
var (
	ErrInvalidTargetKind = NewError(KindValidation, "invalid target kind")
	ErrTargetNotFound    = NewError(KindNotFound, "target not found")
	ErrConflict          = NewError(KindConflict, "resource conflicts with existing state")
)
