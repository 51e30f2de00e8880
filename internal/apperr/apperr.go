package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies a business failure. Each kind maps to exactly one HTTP
// status at the handler boundary.
type Kind int

const (
	// Validation covers malformed or missing input.
	Validation Kind = iota
	// Unauthorized covers missing or invalid credentials/tokens.
	Unauthorized
	// Forbidden covers a valid identity lacking the required role or account state.
	Forbidden
	// NotFound covers a missing entity, including entities not owned by the
	// caller (ownership failures deliberately look like absence).
	NotFound
	// Conflict covers unique-constraint style duplicates (email, tax_id, bid, order).
	Conflict
	// InvalidState covers a status precondition not being met.
	InvalidState
	// Internal covers unexpected infrastructure failures.
	Internal
)

// HTTPStatus returns the transport code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation, InvalidState:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure carrying paired English/Arabic user-facing
// messages. The wrapped cause, if any, is for server-side logs only and is
// never exposed to clients.
type Error struct {
	Kind    Kind
	Message string
	Arabic  string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error with a bilingual message pair.
func New(kind Kind, msg, msgAr string) *Error {
	return &Error{Kind: kind, Message: msg, Arabic: msgAr}
}

// Wrap classifies an underlying cause with a bilingual message pair.
func Wrap(kind Kind, msg, msgAr string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Arabic: msgAr, Err: err}
}

// Internalf wraps an unexpected failure with the generic bilingual message.
func Internalf(msg, msgAr string, err error) *Error {
	return &Error{Kind: Internal, Message: msg, Arabic: msgAr, Err: err}
}

// From extracts the classified error, or classifies unknown errors as
// Internal with a generic bilingual message so no raw detail leaks.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{
		Kind:    Internal,
		Message: "An unexpected error occurred",
		Arabic:  "حدث خطأ غير متوقع",
		Err:     err,
	}
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
