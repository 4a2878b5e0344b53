package orders

import (
	"errors"
	"fmt"
)

// Kind classifies a workflow failure so the HTTP layer can map it to a
// status code without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidRequest
	KindForbidden
	KindNotFound
	KindInsufficientStock
	KindRateLimited
	KindPaymentFailed
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindRateLimited:
		return "rate_limited"
	case KindPaymentFailed:
		return "payment_failed"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error carries a kind plus a message safe to return to the caller. The
// wrapped cause stays server-side.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ErrDuplicateOrderNumber is returned by OrderStore.Create when the unique
// order number constraint fires at the persistence layer.
var ErrDuplicateOrderNumber = errors.New("duplicate order number")

// KindOf extracts the kind from err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-safe message for err.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "erreur interne"
}
