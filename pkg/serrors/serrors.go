package serrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind. It allows distinguishing semantic kinds from ordinary errors.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a comparable sentinel kind. The name doubles as the error
// code sent to clients.
func NewKind(name string) Kind { return kind{s: name} }

// Default Kinds shared by the route layer and the upstream clients.
var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrBadRequest indicates the client sent invalid data.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrInternal indicates an internal server error.
	ErrInternal = NewKind("INTERNAL")
	// ErrTimeout indicates the operation timed out.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewKind("RATE_LIMITED")
	// ErrConfiguration indicates a required server-side setting is missing.
	// Messages must name the setting, never its value.
	ErrConfiguration = NewKind("CONFIGURATION")
	// ErrProtocol indicates an upstream answered successfully but with a
	// payload we cannot act on (e.g. a created profile without an id).
	ErrProtocol = NewKind("PROTOCOL")
)

// HTTPStatus maps a kind to the status code the route layer responds with.
// Unknown kinds map to 500.
func HTTPStatus(k Kind) int {
	switch k {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrTimeout:
		return http.StatusGatewayTimeout
	case ErrRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// DefaultMessage is the client-facing text used for a kind when the error
// carries no message of its own.
func DefaultMessage(k Kind) string {
	switch k {
	case ErrNotFound:
		return "resource not found"
	case ErrBadRequest:
		return "bad request"
	case ErrTimeout:
		return "request timed out"
	case ErrRateLimited:
		return "too many requests"
	case ErrConfiguration:
		return "server is not configured"
	case ErrProtocol:
		return "unexpected response from the filtering provider"
	default:
		return "internal error"
	}
}

// Describe finds the kind in err's chain and the message safe to show a
// client. Internal errors and errors without a kind never expose their text.
func Describe(err error) (Kind, string) {
	var k Kind
	if !errors.As(err, &k) {
		return ErrInternal, DefaultMessage(ErrInternal)
	}
	if k == ErrInternal {
		return k, DefaultMessage(k)
	}

	var sErr *Error
	if errors.As(err, &sErr) && sErr.msg != "" {
		return k, sErr.msg
	}

	return k, DefaultMessage(k)
}

// Error carries a kind, an optional cause and an optional message. Error()
// renders "<msg>: <cause>", falling back to whichever part is set and then to
// the kind name.
type Error struct {
	kind Kind  // semantic kind sentinel
	err  error // wrapped error (optional)
	msg  string
}

// With returns an error of kind k whose message is shown to clients as is.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap is With plus a cause. Only msg reaches clients.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly returns an error of kind k; clients see DefaultMessage(k).
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		if e.kind != nil {
			return e.kind.Error()
		}

		return "unknown error"
	}
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error { return e.err }

// Is matches against either the semantic kind sentinel or the wrapped error.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	if e.err != nil && errors.Is(e.err, target) {
		return true
	}

	return false
}

// As enables type assertions against either the semantic kind sentinel or the
// wrapped error in the chain.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}
	if e.err != nil && errors.As(e.err, target) {
		return true
	}

	return false
}

// Kind returns the semantic kind sentinel associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the arbitrary message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }
