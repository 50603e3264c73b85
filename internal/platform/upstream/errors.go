package upstream

import (
	"errors"
	"fmt"
	"net/http"

	dErrors "onecore/pkg/domain-errors"
)

// ErrorKind is the closed set of failure kinds an adapter call can yield.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindBadRequest ErrorKind = "bad_request"
	KindConflict   ErrorKind = "conflict"
	KindForbidden  ErrorKind = "forbidden"
	KindUnknown    ErrorKind = "unknown"
)

// Kinds lists every ErrorKind.
var Kinds = []ErrorKind{KindNotFound, KindBadRequest, KindConflict, KindForbidden, KindUnknown}

// Error is the failure half of an adapter result. Status is zero when the
// upstream was never reached (dial error, timeout, open circuit).
type Error struct {
	Kind    ErrorKind
	Service string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s [%s]", e.Service, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" status %d", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindFromStatus maps an upstream HTTP status onto an ErrorKind. Every
// status outside the four known ones is unknown.
func KindFromStatus(status int) ErrorKind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindBadRequest
	case http.StatusConflict:
		return KindConflict
	case http.StatusForbidden:
		return KindForbidden
	default:
		return KindUnknown
	}
}

// KindOf returns the kind carried by err. Errors that did not come from an
// adapter are unknown; nil yields "".
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// ToDomain converts an adapter failure into a domain error for the route
// layer. Domain errors pass through unchanged.
func ToDomain(err error) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	var e *Error
	if !errors.As(err, &e) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "internal error")
	}
	msg := e.Message
	switch e.Kind {
	case KindNotFound:
		if msg == "" {
			msg = "resource not found"
		}
		return dErrors.Wrap(err, dErrors.CodeNotFound, msg)
	case KindBadRequest:
		if msg == "" {
			msg = "bad request"
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, msg)
	case KindConflict:
		if msg == "" {
			msg = "conflict"
		}
		return dErrors.Wrap(err, dErrors.CodeConflict, msg)
	case KindForbidden:
		if msg == "" {
			msg = "forbidden"
		}
		return dErrors.Wrap(err, dErrors.CodeForbidden, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, e.Service+" request failed")
	}
}
