package remote

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by every Client call.
var (
	// ErrRemoteUnavailable covers transport failures and non-2xx statuses alike.
	ErrRemoteUnavailable = errors.New("remote notes service unavailable")
	// ErrMalformedResponse is a 2xx response whose body is not the expected JSON.
	ErrMalformedResponse = errors.New("malformed response from remote notes service")
)

// Error describes a failed call against the Remote Notes Service.
type Error struct {
	Op     string // list, get, create, update, delete
	Status int    // HTTP status; 0 when the request never got a response
	Err    error
	kind   error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%s: %s: status %d: %v", e.Op, e.kind, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: %s: status %d", e.Op, e.kind, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.kind)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.kind
}

func unavailable(op string, status int, err error) error {
	return &Error{Op: op, Status: status, Err: err, kind: ErrRemoteUnavailable}
}

func malformed(op string, err error) error {
	return &Error{Op: op, Err: err, kind: ErrMalformedResponse}
}
