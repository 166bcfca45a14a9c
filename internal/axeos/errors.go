package axeos

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"
)

// ErrorKind categorizes a failed device operation.
type ErrorKind int

const (
	// ErrKindUnreachable indicates a connection-level failure (refused,
	// timeout, no route). Re-running the whole device plan may succeed;
	// the client itself never retries.
	ErrKindUnreachable ErrorKind = iota

	// ErrKindUnauthorized indicates the device rejected the request with
	// HTTP 401. Not recoverable without operator intervention.
	ErrKindUnauthorized

	// ErrKindProtocol indicates an unexpected response: a non-200 status on
	// an info fetch, or a 200 body that could not be parsed.
	ErrKindProtocol

	// ErrKindPayloadRejected indicates the device declined an uploaded
	// binary with a 4xx/5xx status other than 401.
	ErrKindPayloadRejected
)

// String returns a short name for the error kind, used in reports.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindUnreachable:
		return "unreachable"
	case ErrKindUnauthorized:
		return "unauthorized"
	case ErrKindProtocol:
		return "protocol error"
	case ErrKindPayloadRejected:
		return "payload rejected"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// DeviceError is the error type returned by all Client operations.
type DeviceError struct {
	Kind       ErrorKind
	Addr       string // device address
	Op         string // operation, e.g. "fetch info", "upload firmware"
	StatusCode int    // HTTP status, 0 for connection-level failures
	Err        error  // underlying error, if any
}

func (e *DeviceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %s (HTTP %d)", e.Op, e.Addr, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Addr, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Addr, e.Kind)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// KindOf returns the error kind for a Client error, or ErrKindProtocol if
// the error is not a DeviceError.
func KindOf(err error) ErrorKind {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Kind
	}
	return ErrKindProtocol
}

// IsUnreachable reports whether err is a connection-level failure.
func IsUnreachable(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Kind == ErrKindUnreachable
}

// IsUnauthorized reports whether the device rejected the request with 401.
func IsUnauthorized(err error) bool {
	var devErr *DeviceError
	return errors.As(err, &devErr) && devErr.Kind == ErrKindUnauthorized
}

// classifyTransportError maps a transport failure onto a DeviceError.
// Timeouts, refused connections and unreachable hosts are all Unreachable;
// anything else from the transport is a protocol-level surprise.
func classifyTransportError(op, addr string, err error) *DeviceError {
	kind := ErrKindProtocol

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	switch {
	case os.IsTimeout(err):
		kind = ErrKindUnreachable
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		kind = ErrKindUnreachable
	default:
		var netErr net.Error
		if errors.As(err, &netErr) {
			kind = ErrKindUnreachable
		}
	}

	return &DeviceError{Kind: kind, Addr: addr, Op: op, Err: err}
}
