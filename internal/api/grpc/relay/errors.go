package relay

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorKind classifies relay failures.
type ErrorKind int

const (
	// KindUnreachable means the control central could not be reached or refused the message.
	KindUnreachable ErrorKind = iota + 1
	// KindTimeout means an attempt ran out of time.
	KindTimeout
	// KindSerialization means the directive could not be encoded or was rejected as malformed.
	KindSerialization
	// KindQueueFull means the send queue had no room for the directive.
	KindQueueFull
)

// String returns a short name for logs.
func (k ErrorKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindSerialization:
		return "serialization"
	case KindQueueFull:
		return "queue full"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by Client.Send.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Attempts is how many sends were tried.
	Attempts int
	// Err is the last underlying error.
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("relay %s after %d attempt(s): %v", e.Kind, e.Attempts, e.Err)
}

// Unwrap exposes the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a relay error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var relayErr *Error

	return errors.As(err, &relayErr) && relayErr.Kind == kind
}

// classify maps a transport error onto an error kind.
func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	switch status.Code(err) {
	case codes.DeadlineExceeded:
		return KindTimeout
	case codes.InvalidArgument:
		return KindSerialization
	default:
		return KindUnreachable
	}
}

// retryable reports whether another attempt could succeed.
func (k ErrorKind) retryable() bool {
	return k == KindUnreachable || k == KindTimeout
}
