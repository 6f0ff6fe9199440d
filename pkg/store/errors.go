package store

import (
	"errors"
	"fmt"
)

// Kind classifies a store failure.
type Kind int

const (
	// KindTransport is a network failure or timeout.
	KindTransport Kind = iota + 1
	// KindServer is a non-success status or an unexpected body.
	KindServer
	// KindShape is a success response whose JSON does not match the expected layout.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindServer:
		return "server"
	case KindShape:
		return "shape"
	default:
		return "unknown"
	}
}

const maxErrorBody = 512

// Error is returned by every failing store operation.
type Error struct {
	Op         string
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransport:
		return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
	case KindShape:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	// ErrUnsupported is returned for operations a backend cannot perform.
	ErrUnsupported = errors.New("operation not supported by this store")
	// ErrNoPartition is returned when a tab-scoped call is made without a tab.
	ErrNoPartition = errors.New("no project tab selected")
)

// IsTransient reports whether err is a network failure worth retrying by hand.
func IsTransient(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindTransport
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var se *Error
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
