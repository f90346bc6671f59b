package feed

import (
	"errors"
	"fmt"
)

// ErrorKind classifies fetch failures for the presentation layer.
type ErrorKind string

const (
	// KindScope: no resolvable group, or the caller may not see it.
	KindScope ErrorKind = "scope"
	// KindNetwork: transient transport failure; the caller may offer a retry.
	KindNetwork ErrorKind = "network"
	// KindAuth: credential missing, invalid or expired.
	KindAuth ErrorKind = "auth"
	// KindProtocol: the backend answered with something that is not a feed.
	KindProtocol ErrorKind = "protocol"
)

// Error is returned by Fetcher and carries a classification.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("feed %s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("feed %s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a feed Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Kind == kind
	}
	return false
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ErrNoScope is returned when a fetch is attempted without a group.
var ErrNoScope = newError(KindScope, "join a group to see activity", nil)
