// Package fserr defines the small set of typed error kinds returned across
// cache, coordinator, and host-FS boundaries. Callers distinguish kinds with
// errors.As against *Error, rather than comparing error strings.
package fserr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error for callers that need to react differently to
// different failure modes (e.g. a cache miss is not an error to the user,
// while a permission failure is).
type Kind int

const (
	// NotFound indicates a path or backup name does not exist.
	NotFound Kind = iota + 1
	// Permission indicates missing authentication, or a caller that is
	// neither the owner nor an administrator.
	Permission
	// AlreadyExists indicates a name collision on create.
	AlreadyExists
	// Protocol indicates a cache miss on a Get, decompression of a
	// non-compressed file, or an invalid block id.
	Protocol
	// Internal indicates a host-FS or I/O failure, a panic recovered from a
	// worker-pool task, or another failure outside the kinds above.
	Internal
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case Permission:
		return "permission"
	case AlreadyExists:
		return "already-exists"
	case Protocol:
		return "protocol"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error pairs a Kind with a causal error, wrapped with github.com/pkg/errors
// at the point of origin so that %+v formatting still prints a stack trace.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given Kind, wrapping a message with a stack
// trace captured at the call site.
func New(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Err: errors.New(msg)}
}

// Wrap annotates err with op and kind, capturing a stack trace at the call
// site (even if err already carries one). Returns nil if err is nil.
func Wrap(err error, kind Kind, op string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.WithStack(err)}
}

// Wrapf is Wrap with a formatted message prefixed to err, used for host-FS
// and I/O errors that need caller-supplied context.
func Wrapf(err error, kind Kind, op, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.Wrapf(err, format, args...)}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Kind == kind
	}
	return false
}
