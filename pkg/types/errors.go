package types

import (
	"errors"
	"fmt"
)

// Kind classifies a runtime failure into the taxonomy used throughout
// vortex: permission, cgroup, namespace, config, and generic io/system
// failures.
type Kind string

const (
	KindPermissionDenied Kind = "permission_denied"
	KindCGroup           Kind = "cgroup"
	KindNamespace        Kind = "namespace"
	KindInvalidConfig    Kind = "invalid_config"
	KindIO               Kind = "io"
	KindSystem           Kind = "system"
)

// Error is the single tagged error type returned by every vortex
// component. It wraps an optional underlying error so callers can still
// use errors.Is/errors.As against the original cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// NewPermissionDeniedError reports that operation could not be performed
// because the caller lacks the required capability.
func NewPermissionDeniedError(operation string) *Error {
	return newError(KindPermissionDenied, fmt.Sprintf("permission denied: %s", operation), nil)
}

// NewCGroupError wraps a non-permission cgroup directory/file failure.
func NewCGroupError(message string, err error) *Error {
	return newError(KindCGroup, message, err)
}

// NewNamespaceError wraps an unshare/sethostname/proc-remount failure.
func NewNamespaceError(message string, err error) *Error {
	return newError(KindNamespace, message, err)
}

// NewInvalidConfigError reports a rejected container-id or out-of-range
// resource limit.
func NewInvalidConfigError(message string) *Error {
	return newError(KindInvalidConfig, message, nil)
}

// NewIOError wraps an underlying OS I/O failure.
func NewIOError(message string, err error) *Error {
	return newError(KindIO, message, err)
}

// NewSystemError wraps an unexpected underlying OS failure outside the
// other categories.
func NewSystemError(message string, err error) *Error {
	return newError(KindSystem, message, err)
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsPermissionDenied reports whether err is a permission-denied error.
func IsPermissionDenied(err error) bool { return IsKind(err, KindPermissionDenied) }

// IsCGroup reports whether err is a cgroup error.
func IsCGroup(err error) bool { return IsKind(err, KindCGroup) }

// IsNamespace reports whether err is a namespace error.
func IsNamespace(err error) bool { return IsKind(err, KindNamespace) }

// IsInvalidConfig reports whether err is an invalid-config error.
func IsInvalidConfig(err error) bool { return IsKind(err, KindInvalidConfig) }
