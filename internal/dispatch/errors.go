package dispatch

import "errors"

// ErrSecurityRejected means the target URL failed the address safety
// check. The message is deliberately generic: it must not leak which
// classification rule rejected the address.
var ErrSecurityRejected = errors.New("URL rejected by security policy")

// ErrNotDispatchable means a rejected classification reached the
// dispatcher, which the boundary handler is supposed to prevent.
var ErrNotDispatchable = errors.New("input was rejected by classification")

// BackendError wraps a failure from the single backend chosen for a
// request. The underlying message surfaces verbatim to the caller: this
// is a single-operator diagnostic tool, not a multi-tenant service.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string { return e.Err.Error() }

func (e *BackendError) Unwrap() error { return e.Err }
