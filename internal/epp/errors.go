package epp

import (
	"errors"
	"fmt"
)

// The client surfaces two error classes. ConnectionError covers transport and
// session failures (dial, TLS, login, timeout); it never implies anything
// about a domain or contact's state at the registry. RegistryError carries a
// non-success EPP result code and the registry's diagnostic note; callers
// decide per-operation whether a given code is an expected business fact
// (object exists, object does not exist) or a genuine failure.

// errMalformedResponse marks a frame that decoded but carried no usable
// response; the registry-side outcome is unknown.
var errMalformedResponse = errors.New("malformed epp response")

// ConnectionError indicates the registry could not be reached or the session
// failed. Transient and retryable; must never be interpreted as object state.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("registry connection error during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is connection-class.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// RegistryError carries a non-success EPP result code and the registry's
// machine-readable note, preserved verbatim for operator diagnosis.
type RegistryError struct {
	Code int
	Note string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry error %d: %s", e.Code, e.Note)
}

// IsObjectExists reports whether err is the idempotent-create signal
// (EPP 2302, object exists).
func IsObjectExists(err error) bool {
	var re *RegistryError
	return errors.As(err, &re) && re.Code == CodeObjectExists
}

// IsObjectDoesNotExist reports whether err is EPP 2303 (object does not
// exist), which lookups interpret as "not present at the registry".
func IsObjectDoesNotExist(err error) bool {
	var re *RegistryError
	return errors.As(err, &re) && re.Code == CodeObjectDoesNotExist
}
