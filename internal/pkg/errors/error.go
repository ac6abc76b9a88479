package xerrors

import (
	"errors"
	"fmt"
)

// Domain error kinds for the admission engine. Handlers translate these to
// transport status codes; nothing below is ever retried internally.
var (
	// ErrNotFound covers unknown sessions and other missing resources.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidCredential means the presented token is missing, expired,
	// or was minted for a different session. No audit entry is written.
	ErrInvalidCredential = errors.New("invalid or expired credential")

	// ErrSessionNotOpen means the session lifecycle stage is not ACTIVE.
	ErrSessionNotOpen = errors.New("session is not open for attendance")

	// ErrAdmissionClosed means the effective admission phase is CLOSED.
	ErrAdmissionClosed = errors.New("attendance window is closed")

	// Presence-record conflicts from the same identity.
	ErrDuplicateEntry   = errors.New("entry already recorded")
	ErrDuplicateExit    = errors.New("exit already recorded")
	ErrAlreadyCompleted = errors.New("attendance already completed")
	ErrNoEntryOnRecord  = errors.New("no entry on record for this session")

	// ErrDeviceConflict is the anti-proxy trigger: the device fingerprint is
	// already bound to a different identity in this session. The only error
	// kind with a mandatory side effect (an audit alert).
	ErrDeviceConflict = errors.New("attendance already marked from this device")

	// ErrInvalidTransition is returned for disallowed lifecycle changes and
	// for any mutation of an ENDED session.
	ErrInvalidTransition = errors.New("invalid session state transition")

	// ErrInvalidInput covers malformed requests rejected at the edge.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable wraps persistence-layer failures so they stay
	// distinguishable from the domain kinds above.
	ErrUnavailable = errors.New("storage unavailable")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Unavailable marks a persistence failure while preserving the cause.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
