// internal/domain/attendance/repository.go
package attendance

import (
	"context"
	"time"
)

// Repository persists presence records and device bindings.
//
// ApplyScan is the binder's atomic unit: the binding check-and-create and
// the presence check-and-create/transition for one scan execute as a single
// transaction. Two concurrent first-scans from the same new fingerprint
// must result in exactly one binding winning and the other observing
// ErrDeviceConflict. Rejections leave no partial state behind.
type Repository interface {
	// ApplyScan binds the fingerprint and records the entry or exit.
	// It returns the resulting presence record on success, or one of
	// ErrDeviceConflict, ErrDuplicateEntry, ErrAlreadyCompleted,
	// ErrNoEntryOnRecord, ErrDuplicateExit.
	ApplyScan(ctx context.Context, sessionID, identityID, fp string, action Action, now time.Time) (*PresenceRecord, error)

	FindPresence(ctx context.Context, sessionID, identityID string) (*PresenceRecord, error)
	ListBySession(ctx context.Context, sessionID string) ([]PresenceRecord, error)

	// PurgeSession removes all presence records and device bindings for a
	// session. This is the explicit administrative reset, the only
	// sanctioned deletion path for the attendance ledger.
	PurgeSession(ctx context.Context, sessionID string) error
}
