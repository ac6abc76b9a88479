// internal/domain/attendance/entity.go
package attendance

import (
	"database/sql"
	"time"

	"attendance-service/internal/pkg/fingerprint"
)

// Action is the intended effect of an admitted scan.
type Action string

const (
	ActionEntry Action = "ENTRY"
	ActionExit  Action = "EXIT"
)

// PresenceStatus tracks one identity's progress through a session. The
// sequence is a prefix of ENTRY → COMPLETED; it never regresses.
type PresenceStatus string

const (
	StatusEntry     PresenceStatus = "ENTRY"
	StatusCompleted PresenceStatus = "COMPLETED"
)

// PresenceRecord is the permanent attendance ledger row for one
// (session, identity) pair.
type PresenceRecord struct {
	ID                string         `json:"id" db:"id"`
	SessionID         string         `json:"session_id" db:"session_id"`
	IdentityID        string         `json:"identity_id" db:"identity_id"`
	DeviceFingerprint string         `json:"-" db:"device_fingerprint"`
	Status            PresenceStatus `json:"status" db:"status"`
	EnteredAt         time.Time      `json:"entered_at" db:"entered_at"`
	ExitedAt          sql.NullTime   `json:"exited_at,omitempty" db:"exited_at"`
}

// DeviceBinding is the per-session association of a device fingerprint to
// the single identity first seen on it. A second distinct identity on the
// same fingerprint is rejected, never overwritten.
type DeviceBinding struct {
	SessionID   string    `json:"session_id" db:"session_id"`
	Fingerprint string    `json:"-" db:"fingerprint"`
	IdentityID  string    `json:"identity_id" db:"identity_id"`
	BoundAt     time.Time `json:"bound_at" db:"bound_at"`
}

// ScanRequest is the strongly-typed form of one scan, assembled at the edge
// so the engine never inspects loose request fields.
type ScanRequest struct {
	SessionID  string
	Token      string
	IdentityID string
	Device     fingerprint.Inputs
}

// ScanResult reports an accepted scan.
type ScanResult struct {
	Action Action          `json:"action"`
	Record *PresenceRecord `json:"record"`
}
