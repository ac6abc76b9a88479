// internal/domain/session/entity.go
package session

import (
	"database/sql"
	"time"
)

// LifecycleStage is the operator-controlled macro state of a session.
type LifecycleStage string

const (
	StageDraft  LifecycleStage = "DRAFT"
	StageReady  LifecycleStage = "READY"
	StageActive LifecycleStage = "ACTIVE"
	StagePaused LifecycleStage = "PAUSED"
	StageEnded  LifecycleStage = "ENDED"
)

// AdmissionPhase is the operator-controlled micro state gating entry/exit
// independent of the clock. A non-CLOSED phase always overrides the
// computed time windows.
type AdmissionPhase string

const (
	PhaseClosed    AdmissionPhase = "CLOSED"
	PhaseEntryOpen AdmissionPhase = "ENTRY_OPEN"
	PhaseExitOpen  AdmissionPhase = "EXIT_OPEN"
)

// transitions is the allowed lifecycle state machine. ENDED is absorbing.
var transitions = map[LifecycleStage][]LifecycleStage{
	StageDraft:  {StageReady, StageActive},
	StageReady:  {StageActive, StageDraft},
	StageActive: {StagePaused, StageEnded},
	StagePaused: {StageActive, StageEnded},
	StageEnded:  {},
}

// CanTransition reports whether moving from one stage to another is allowed.
// A transition to the current stage is treated as a no-op and is permitted.
func CanTransition(from, to LifecycleStage) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStage reports whether s names a known lifecycle stage.
func ValidStage(s LifecycleStage) bool {
	switch s {
	case StageDraft, StageReady, StageActive, StagePaused, StageEnded:
		return true
	}
	return false
}

// ValidPhase reports whether p names a known admission phase.
func ValidPhase(p AdmissionPhase) bool {
	switch p {
	case PhaseClosed, PhaseEntryOpen, PhaseExitOpen:
		return true
	}
	return false
}

// Session represents one attendance-taking occasion.
type Session struct {
	ID    string `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Venue string `json:"venue,omitempty" db:"venue"`

	// Temporal bounds. Either may be unset for purely operator-driven
	// sessions; an unset bound never implies an open window.
	StartsAt sql.NullTime `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt   sql.NullTime `json:"ends_at,omitempty" db:"ends_at"`

	EntryWindowMins       int `json:"entry_window_mins" db:"entry_window_mins"`
	ExitWindowMins        int `json:"exit_window_mins" db:"exit_window_mins"`
	CredentialRefreshSecs int `json:"credential_refresh_secs" db:"credential_refresh_secs"`

	LifecycleStage LifecycleStage `json:"lifecycle_stage" db:"lifecycle_stage"`
	AdmissionPhase AdmissionPhase `json:"admission_phase" db:"admission_phase"`

	CreatedBy string    `json:"created_by" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EntryWindow is how long after StartsAt entries are auto-permitted.
func (s *Session) EntryWindow() time.Duration {
	return time.Duration(s.EntryWindowMins) * time.Minute
}

// ExitWindow is how long before EndsAt exits are auto-permitted.
func (s *Session) ExitWindow() time.Duration {
	return time.Duration(s.ExitWindowMins) * time.Minute
}

// CredentialRefresh is the issuer rotation cadence. It sizes credential
// TTLs; the engine itself does not enforce the cadence.
func (s *Session) CredentialRefresh() time.Duration {
	return time.Duration(s.CredentialRefreshSecs) * time.Second
}

// Ended reports whether the session has reached its terminal stage.
// Ended sessions are immutable.
func (s *Session) Ended() bool {
	return s.LifecycleStage == StageEnded
}
