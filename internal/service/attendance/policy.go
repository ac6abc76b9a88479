// internal/service/attendance/policy.go
package attendance

import (
	"time"

	"attendance-service/internal/domain/attendance"
	"attendance-service/internal/domain/session"
	xerrors "attendance-service/internal/pkg/errors"
)

// EffectivePhase reconciles the operator phase override with the session's
// time windows. An explicit ENTRY_OPEN/EXIT_OPEN always wins so operators
// can force a state that disagrees with the clock; only a CLOSED phase
// falls back to the schedule. Window bounds are inclusive, and when the
// entry and exit windows overlap the entry window takes precedence. An
// unset temporal bound never implies an open window.
func EffectivePhase(s *session.Session, now time.Time) session.AdmissionPhase {
	if s.AdmissionPhase != session.PhaseClosed {
		return s.AdmissionPhase
	}

	if s.StartsAt.Valid {
		opens := s.StartsAt.Time
		closes := opens.Add(s.EntryWindow())
		if !now.Before(opens) && !now.After(closes) {
			return session.PhaseEntryOpen
		}
	}

	if s.EndsAt.Valid {
		closes := s.EndsAt.Time
		opens := closes.Add(-s.ExitWindow())
		if !now.Before(opens) && !now.After(closes) {
			return session.PhaseExitOpen
		}
	}

	return session.PhaseClosed
}

// Evaluate decides whether a scan arriving now may be admitted, and if so
// whether it is an entry or an exit. The lifecycle stage gates first:
// anything but ACTIVE rejects uniformly with ErrSessionNotOpen.
func Evaluate(s *session.Session, now time.Time) (attendance.Action, error) {
	if s.LifecycleStage != session.StageActive {
		return "", xerrors.ErrSessionNotOpen
	}

	switch EffectivePhase(s, now) {
	case session.PhaseEntryOpen:
		return attendance.ActionEntry, nil
	case session.PhaseExitOpen:
		return attendance.ActionExit, nil
	default:
		return "", xerrors.ErrAdmissionClosed
	}
}
