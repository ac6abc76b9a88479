// internal/repository/memory/attendance_repo.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"attendance-service/internal/domain/attendance"
	xerrors "attendance-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
)

type bindingKey struct {
	sessionID   string
	fingerprint string
}

type presenceKey struct {
	sessionID  string
	identityID string
}

// AttendanceRepository is an in-memory attendance.Repository. One mutex
// covers the whole ApplyScan sequence, giving it the same all-or-nothing
// behavior as the Postgres transaction.
type AttendanceRepository struct {
	mu       sync.Mutex
	bindings map[bindingKey]attendance.DeviceBinding
	presence map[presenceKey]attendance.PresenceRecord
}

func NewAttendanceRepository() *AttendanceRepository {
	return &AttendanceRepository{
		bindings: make(map[bindingKey]attendance.DeviceBinding),
		presence: make(map[presenceKey]attendance.PresenceRecord),
	}
}

func (r *AttendanceRepository) ApplyScan(_ context.Context, sessionID, identityID, fp string, action attendance.Action, now time.Time) (*attendance.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bk := bindingKey{sessionID: sessionID, fingerprint: fp}
	existing, bound := r.bindings[bk]
	if bound && existing.IdentityID != identityID {
		return nil, xerrors.ErrDeviceConflict
	}

	pk := presenceKey{sessionID: sessionID, identityID: identityID}
	rec, present := r.presence[pk]

	switch action {
	case attendance.ActionEntry:
		if present {
			if rec.Status == attendance.StatusCompleted {
				return nil, xerrors.ErrAlreadyCompleted
			}
			return nil, xerrors.ErrDuplicateEntry
		}

		if !bound {
			r.bindings[bk] = attendance.DeviceBinding{
				SessionID:   sessionID,
				Fingerprint: fp,
				IdentityID:  identityID,
				BoundAt:     now,
			}
		}

		rec = attendance.PresenceRecord{
			ID:                ulid.Make().String(),
			SessionID:         sessionID,
			IdentityID:        identityID,
			DeviceFingerprint: fp,
			Status:            attendance.StatusEntry,
			EnteredAt:         now,
		}
		r.presence[pk] = rec
		out := rec
		return &out, nil

	case attendance.ActionExit:
		if !present {
			return nil, xerrors.ErrNoEntryOnRecord
		}
		if rec.Status == attendance.StatusCompleted {
			return nil, xerrors.ErrDuplicateExit
		}

		if !bound {
			r.bindings[bk] = attendance.DeviceBinding{
				SessionID:   sessionID,
				Fingerprint: fp,
				IdentityID:  identityID,
				BoundAt:     now,
			}
		}

		rec.Status = attendance.StatusCompleted
		rec.ExitedAt.Time = now
		rec.ExitedAt.Valid = true
		r.presence[pk] = rec
		out := rec
		return &out, nil

	default:
		return nil, xerrors.ErrInvalidInput
	}
}

func (r *AttendanceRepository) FindPresence(_ context.Context, sessionID, identityID string) (*attendance.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.presence[presenceKey{sessionID: sessionID, identityID: identityID}]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (r *AttendanceRepository) ListBySession(_ context.Context, sessionID string) ([]attendance.PresenceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []attendance.PresenceRecord{}
	for k, rec := range r.presence {
		if k.sessionID == sessionID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EnteredAt.Before(out[j].EnteredAt)
	})
	return out, nil
}

func (r *AttendanceRepository) PurgeSession(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for k := range r.presence {
		if k.sessionID == sessionID {
			delete(r.presence, k)
		}
	}
	for k := range r.bindings {
		if k.sessionID == sessionID {
			delete(r.bindings, k)
		}
	}
	return nil
}

// BindingFor exposes the bound identity for a (session, fingerprint) pair.
// Test helper; not part of attendance.Repository.
func (r *AttendanceRepository) BindingFor(sessionID, fp string) (attendance.DeviceBinding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[bindingKey{sessionID: sessionID, fingerprint: fp}]
	return b, ok
}
