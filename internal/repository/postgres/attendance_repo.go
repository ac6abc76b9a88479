// internal/repository/postgres/attendance_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendance-service/internal/domain/attendance"
	xerrors "attendance-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

type AttendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ApplyScan runs the binder's whole check-and-write sequence in one
// transaction. The UNIQUE constraints on device_bindings(session_id,
// fingerprint) and presence_records(session_id, identity_id) make each
// check-and-create a single guarded statement: under concurrent first
// scans exactly one writer wins and the loser observes the winner's row.
// Any rejection rolls the transaction back, so rejected scans leave no
// partial state.
func (r *AttendanceRepository) ApplyScan(ctx context.Context, sessionID, identityID, fp string, action attendance.Action, now time.Time) (*attendance.PresenceRecord, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("begin scan tx: %w", err))
	}
	defer tx.Rollback(ctx)

	if err := r.bindDevice(ctx, tx, sessionID, identityID, fp, now); err != nil {
		return nil, err
	}

	var rec *attendance.PresenceRecord
	switch action {
	case attendance.ActionEntry:
		rec, err = r.recordEntry(ctx, tx, sessionID, identityID, fp, now)
	case attendance.ActionExit:
		rec, err = r.completeExit(ctx, tx, sessionID, identityID, now)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", xerrors.ErrInvalidInput, action)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("commit scan tx: %w", err))
	}

	return rec, nil
}

// bindDevice creates the (session, fingerprint) → identity binding or
// observes the existing one. The ON CONFLICT DO UPDATE of an unchanged
// column forces RETURNING to yield the bound identity either way, making
// check-and-create a single atomic statement.
func (r *AttendanceRepository) bindDevice(ctx context.Context, tx pgx.Tx, sessionID, identityID, fp string, now time.Time) error {
	query := `
		INSERT INTO device_bindings (session_id, fingerprint, identity_id, bound_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, fingerprint)
		DO UPDATE SET fingerprint = EXCLUDED.fingerprint
		RETURNING identity_id
	`

	var boundIdentity string
	err := tx.QueryRow(ctx, query, sessionID, fp, identityID, now).Scan(&boundIdentity)
	if err != nil {
		return xerrors.Unavailable(fmt.Errorf("bind device: %w", err))
	}

	if boundIdentity != identityID {
		return xerrors.ErrDeviceConflict
	}

	return nil
}

func (r *AttendanceRepository) recordEntry(ctx context.Context, tx pgx.Tx, sessionID, identityID, fp string, now time.Time) (*attendance.PresenceRecord, error) {
	rec := &attendance.PresenceRecord{
		ID:                ulid.Make().String(),
		SessionID:         sessionID,
		IdentityID:        identityID,
		DeviceFingerprint: fp,
		Status:            attendance.StatusEntry,
		EnteredAt:         now,
	}

	query := `
		INSERT INTO presence_records (id, session_id, identity_id, device_fingerprint, status, entered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id, identity_id) DO NOTHING
	`

	result, err := tx.Exec(ctx, query, rec.ID, rec.SessionID, rec.IdentityID, rec.DeviceFingerprint, rec.Status, rec.EnteredAt)
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("record entry: %w", err))
	}

	if result.RowsAffected() == 0 {
		// A record already exists; distinguish the duplicate kind.
		status, err := r.presenceStatus(ctx, tx, sessionID, identityID)
		if err != nil {
			return nil, err
		}
		if status == attendance.StatusCompleted {
			return nil, xerrors.ErrAlreadyCompleted
		}
		return nil, xerrors.ErrDuplicateEntry
	}

	return rec, nil
}

func (r *AttendanceRepository) completeExit(ctx context.Context, tx pgx.Tx, sessionID, identityID string, now time.Time) (*attendance.PresenceRecord, error) {
	query := `
		UPDATE presence_records
		SET status = $1, exited_at = $2
		WHERE session_id = $3 AND identity_id = $4 AND status = $5
		RETURNING id, session_id, identity_id, device_fingerprint, status, entered_at, exited_at
	`

	var rec attendance.PresenceRecord
	err := tx.QueryRow(ctx, query,
		attendance.StatusCompleted, now, sessionID, identityID, attendance.StatusEntry,
	).Scan(
		&rec.ID, &rec.SessionID, &rec.IdentityID, &rec.DeviceFingerprint,
		&rec.Status, &rec.EnteredAt, &rec.ExitedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		// No ENTRY row to transition; distinguish never-entered from done.
		status, serr := r.presenceStatus(ctx, tx, sessionID, identityID)
		if serr != nil {
			if errors.Is(serr, xerrors.ErrNotFound) {
				return nil, xerrors.ErrNoEntryOnRecord
			}
			return nil, serr
		}
		if status == attendance.StatusCompleted {
			return nil, xerrors.ErrDuplicateExit
		}
		return nil, xerrors.ErrNoEntryOnRecord
	}
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("complete exit: %w", err))
	}

	return &rec, nil
}

func (r *AttendanceRepository) presenceStatus(ctx context.Context, tx pgx.Tx, sessionID, identityID string) (attendance.PresenceStatus, error) {
	var status attendance.PresenceStatus
	err := tx.QueryRow(ctx,
		`SELECT status FROM presence_records WHERE session_id = $1 AND identity_id = $2`,
		sessionID, identityID,
	).Scan(&status)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", xerrors.ErrNotFound
	}
	if err != nil {
		return "", xerrors.Unavailable(fmt.Errorf("presence status: %w", err))
	}

	return status, nil
}

// FindPresence retrieves the presence record for one (session, identity).
func (r *AttendanceRepository) FindPresence(ctx context.Context, sessionID, identityID string) (*attendance.PresenceRecord, error) {
	query := `
		SELECT id, session_id, identity_id, device_fingerprint, status, entered_at, exited_at
		FROM presence_records
		WHERE session_id = $1 AND identity_id = $2
	`

	var rec attendance.PresenceRecord
	err := r.db.Pool().QueryRow(ctx, query, sessionID, identityID).Scan(
		&rec.ID, &rec.SessionID, &rec.IdentityID, &rec.DeviceFingerprint,
		&rec.Status, &rec.EnteredAt, &rec.ExitedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("find presence: %w", err))
	}

	return &rec, nil
}

// ListBySession returns the session's presence ledger, earliest entry first.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]attendance.PresenceRecord, error) {
	query := `
		SELECT id, session_id, identity_id, device_fingerprint, status, entered_at, exited_at
		FROM presence_records
		WHERE session_id = $1
		ORDER BY entered_at ASC
	`

	rows, err := r.db.Pool().Query(ctx, query, sessionID)
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("list presence: %w", err))
	}
	defer rows.Close()

	records := []attendance.PresenceRecord{}
	for rows.Next() {
		var rec attendance.PresenceRecord
		err := rows.Scan(
			&rec.ID, &rec.SessionID, &rec.IdentityID, &rec.DeviceFingerprint,
			&rec.Status, &rec.EnteredAt, &rec.ExitedAt,
		)
		if err != nil {
			return nil, xerrors.Unavailable(fmt.Errorf("scan presence: %w", err))
		}
		records = append(records, rec)
	}

	return records, nil
}

// PurgeSession deletes the session's ledger and bindings in one
// transaction. Only reachable through the administrative reset command.
func (r *AttendanceRepository) PurgeSession(ctx context.Context, sessionID string) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return xerrors.Unavailable(fmt.Errorf("begin purge tx: %w", err))
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM presence_records WHERE session_id = $1`, sessionID); err != nil {
		return xerrors.Unavailable(fmt.Errorf("purge presence records: %w", err))
	}
	if _, err := tx.Exec(ctx, `DELETE FROM device_bindings WHERE session_id = $1`, sessionID); err != nil {
		return xerrors.Unavailable(fmt.Errorf("purge device bindings: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		return xerrors.Unavailable(fmt.Errorf("commit purge tx: %w", err))
	}

	return nil
}
