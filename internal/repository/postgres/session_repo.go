// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"attendance-service/internal/domain/session"
	xerrors "attendance-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, name, venue, starts_at, ends_at,
	entry_window_mins, exit_window_mins, credential_refresh_secs,
	lifecycle_stage, admission_phase, created_by, created_at, updated_at
`

// Create inserts a new session row.
func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	query := `
		INSERT INTO attendance_sessions (
			id, name, venue, starts_at, ends_at,
			entry_window_mins, exit_window_mins, credential_refresh_secs,
			lifecycle_stage, admission_phase, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.ID, s.Name, s.Venue, s.StartsAt, s.EndsAt,
		s.EntryWindowMins, s.ExitWindowMins, s.CredentialRefreshSecs,
		s.LifecycleStage, s.AdmissionPhase, s.CreatedBy,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return xerrors.Unavailable(fmt.Errorf("create session: %w", err))
	}

	return nil
}

// FindByID retrieves a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*session.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions WHERE id = $1`, sessionColumns)

	var s session.Session
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Venue, &s.StartsAt, &s.EndsAt,
		&s.EntryWindowMins, &s.ExitWindowMins, &s.CredentialRefreshSecs,
		&s.LifecycleStage, &s.AdmissionPhase, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("find session: %w", err))
	}

	return &s, nil
}

// List returns all sessions, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]session.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance_sessions ORDER BY created_at DESC`, sessionColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("list sessions: %w", err))
	}
	defer rows.Close()

	sessions := []session.Session{}
	for rows.Next() {
		var s session.Session
		err := rows.Scan(
			&s.ID, &s.Name, &s.Venue, &s.StartsAt, &s.EndsAt,
			&s.EntryWindowMins, &s.ExitWindowMins, &s.CredentialRefreshSecs,
			&s.LifecycleStage, &s.AdmissionPhase, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, xerrors.Unavailable(fmt.Errorf("scan session: %w", err))
		}
		sessions = append(sessions, s)
	}

	return sessions, nil
}

// UpdateLifecycleStage swaps the stage only if the row still holds the
// expected previous stage, so racing operator commands cannot skip states.
func (r *SessionRepository) UpdateLifecycleStage(ctx context.Context, id string, from, to session.LifecycleStage) (bool, error) {
	query := `
		UPDATE attendance_sessions
		SET lifecycle_stage = $1, updated_at = NOW()
		WHERE id = $2 AND lifecycle_stage = $3
	`

	result, err := r.db.Exec(ctx, query, to, id, from)
	if err != nil {
		return false, xerrors.Unavailable(fmt.Errorf("update lifecycle stage: %w", err))
	}

	return result.RowsAffected() > 0, nil
}

// UpdateAdmissionPhase sets the operator phase override. The guard on
// lifecycle_stage keeps ENDED sessions immutable.
func (r *SessionRepository) UpdateAdmissionPhase(ctx context.Context, id string, phase session.AdmissionPhase) (bool, error) {
	query := `
		UPDATE attendance_sessions
		SET admission_phase = $1, updated_at = NOW()
		WHERE id = $2 AND lifecycle_stage <> $3
	`

	result, err := r.db.Exec(ctx, query, phase, id, session.StageEnded)
	if err != nil {
		return false, xerrors.Unavailable(fmt.Errorf("update admission phase: %w", err))
	}

	return result.RowsAffected() > 0, nil
}
