// internal/service/session/session_service.go
package session

import (
	"context"
	"database/sql"
	"fmt"

	"attendance-service/internal/audit"
	"attendance-service/internal/domain/attendance"
	"attendance-service/internal/domain/session"
	xerrors "attendance-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// SessionService is the Session Registry: it owns session creation and the
// operator lifecycle/phase commands, and the administrative reset.
type SessionService struct {
	sessionRepo    session.Repository
	attendanceRepo attendance.Repository
	trail          *audit.Trail
	logger         *zap.Logger
}

func NewSessionService(sessionRepo session.Repository, attendanceRepo attendance.Repository, trail *audit.Trail, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessionRepo:    sessionRepo,
		attendanceRepo: attendanceRepo,
		trail:          trail,
		logger:         logger,
	}
}

const defaultWindowMins = 15

// CreateSession creates a session in DRAFT/CLOSED state.
func (s *SessionService) CreateSession(ctx context.Context, creator string, req *session.CreateSessionRequest) (*session.Session, error) {
	if req.StartsAt != nil && req.EndsAt != nil && !req.EndsAt.After(*req.StartsAt) {
		return nil, fmt.Errorf("%w: ends_at must be after starts_at", xerrors.ErrInvalidInput)
	}

	entryWindow := req.EntryWindowMins
	if entryWindow == 0 {
		entryWindow = defaultWindowMins
	}
	exitWindow := req.ExitWindowMins
	if exitWindow == 0 {
		exitWindow = defaultWindowMins
	}

	sess := &session.Session{
		ID:                    ulid.Make().String(),
		Name:                  req.Name,
		Venue:                 req.Venue,
		EntryWindowMins:       entryWindow,
		ExitWindowMins:        exitWindow,
		CredentialRefreshSecs: req.CredentialRefreshSecs,
		LifecycleStage:        session.StageDraft,
		AdmissionPhase:        session.PhaseClosed,
		CreatedBy:             creator,
	}
	if req.StartsAt != nil {
		sess.StartsAt = sql.NullTime{Time: req.StartsAt.UTC(), Valid: true}
	}
	if req.EndsAt != nil {
		sess.EndsAt = sql.NullTime{Time: req.EndsAt.UTC(), Valid: true}
	}

	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		s.logger.Error("failed to create session", zap.Error(err))
		return nil, err
	}

	s.logger.Info("session created",
		zap.String("session_id", sess.ID),
		zap.String("name", sess.Name),
		zap.String("created_by", creator),
	)

	return sess, nil
}

// GetSession retrieves a session by id.
func (s *SessionService) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return s.sessionRepo.FindByID(ctx, id)
}

// ListSessions returns all sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context) ([]session.Session, error) {
	return s.sessionRepo.List(ctx)
}

// SetLifecycleStage applies an operator lifecycle command. A request for
// the current stage is a no-op success; anything outside the transition
// table fails with ErrInvalidTransition and mutates nothing. ENDED is
// terminal.
func (s *SessionService) SetLifecycleStage(ctx context.Context, id string, to session.LifecycleStage) (*session.Session, error) {
	if !session.ValidStage(to) {
		return nil, fmt.Errorf("%w: unknown stage %q", xerrors.ErrInvalidInput, to)
	}

	sess, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.LifecycleStage == to {
		return sess, nil
	}
	if !session.CanTransition(sess.LifecycleStage, to) {
		return nil, fmt.Errorf("%w: %s -> %s", xerrors.ErrInvalidTransition, sess.LifecycleStage, to)
	}

	swapped, err := s.sessionRepo.UpdateLifecycleStage(ctx, id, sess.LifecycleStage, to)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Lost a race with another operator command; re-read and settle.
		current, err := s.sessionRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.LifecycleStage == to {
			return current, nil
		}
		return nil, fmt.Errorf("%w: %s -> %s", xerrors.ErrInvalidTransition, current.LifecycleStage, to)
	}

	s.logger.Info("session lifecycle changed",
		zap.String("session_id", id),
		zap.String("from", string(sess.LifecycleStage)),
		zap.String("to", string(to)),
	)

	sess.LifecycleStage = to
	return sess, nil
}

// SetAdmissionPhase applies an operator phase command (open-entry,
// open-exit, close). Ended sessions are immutable.
func (s *SessionService) SetAdmissionPhase(ctx context.Context, id string, phase session.AdmissionPhase) (*session.Session, error) {
	if !session.ValidPhase(phase) {
		return nil, fmt.Errorf("%w: unknown phase %q", xerrors.ErrInvalidInput, phase)
	}

	sess, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Ended() {
		return nil, fmt.Errorf("%w: session has ended", xerrors.ErrInvalidTransition)
	}

	updated, err := s.sessionRepo.UpdateAdmissionPhase(ctx, id, phase)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, fmt.Errorf("%w: session has ended", xerrors.ErrInvalidTransition)
	}

	s.logger.Info("session admission phase changed",
		zap.String("session_id", id),
		zap.String("phase", string(phase)),
	)

	sess.AdmissionPhase = phase
	return sess, nil
}

// ResetSession purges the session's attendance ledger, device bindings and
// alert buffer. Administrative use only; the sole deletion path.
func (s *SessionService) ResetSession(ctx context.Context, id string) error {
	if _, err := s.sessionRepo.FindByID(ctx, id); err != nil {
		return err
	}

	if err := s.attendanceRepo.PurgeSession(ctx, id); err != nil {
		s.logger.Error("failed to reset session", zap.String("session_id", id), zap.Error(err))
		return err
	}
	s.trail.Purge(id)

	s.logger.Warn("session attendance reset", zap.String("session_id", id))
	return nil
}
