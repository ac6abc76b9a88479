// internal/service/attendance/attendance_service.go
package attendance

import (
	"context"
	"fmt"
	"time"

	"attendance-service/internal/audit"
	auditdom "attendance-service/internal/domain/audit"
	"attendance-service/internal/domain/attendance"
	xerrors "attendance-service/internal/pkg/errors"
	"attendance-service/internal/pkg/fingerprint"

	"attendance-service/internal/domain/session"
	credentialsvc "attendance-service/internal/service/credential"

	"go.uber.org/zap"
)

// AlertBroadcaster fans a recorded alert out to live subscribers of a
// session (the operator dashboard feed). May be nil when no feed is wired.
type AlertBroadcaster interface {
	BroadcastAlert(sessionID string, alert auditdom.Alert)
}

// AttendanceService drives one scan end to end: credential check, admission
// policy, then the atomic device-binding and presence write. Scans run
// concurrently; the serialization point is the repository's per-fingerprint
// and per-identity conflict handling.
type AttendanceService struct {
	sessionRepo    session.Repository
	attendanceRepo attendance.Repository
	credentials    *credentialsvc.CredentialService
	trail          *audit.Trail
	feed           AlertBroadcaster
	logger         *zap.Logger
	clock          func() time.Time
}

func NewAttendanceService(
	sessionRepo session.Repository,
	attendanceRepo attendance.Repository,
	credentials *credentialsvc.CredentialService,
	trail *audit.Trail,
	feed AlertBroadcaster,
	logger *zap.Logger,
) *AttendanceService {
	return &AttendanceService{
		sessionRepo:    sessionRepo,
		attendanceRepo: attendanceRepo,
		credentials:    credentials,
		trail:          trail,
		feed:           feed,
		logger:         logger,
		clock:          time.Now,
	}
}

// SetClock replaces the service's time source. Test helper.
func (s *AttendanceService) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Scan admits or rejects one scan. Every rejection is terminal for this
// attempt and side-effect-free, except DeviceConflict which always records
// exactly one audit alert before returning.
func (s *AttendanceService) Scan(ctx context.Context, req *attendance.ScanRequest) (*attendance.ScanResult, error) {
	if req.SessionID == "" || req.IdentityID == "" {
		return nil, fmt.Errorf("%w: session and identity are required", xerrors.ErrInvalidInput)
	}

	sess, err := s.sessionRepo.FindByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	// Bad tokens abort before any state mutation.
	if _, err := s.credentials.Validate(ctx, req.SessionID, req.Token); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	action, err := Evaluate(sess, now)
	if err != nil {
		s.logger.Debug("scan rejected by admission policy",
			zap.String("session_id", req.SessionID),
			zap.String("stage", string(sess.LifecycleStage)),
			zap.Error(err),
		)
		return nil, err
	}

	fp := fingerprint.Derive(req.Device)

	rec, err := s.attendanceRepo.ApplyScan(ctx, req.SessionID, req.IdentityID, fp, action, now)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrDeviceConflict) {
			alert := s.trail.Record(req.SessionID, fp)
			if s.feed != nil {
				s.feed.BroadcastAlert(req.SessionID, alert)
			}
			s.logger.Warn("blocked proxy attempt",
				zap.String("session_id", req.SessionID),
				zap.String("device_id", alert.DeviceID),
			)
		}
		return nil, err
	}

	s.logger.Info("scan accepted",
		zap.String("session_id", req.SessionID),
		zap.String("identity_id", req.IdentityID),
		zap.String("action", string(action)),
	)

	return &attendance.ScanResult{Action: action, Record: rec}, nil
}

// Presence returns the caller's own ledger row for a session.
func (s *AttendanceService) Presence(ctx context.Context, sessionID, identityID string) (*attendance.PresenceRecord, error) {
	return s.attendanceRepo.FindPresence(ctx, sessionID, identityID)
}

// Ledger returns the session's presence records for operator review.
func (s *AttendanceService) Ledger(ctx context.Context, sessionID string) ([]attendance.PresenceRecord, error) {
	if _, err := s.sessionRepo.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListBySession(ctx, sessionID)
}

// Alerts returns the session's blocked-proxy alerts, most recent first.
func (s *AttendanceService) Alerts(ctx context.Context, sessionID string) ([]auditdom.Alert, error) {
	if _, err := s.sessionRepo.FindByID(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.trail.List(sessionID), nil
}
