// internal/service/credential/credential_service.go
package credential

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"attendance-service/internal/domain/credential"
	"attendance-service/internal/domain/session"
	xerrors "attendance-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// ttlGrace pads a credential's lifetime past the rotation cadence so a
// scan racing a rotation still lands inside a live window.
const ttlGrace = 5 * time.Second

// CredentialService is the Rotating Credential Issuer. Tokens are opaque
// random values scoped to one session; the rotation cadence itself is
// driven by the QR display polling Mint, not by the engine.
type CredentialService struct {
	store       credential.Store
	sessionRepo session.Repository
	logger      *zap.Logger
	clock       func() time.Time
}

func NewCredentialService(store credential.Store, sessionRepo session.Repository, logger *zap.Logger) *CredentialService {
	return &CredentialService{
		store:       store,
		sessionRepo: sessionRepo,
		logger:      logger,
		clock:       time.Now,
	}
}

// SetClock replaces the issuer's time source. Test helper.
func (s *CredentialService) SetClock(clock func() time.Time) {
	s.clock = clock
}

// Mint issues a fresh credential for the session, with TTL derived from
// the session's refresh interval. Ended sessions no longer mint.
func (s *CredentialService) Mint(ctx context.Context, sessionID string) (*credential.Credential, error) {
	sess, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Ended() {
		return nil, fmt.Errorf("%w: session has ended", xerrors.ErrSessionNotOpen)
	}

	token, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}

	now := s.clock().UTC()
	cred := &credential.Credential{
		Token:     token,
		SessionID: sessionID,
		IssuedAt:  now,
		ExpiresAt: now.Add(sess.CredentialRefresh() + ttlGrace),
	}

	if err := s.store.Save(ctx, cred); err != nil {
		return nil, err
	}

	s.logger.Debug("credential minted",
		zap.String("session_id", sessionID),
		zap.Time("expires_at", cred.ExpiresAt),
	)

	return cred, nil
}

// Validate checks that the presented token belongs to a live credential
// window for the session. Failure aborts the scan before any state
// mutation; a stale token is not a proxy signal and is never audited.
func (s *CredentialService) Validate(ctx context.Context, sessionID, token string) (*credential.Credential, error) {
	if token == "" {
		return nil, xerrors.ErrInvalidCredential
	}

	cred, err := s.store.Find(ctx, sessionID, token)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrInvalidCredential
		}
		return nil, err
	}

	if !cred.Live(s.clock()) {
		return nil, xerrors.ErrInvalidCredential
	}

	return cred, nil
}

// Latest returns the newest live credential for rendering the session's
// current QR code, or ErrNotFound when none is live.
func (s *CredentialService) Latest(ctx context.Context, sessionID string) (*credential.Credential, error) {
	return s.store.Latest(ctx, sessionID)
}

// newToken returns 16 bytes of entropy, hex-encoded.
func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
