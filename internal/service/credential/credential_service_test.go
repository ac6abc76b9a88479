// internal/service/credential/credential_service_test.go
package credential_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"attendance-service/internal/domain/session"
	xerrors "attendance-service/internal/pkg/errors"
	"attendance-service/internal/repository/memory"
	svc "attendance-service/internal/service/credential"

	"go.uber.org/zap"
)

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newIssuer(t *testing.T) (*svc.CredentialService, *memory.CredentialStore, *memory.SessionRepository, *time.Time) {
	t.Helper()

	store := memory.NewCredentialStore()
	sessionRepo := memory.NewSessionRepository()
	issuer := svc.NewCredentialService(store, sessionRepo, zap.NewNop())

	now := base
	store.SetClock(func() time.Time { return now })
	issuer.SetClock(func() time.Time { return now })

	return issuer, store, sessionRepo, &now
}

func seedSession(t *testing.T, repo *memory.SessionRepository, stage session.LifecycleStage) string {
	t.Helper()

	sess := &session.Session{
		ID:                    "sess-1",
		Name:                  "CSC 301 Lecture",
		CredentialRefreshSecs: 30,
		LifecycleStage:        stage,
		AdmissionPhase:        session.PhaseClosed,
	}
	if err := repo.Create(context.Background(), sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return sess.ID
}

func TestMintAndValidate(t *testing.T) {
	issuer, _, sessionRepo, _ := newIssuer(t)
	sessID := seedSession(t, sessionRepo, session.StageActive)
	ctx := context.Background()

	cred, err := issuer.Mint(ctx, sessID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if cred.Token == "" {
		t.Fatal("expected a non-empty token")
	}
	if cred.SessionID != sessID {
		t.Fatalf("expected session scoping, got %q", cred.SessionID)
	}
	// TTL covers the refresh cadence plus grace.
	if !cred.ExpiresAt.After(cred.IssuedAt.Add(30 * time.Second)) {
		t.Fatalf("expected expiry past the refresh interval, got %s", cred.ExpiresAt)
	}

	got, err := issuer.Validate(ctx, sessID, cred.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.Token != cred.Token {
		t.Fatalf("expected the minted credential back, got %q", got.Token)
	}
}

func TestMintedTokensAreUnique(t *testing.T) {
	issuer, _, sessionRepo, _ := newIssuer(t)
	sessID := seedSession(t, sessionRepo, session.StageActive)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		cred, err := issuer.Mint(ctx, sessID)
		if err != nil {
			t.Fatalf("mint %d: %v", i, err)
		}
		if seen[cred.Token] {
			t.Fatalf("duplicate token minted: %s", cred.Token)
		}
		seen[cred.Token] = true
	}
}

func TestMintRefusedForEndedSession(t *testing.T) {
	issuer, _, sessionRepo, _ := newIssuer(t)
	sessID := seedSession(t, sessionRepo, session.StageEnded)

	if _, err := issuer.Mint(context.Background(), sessID); !errors.Is(err, xerrors.ErrSessionNotOpen) {
		t.Fatalf("expected ErrSessionNotOpen, got %v", err)
	}
}

func TestMintUnknownSession(t *testing.T) {
	issuer, _, _, _ := newIssuer(t)

	if _, err := issuer.Mint(context.Background(), "no-such"); !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	issuer, _, sessionRepo, _ := newIssuer(t)
	sessID := seedSession(t, sessionRepo, session.StageActive)
	otherID := "sess-2"
	if err := sessionRepo.Create(context.Background(), &session.Session{
		ID: otherID, Name: "Other", CredentialRefreshSecs: 30, LifecycleStage: session.StageActive,
	}); err != nil {
		t.Fatalf("seed other session: %v", err)
	}
	ctx := context.Background()

	cred, err := issuer.Mint(ctx, sessID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		token     string
	}{
		{"empty token", sessID, ""},
		{"unknown token", sessID, "deadbeef"},
		{"token scoped to another session", otherID, cred.Token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Validate(ctx, tt.sessionID, tt.token); !errors.Is(err, xerrors.ErrInvalidCredential) {
				t.Fatalf("expected ErrInvalidCredential, got %v", err)
			}
		})
	}
}

func TestValidateExpiredToken(t *testing.T) {
	issuer, store, sessionRepo, now := newIssuer(t)
	sessID := seedSession(t, sessionRepo, session.StageActive)
	ctx := context.Background()

	cred, err := issuer.Mint(ctx, sessID)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	// Still live just inside the TTL.
	*now = base.Add(30 * time.Second)
	if _, err := issuer.Validate(ctx, sessID, cred.Token); err != nil {
		t.Fatalf("expected live token inside TTL, got %v", err)
	}

	// Dead once the TTL plus grace has elapsed.
	*now = base.Add(time.Minute)
	if _, err := issuer.Validate(ctx, sessID, cred.Token); !errors.Is(err, xerrors.ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential past expiry, got %v", err)
	}

	// The store no longer surfaces it as latest either.
	if _, err := store.Latest(ctx, sessID); !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("expected expired latest to vanish, got %v", err)
	}
}

func TestLatestTracksNewestMint(t *testing.T) {
	issuer, _, sessionRepo, _ := newIssuer(t)
	sessID := seedSession(t, sessionRepo, session.StageActive)
	ctx := context.Background()

	if _, err := issuer.Latest(ctx, sessID); !errors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before any mint, got %v", err)
	}

	first, err := issuer.Mint(ctx, sessID)
	if err != nil {
		t.Fatalf("mint first: %v", err)
	}
	second, err := issuer.Mint(ctx, sessID)
	if err != nil {
		t.Fatalf("mint second: %v", err)
	}

	latest, err := issuer.Latest(ctx, sessID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Token != second.Token {
		t.Fatalf("expected newest token %s, got %s", second.Token, latest.Token)
	}

	// Rotation does not revoke the previous token while it is still live.
	if _, err := issuer.Validate(ctx, sessID, first.Token); err != nil {
		t.Fatalf("expected previous token still valid inside its TTL, got %v", err)
	}
}
