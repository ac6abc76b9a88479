// internal/repository/memory/credential_store.go
package memory

import (
	"context"
	"sync"
	"time"

	"attendance-service/internal/domain/credential"
	xerrors "attendance-service/internal/pkg/errors"
)

type credKey struct {
	sessionID string
	token     string
}

// CredentialStore is an in-memory credential.Store. Instead of TTL
// eviction it filters on ExpiresAt at read time, using an injectable clock
// so tests can step past expiry.
type CredentialStore struct {
	mu     sync.Mutex
	creds  map[credKey]credential.Credential
	latest map[string]string
	clock  func() time.Time
}

func NewCredentialStore() *CredentialStore {
	return &CredentialStore{
		creds:  make(map[credKey]credential.Credential),
		latest: make(map[string]string),
		clock:  time.Now,
	}
}

// SetClock replaces the store's time source. Test helper.
func (s *CredentialStore) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

func (s *CredentialStore) Save(_ context.Context, cred *credential.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds[credKey{sessionID: cred.SessionID, token: cred.Token}] = *cred
	s.latest[cred.SessionID] = cred.Token
	return nil
}

func (s *CredentialStore) Find(_ context.Context, sessionID, token string) (*credential.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, ok := s.creds[credKey{sessionID: sessionID, token: token}]
	if !ok || !cred.Live(s.clock()) {
		return nil, xerrors.ErrNotFound
	}
	out := cred
	return &out, nil
}

func (s *CredentialStore) Latest(ctx context.Context, sessionID string) (*credential.Credential, error) {
	s.mu.Lock()
	token, ok := s.latest[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return s.Find(ctx, sessionID, token)
}
