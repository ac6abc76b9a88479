// internal/repository/redisstore/credential_store.go
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"attendance-service/internal/domain/credential"
	xerrors "attendance-service/internal/pkg/errors"

	"github.com/redis/go-redis/v9"
)

const (
	credKeyPrefix   = "att:cred:"
	latestKeyPrefix = "att:cred:latest:"
)

// CredentialStore keeps rotating credentials as TTL-keyed Redis entries.
// Expiry is enforced twice: Redis evicts the key at TTL, and the issuer
// re-checks ExpiresAt on every validation, so clock skew between the two
// never admits a stale token. Overlapping refresh cycles simply coexist as
// separate keys.
type CredentialStore struct {
	client *redis.Client
}

func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

func credKey(sessionID, token string) string {
	return fmt.Sprintf("%s%s:%s", credKeyPrefix, sessionID, token)
}

func latestKey(sessionID string) string {
	return latestKeyPrefix + sessionID
}

// Save stores the credential under its (session, token) key and advances
// the session's latest-credential pointer. Both keys expire with the
// credential.
func (s *CredentialStore) Save(ctx context.Context, cred *credential.Credential) error {
	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	ttl := time.Until(cred.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("%w: credential already expired", xerrors.ErrInvalidInput)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, credKey(cred.SessionID, cred.Token), payload, ttl)
	pipe.Set(ctx, latestKey(cred.SessionID), cred.Token, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return xerrors.Unavailable(fmt.Errorf("save credential: %w", err))
	}

	return nil
}

// Find returns the credential for (sessionID, token), or ErrNotFound. The
// session id is part of the key, so a token minted for another session
// never matches.
func (s *CredentialStore) Find(ctx context.Context, sessionID, token string) (*credential.Credential, error) {
	raw, err := s.client.Get(ctx, credKey(sessionID, token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("find credential: %w", err))
	}

	var cred credential.Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("unmarshal credential: %w", err)
	}

	return &cred, nil
}

// Latest resolves the most recently minted live credential for a session.
func (s *CredentialStore) Latest(ctx context.Context, sessionID string) (*credential.Credential, error) {
	token, err := s.client.Get(ctx, latestKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, xerrors.Unavailable(fmt.Errorf("latest credential: %w", err))
	}

	return s.Find(ctx, sessionID, token)
}
