// internal/domain/credential/store.go
package credential

import "context"

// Store keeps live credentials. Implementations may evict expired entries
// eagerly (TTL) but the issuer re-checks expiry on every validation, so an
// un-evicted stale entry can never admit a scan.
type Store interface {
	Save(ctx context.Context, cred *Credential) error

	// Find returns the credential for (sessionID, token), or ErrNotFound.
	// A token minted for a different session never matches.
	Find(ctx context.Context, sessionID, token string) (*Credential, error)

	// Latest returns the most recently minted credential for a session,
	// or ErrNotFound if none is live. Used to render the current QR code.
	Latest(ctx context.Context, sessionID string) (*Credential, error)
}
