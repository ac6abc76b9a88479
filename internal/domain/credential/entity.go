// internal/domain/credential/entity.go
package credential

import "time"

// Credential is a rotating token scoped to exactly one session. It is
// minted, never mutated, and naturally expires; several live credentials
// may coexist for one session across overlapping refresh cycles.
type Credential struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Live reports whether the credential is still valid at the given instant.
func (c *Credential) Live(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}
