// internal/pkg/fingerprint/fingerprint.go
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Inputs are the client-declared metadata fields a scan carries. The derived
// fingerprint is a coarse device identity: it raises the cost of proxy
// attendance but is not a hardware attestation and must not be treated as
// unforgeable.
type Inputs struct {
	UserAgent        string
	Platform         string
	ScreenResolution string
	Timezone         string
}

// Derive hashes the concatenated metadata fields into an opaque device id.
// The same inputs always produce the same fingerprint.
func Derive(in Inputs) string {
	raw := strings.Join([]string{
		strings.TrimSpace(in.UserAgent),
		strings.TrimSpace(in.Platform),
		strings.TrimSpace(in.ScreenResolution),
		strings.TrimSpace(in.Timezone),
	}, "|")

	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Mask shortens a fingerprint to a non-reversible display form: the final
// four hex characters, uppercased. This is the only form the audit trail
// ever exposes.
func Mask(fp string) string {
	if len(fp) <= 4 {
		return strings.ToUpper(fp)
	}
	return strings.ToUpper(fp[len(fp)-4:])
}
