// internal/domain/audit/entity.go
package audit

import "time"

// AlertTypeBlockedProxy is currently the only alert kind: a scan rejected
// because its device fingerprint was already bound to another identity.
const AlertTypeBlockedProxy = "BLOCKED_PROXY"

// Alert is one rejected-proxy-attempt record. DeviceID is a masked,
// non-reversible suffix of the fingerprint, never the raw value.
type Alert struct {
	ScanTime time.Time `json:"scan_time"`
	DeviceID string    `json:"device_id"`
	Type     string    `json:"type"`
}
