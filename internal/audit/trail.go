// internal/audit/trail.go
package audit

import (
	"sync"
	"time"

	"attendance-service/internal/domain/audit"
	"attendance-service/internal/pkg/fingerprint"
)

// DefaultCapacity bounds the per-session alert buffer. Alerts are an
// operational signal for operators, not an audit-of-record, so only the
// most recent few matter.
const DefaultCapacity = 5

// Trail is the process-lifetime registry of blocked-proxy alerts, one
// bounded most-recent-first buffer per session. It is owned by the app
// wiring and passed to the attendance service as a constructor dependency.
// State does not survive restarts.
type Trail struct {
	mu       sync.Mutex
	capacity int
	alerts   map[string][]audit.Alert
	clock    func() time.Time
}

func NewTrail() *Trail {
	return &Trail{
		capacity: DefaultCapacity,
		alerts:   make(map[string][]audit.Alert),
		clock:    time.Now,
	}
}

// Record appends a blocked-proxy alert for the session, evicting the oldest
// entry past capacity. Only the masked device id is retained. The recorded
// alert is returned so callers can fan it out (e.g. to live feeds).
func (t *Trail) Record(sessionID, fp string) audit.Alert {
	alert := audit.Alert{
		ScanTime: t.clock(),
		DeviceID: fingerprint.Mask(fp),
		Type:     audit.AlertTypeBlockedProxy,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	buf := append([]audit.Alert{alert}, t.alerts[sessionID]...)
	if len(buf) > t.capacity {
		buf = buf[:t.capacity]
	}
	t.alerts[sessionID] = buf

	return alert
}

// List returns the session's alerts, most recent first. The slice is a
// copy; callers cannot mutate trail state through it. A session with no
// alerts yields an empty slice.
func (t *Trail) List(sessionID string) []audit.Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	buf := t.alerts[sessionID]
	out := make([]audit.Alert, len(buf))
	copy(out, buf)
	return out
}

// Purge drops the session's buffer. Called on administrative session reset.
func (t *Trail) Purge(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.alerts, sessionID)
}
