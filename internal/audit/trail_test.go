// internal/audit/trail_test.go
package audit_test

import (
	"fmt"
	"sync"
	"testing"

	"attendance-service/internal/audit"
	auditdom "attendance-service/internal/domain/audit"
)

func TestRecordReturnsMaskedAlert(t *testing.T) {
	trail := audit.NewTrail()

	alert := trail.Record("sess-1", "9f2c41d07ab3e8cd")
	if alert.Type != auditdom.AlertTypeBlockedProxy {
		t.Fatalf("expected type %s, got %s", auditdom.AlertTypeBlockedProxy, alert.Type)
	}
	if alert.DeviceID != "E8CD" {
		t.Fatalf("expected masked device id E8CD, got %s", alert.DeviceID)
	}
	if alert.ScanTime.IsZero() {
		t.Fatal("expected scan time to be set")
	}
}

func TestListMostRecentFirst(t *testing.T) {
	trail := audit.NewTrail()

	trail.Record("sess-1", "aaaa1111")
	trail.Record("sess-1", "bbbb2222")
	trail.Record("sess-1", "cccc3333")

	alerts := trail.List("sess-1")
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(alerts))
	}
	if alerts[0].DeviceID != "3333" || alerts[1].DeviceID != "2222" || alerts[2].DeviceID != "1111" {
		t.Fatalf("expected most-recent-first ordering, got %+v", alerts)
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	trail := audit.NewTrail()

	for i := 0; i < audit.DefaultCapacity+3; i++ {
		trail.Record("sess-1", fmt.Sprintf("fp-%04d", i))
	}

	alerts := trail.List("sess-1")
	if len(alerts) != audit.DefaultCapacity {
		t.Fatalf("expected buffer capped at %d, got %d", audit.DefaultCapacity, len(alerts))
	}
	// Newest survives, earliest were evicted.
	if alerts[0].DeviceID != "0007" {
		t.Fatalf("expected newest alert first, got %s", alerts[0].DeviceID)
	}
	if alerts[len(alerts)-1].DeviceID != "0003" {
		t.Fatalf("expected oldest surviving alert 0003, got %s", alerts[len(alerts)-1].DeviceID)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	trail := audit.NewTrail()

	trail.Record("sess-1", "aaaa1111")
	trail.Record("sess-2", "bbbb2222")

	if got := len(trail.List("sess-1")); got != 1 {
		t.Fatalf("expected 1 alert for sess-1, got %d", got)
	}
	if got := len(trail.List("sess-2")); got != 1 {
		t.Fatalf("expected 1 alert for sess-2, got %d", got)
	}
	if got := len(trail.List("sess-3")); got != 0 {
		t.Fatalf("expected no alerts for unknown session, got %d", got)
	}
}

func TestListReturnsCopy(t *testing.T) {
	trail := audit.NewTrail()
	trail.Record("sess-1", "aaaa1111")

	alerts := trail.List("sess-1")
	alerts[0].DeviceID = "MUTATED"

	if trail.List("sess-1")[0].DeviceID != "1111" {
		t.Fatal("mutating the returned slice leaked into trail state")
	}
}

func TestPurgeDropsBuffer(t *testing.T) {
	trail := audit.NewTrail()
	trail.Record("sess-1", "aaaa1111")
	trail.Record("sess-2", "bbbb2222")

	trail.Purge("sess-1")

	if got := len(trail.List("sess-1")); got != 0 {
		t.Fatalf("expected purged session to have no alerts, got %d", got)
	}
	if got := len(trail.List("sess-2")); got != 1 {
		t.Fatalf("purge of sess-1 must not touch sess-2, got %d alerts", got)
	}
}

func TestConcurrentRecord(t *testing.T) {
	trail := audit.NewTrail()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			trail.Record("sess-1", fmt.Sprintf("fp-%04d", n))
		}(i)
	}
	wg.Wait()

	if got := len(trail.List("sess-1")); got != audit.DefaultCapacity {
		t.Fatalf("expected %d alerts after concurrent records, got %d", audit.DefaultCapacity, got)
	}
}
