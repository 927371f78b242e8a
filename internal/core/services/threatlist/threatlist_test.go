package threatlist

import (
	"testing"
	"time"

	"github.com/oxide-sec/wisentry/internal/core/domain"
)

func detection(id string) domain.ThreatDetection {
	return domain.NewThreatDetection(id, domain.MacAddress{1, 2, 3, 4, 5, 6}, domain.ThreatBeaconSpam, 0.5, time.Now(), "", domain.ActionAlert)
}

func TestPublishDetectionAppends(t *testing.T) {
	l := New()
	l.PublishDetection(detection("a"))
	l.PublishDetection(detection("b"))

	snap := l.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len = %d, want 2", len(snap))
	}
	if snap[0].ID != "a" || snap[1].ID != "b" {
		t.Errorf("unexpected order: %+v", snap)
	}
}

func TestPublishDetectionCapsAtMaxEntries(t *testing.T) {
	l := New()
	for i := 0; i < MaxEntries+10; i++ {
		l.PublishDetection(detection("x"))
	}
	if len(l.Snapshot()) != MaxEntries {
		t.Errorf("len = %d, want %d", len(l.Snapshot()), MaxEntries)
	}
	if l.Dropped() != 10 {
		t.Errorf("dropped = %d, want 10", l.Dropped())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	l := New()
	l.PublishDetection(detection("a"))
	snap := l.Snapshot()
	snap[0].ID = "mutated"

	if l.Snapshot()[0].ID != "a" {
		t.Error("expected Snapshot to return an independent copy")
	}
}

func TestClearResetsListAndDroppedCount(t *testing.T) {
	l := New()
	for i := 0; i < MaxEntries+5; i++ {
		l.PublishDetection(detection("x"))
	}
	l.Clear()
	if len(l.Snapshot()) != 0 || l.Dropped() != 0 {
		t.Errorf("expected empty list and zero dropped after Clear, got len=%d dropped=%d", len(l.Snapshot()), l.Dropped())
	}
}
