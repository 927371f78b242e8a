package domain

import (
	"testing"
	"time"
)

func TestNewThreatDetectionClampsConfidence(t *testing.T) {
	now := time.Now()
	mac := MacAddress{1, 2, 3, 4, 5, 6}

	over := NewThreatDetection("id1", mac, ThreatBeaconSpam, 1.5, now, "d", ActionAlert)
	if over.Confidence != 1 {
		t.Errorf("confidence = %v, want clamped to 1", over.Confidence)
	}

	under := NewThreatDetection("id2", mac, ThreatBeaconSpam, -0.5, now, "d", ActionAlert)
	if under.Confidence != 0 {
		t.Errorf("confidence = %v, want clamped to 0", under.Confidence)
	}

	mid := NewThreatDetection("id3", mac, ThreatBeaconSpam, 0.8, now, "d", ActionAlert)
	if mid.Confidence != 0.8 {
		t.Errorf("confidence = %v, want 0.8 unchanged", mid.Confidence)
	}
}

func TestNewThreatDetectionIsActiveByDefault(t *testing.T) {
	d := NewThreatDetection("id", MacAddress{}, ThreatDeauthFlood, 0.5, time.Now(), "d", ActionAlert)
	if !d.Active {
		t.Error("new detection must be active")
	}
}
