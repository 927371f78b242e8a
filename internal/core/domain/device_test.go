package domain

import (
	"testing"
	"time"
)

func TestNewTrackedDeviceInvariants(t *testing.T) {
	now := time.Now()
	mac := MacAddress{1, 2, 3, 4, 5, 6}
	d := NewTrackedDevice(mac, now)

	if d.FirstSeen != now || d.LastSeen != now || d.WindowStart != now {
		t.Error("new device must stamp first_seen, last_seen, window_start to now")
	}
	if d.BeaconCount != 0 || d.ProbeCount != 0 || d.DeauthCount != 0 {
		t.Error("new device must have zeroed lifetime counters")
	}
	if d.RecentBeacons != 0 || d.RecentProbes != 0 || d.RecentDeauths != 0 {
		t.Error("new device must have zeroed window counters")
	}
	if d.Suspected != ThreatUnknown {
		t.Errorf("new device suspected = %v, want Unknown", d.Suspected)
	}
}

func TestObserveIncrementsLifetimeAndWindowTogether(t *testing.T) {
	now := time.Now()
	d := NewTrackedDevice(MacAddress{1}, now)

	later := now.Add(time.Second)
	d.Observe(FrameBeacon, later)
	d.Observe(FrameBeacon, later)
	d.Observe(FrameProbeRequest, later)
	d.Observe(FrameDeauth, later)

	if d.BeaconCount != 2 || d.RecentBeacons != 2 {
		t.Errorf("beacon counters = %d/%d, want 2/2", d.BeaconCount, d.RecentBeacons)
	}
	if d.ProbeCount != 1 || d.RecentProbes != 1 {
		t.Errorf("probe counters = %d/%d, want 1/1", d.ProbeCount, d.RecentProbes)
	}
	if d.DeauthCount != 1 || d.RecentDeauths != 1 {
		t.Errorf("deauth counters = %d/%d, want 1/1", d.DeauthCount, d.RecentDeauths)
	}
	if d.LastSeen != later {
		t.Errorf("last_seen = %v, want %v", d.LastSeen, later)
	}
	if d.RecentBeacons > d.BeaconCount || d.RecentProbes > d.ProbeCount || d.RecentDeauths > d.DeauthCount {
		t.Error("recent_* must never exceed lifetime counters")
	}
}

func TestObserveDoesNotRegressLastSeen(t *testing.T) {
	now := time.Now()
	d := NewTrackedDevice(MacAddress{1}, now)
	d.Observe(FrameBeacon, now.Add(time.Second))
	d.Observe(FrameBeacon, now.Add(-time.Hour))
	if d.LastSeen != now.Add(time.Second) {
		t.Errorf("last_seen regressed to %v", d.LastSeen)
	}
}

func TestAddSSIDBounded(t *testing.T) {
	now := time.Now()
	d := NewTrackedDevice(MacAddress{1}, now)
	for i := 0; i < MaxAdvertisedSSIDs; i++ {
		if !d.AddSSID(string(rune('a' + i))) {
			t.Fatalf("AddSSID should accept up to MaxAdvertisedSSIDs entries, failed at %d", i)
		}
	}
	if d.AddSSID("overflow") {
		t.Error("AddSSID should refuse to exceed MaxAdvertisedSSIDs")
	}
	if len(d.AdvertisedSSIDs) != MaxAdvertisedSSIDs {
		t.Errorf("AdvertisedSSIDs size = %d, want %d", len(d.AdvertisedSSIDs), MaxAdvertisedSSIDs)
	}
	if !d.AddSSID("a") {
		t.Error("re-adding an already-present SSID should succeed (no-op)")
	}
}

func TestAddSSIDIgnoresEmpty(t *testing.T) {
	d := NewTrackedDevice(MacAddress{1}, time.Now())
	if d.AddSSID("") {
		t.Error("AddSSID(\"\") should return false")
	}
	if len(d.AdvertisedSSIDs) != 0 {
		t.Error("empty SSID must not be inserted")
	}
}

func TestResetWindow(t *testing.T) {
	now := time.Now()
	d := NewTrackedDevice(MacAddress{1}, now)
	d.Observe(FrameBeacon, now)
	d.Observe(FrameProbeRequest, now)
	d.Observe(FrameDeauth, now)

	rollover := now.Add(4 * time.Second)
	d.ResetWindow(rollover)

	if d.RecentBeacons != 0 || d.RecentProbes != 0 || d.RecentDeauths != 0 {
		t.Error("ResetWindow must zero all recent_* counters")
	}
	if d.WindowStart != rollover {
		t.Errorf("window_start = %v, want %v", d.WindowStart, rollover)
	}
	if d.BeaconCount != 1 || d.ProbeCount != 1 || d.DeauthCount != 1 {
		t.Error("ResetWindow must never touch lifetime counters")
	}
}
