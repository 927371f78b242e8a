package analyzer

import (
	"testing"
	"time"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/services/devicetable"
)

type captureSink struct {
	detections []domain.ThreatDetection
}

func (s *captureSink) PublishDetection(d domain.ThreatDetection) {
	s.detections = append(s.detections, d)
}

func deviceByMAC(tbl *devicetable.Table, mac domain.MacAddress) domain.TrackedDevice {
	for _, d := range tbl.Snapshot() {
		if d.MAC == mac {
			return d
		}
	}
	return domain.TrackedDevice{}
}

func TestScenarioBeaconSpam(t *testing.T) {
	tbl := devicetable.New(devicetable.MaxTrackedDevices)
	sink := &captureSink{}
	a := New(tbl, DefaultThresholds(), sink)

	mac, _ := domain.ParseMAC("AA:BB:CC:11:22:33")
	start := time.Now()

	interval := 3000 * time.Millisecond / 30
	for i := 0; i < 30; i++ {
		tbl.Observe(mac, domain.FrameBeacon, start.Add(time.Duration(i)*interval))
	}

	if got := deviceByMAC(tbl, mac).RecentBeacons; got != 30 {
		t.Fatalf("recent_beacons before analysis = %d, want 30", got)
	}

	runAt := start.Add(3100 * time.Millisecond)
	a.Run(runAt)

	if len(sink.detections) != 1 {
		t.Fatalf("detections = %d, want 1", len(sink.detections))
	}
	det := sink.detections[0]
	if det.Category != domain.ThreatBeaconSpam {
		t.Errorf("category = %v, want BeaconSpam", det.Category)
	}
	if !deviceByMAC(tbl, mac).MarkedMalicious {
		t.Error("expected marked_malicious = true")
	}
	if got, want := det.Confidence, 0.8; !closeTo(got, want, 0.01) {
		t.Errorf("confidence = %v, want %v", got, want)
	}
}

func TestScenarioDeauthFlood(t *testing.T) {
	tbl := devicetable.New(devicetable.MaxTrackedDevices)
	sink := &captureSink{}
	a := New(tbl, DefaultThresholds(), sink)

	mac, _ := domain.ParseMAC("DE:AD:BE:EF:00:01")
	start := time.Now()
	interval := 2000 * time.Millisecond / 5
	for i := 0; i < 5; i++ {
		tbl.Observe(mac, domain.FrameDeauth, start.Add(time.Duration(i)*interval))
	}

	a.Run(start.Add(2100 * time.Millisecond))

	if len(sink.detections) != 1 {
		t.Fatalf("detections = %d, want 1", len(sink.detections))
	}
	det := sink.detections[0]
	if det.Category != domain.ThreatDeauthFlood {
		t.Errorf("category = %v, want DeauthFlood", det.Category)
	}
	if got, want := det.Confidence, 0.5; !closeTo(got, want, 0.02) {
		t.Errorf("confidence = %v, want %v", got, want)
	}
}

func TestScenarioBenignBeacon(t *testing.T) {
	tbl := devicetable.New(devicetable.MaxTrackedDevices)
	sink := &captureSink{}
	a := New(tbl, DefaultThresholds(), sink)

	mac, _ := domain.ParseMAC("11:22:33:44:55:66")
	now := time.Now()
	tbl.Observe(mac, domain.FrameBeacon, now)

	// A full second past window_start keeps the instantaneous rate (1
	// beacon/window_seconds) below every rule's threshold; a sub-100ms gap
	// would floor window_seconds to 0.1s and spuriously spike the rate.
	a.Run(now.Add(time.Second))

	d := deviceByMAC(tbl, mac)
	if d.RiskScore != 0 {
		t.Errorf("risk_score = %v, want 0", d.RiskScore)
	}
	if len(sink.detections) != 0 {
		t.Errorf("detections = %d, want 0", len(sink.detections))
	}
}

func TestScenarioWindowRollover(t *testing.T) {
	tbl := devicetable.New(devicetable.MaxTrackedDevices)
	a := New(tbl, DefaultThresholds(), nil)

	mac, _ := domain.ParseMAC("11:22:33:44:55:66")
	now := time.Now()
	tbl.Observe(mac, domain.FrameBeacon, now)

	// A pass just past the 3000ms window length rolls the first beacon out
	// before the second one ever arrives, matching how the real main loop
	// ticks the analyzer every MIN_ANALYSIS_TIME while "waiting".
	rolloverAt := now.Add(3100 * time.Millisecond)
	a.Run(rolloverAt)

	tbl.Observe(mac, domain.FrameBeacon, rolloverAt.Add(900*time.Millisecond))
	a.Run(rolloverAt.Add(1000 * time.Millisecond))

	d := deviceByMAC(tbl, mac)
	if d.RecentBeacons != 1 {
		t.Errorf("recent_beacons = %d, want 1 (first beacon fell out of window)", d.RecentBeacons)
	}
	if d.BeaconCount != 2 {
		t.Errorf("beacon_count = %d, want 2", d.BeaconCount)
	}
	if d.RiskScore != 0 {
		t.Errorf("risk_score = %v, want 0", d.RiskScore)
	}
}

func TestAnalyzerIsIdempotentWithoutNewFrames(t *testing.T) {
	tbl := devicetable.New(devicetable.MaxTrackedDevices)
	sink := &captureSink{}
	a := New(tbl, DefaultThresholds(), sink)

	mac, _ := domain.ParseMAC("AA:BB:CC:11:22:33")
	start := time.Now()
	// Kept under SHORT_WINDOW_MS so neither pass below triggers a rollover;
	// an idempotency check must hold the window's recent_* counters fixed
	// between passes, otherwise the second pass scores a different input.
	interval := 2500 * time.Millisecond / 30
	for i := 0; i < 30; i++ {
		tbl.Observe(mac, domain.FrameBeacon, start.Add(time.Duration(i)*interval))
	}

	runAt := start.Add(2600 * time.Millisecond)
	a.Run(runAt)
	firstRisk := deviceByMAC(tbl, mac).RiskScore
	firstMalicious := deviceByMAC(tbl, mac).MarkedMalicious
	if len(sink.detections) != 1 {
		t.Fatalf("detections after first pass = %d, want 1", len(sink.detections))
	}

	a.Run(runAt.Add(100 * time.Millisecond))
	d := deviceByMAC(tbl, mac)
	if d.RiskScore != firstRisk {
		t.Errorf("risk_score changed across idempotent pass: %v -> %v", firstRisk, d.RiskScore)
	}
	if d.MarkedMalicious != firstMalicious {
		t.Error("marked_malicious changed across idempotent pass")
	}
	if len(sink.detections) != 1 {
		t.Fatalf("detections after second pass = %d, want still 1 (no duplicate)", len(sink.detections))
	}
}

func TestStaleDeviceSkippedByTimeout(t *testing.T) {
	tbl := devicetable.New(devicetable.MaxTrackedDevices)
	a := New(tbl, DefaultThresholds(), nil)

	mac, _ := domain.ParseMAC("11:22:33:44:55:66")
	now := time.Now()
	tbl.Observe(mac, domain.FrameBeacon, now)

	a.Run(now.Add(31 * time.Second))

	d := deviceByMAC(tbl, mac)
	if d.RiskScore != 0 {
		t.Errorf("stale device should keep risk_score at reset value 0, got %v", d.RiskScore)
	}
}

func closeTo(got, want, tolerance float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}
