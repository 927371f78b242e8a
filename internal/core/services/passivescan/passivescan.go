// Package passivescan implements the on-demand passive scan analyzer
// (§4.5): a blocking active scan fed through two stateless detectors,
// writing directly to the active-threats list via a ports.ThreatSink.
package passivescan

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/ports"
	"github.com/oxide-sec/wisentry/internal/telemetry"
)

// roguePatterns is the fixed substring set checked against lowercased open
// SSIDs (§4.5). "free wifi" is covered because it matches both "free" and
// "wifi"; matching either is sufficient, so the set is checked with any-of
// semantics, not both-of.
var roguePatterns = []string{"free", "wifi", "internet", "guest", "public", "open", "hotspot"}

// Analyzer runs the passive scan pass on demand.
type Analyzer struct {
	scanner ports.Scanner
	sink    ports.ThreatSink
	clock   ports.Clock
}

// New builds a passive scan analyzer over scanner, publishing detections to
// sink and stamping them using clock.
func New(scanner ports.Scanner, sink ports.ThreatSink, clock ports.Clock) *Analyzer {
	return &Analyzer{scanner: scanner, sink: sink, clock: clock}
}

// Run performs one blocking scan and evaluates both detectors over the
// result set. It returns the number of networks scanned, for
// DefenseStats.networks_scanned (§4.5's "incremented by the count of
// returned networks per scan").
func (a *Analyzer) Run(ctx context.Context) (int, error) {
	results, err := a.scanner.ScanNetworks(ctx)
	if err != nil {
		// ScanFailure (§7): not distinguished from an empty environment.
		telemetry.ScansRun.WithLabelValues("error").Inc()
		return 0, nil
	}
	telemetry.ScansRun.WithLabelValues("ok").Inc()

	now := a.clock.Now()
	for _, det := range detectRogueSSIDs(results, now) {
		telemetry.ThreatsDetected.WithLabelValues(string(det.Category)).Inc()
		if a.sink != nil {
			a.sink.PublishDetection(det)
		}
	}
	for _, det := range detectEvilTwins(results, now) {
		telemetry.ThreatsDetected.WithLabelValues(string(det.Category)).Inc()
		if a.sink != nil {
			a.sink.PublishDetection(det)
		}
	}
	return len(results), nil
}

// detectRogueSSIDs implements the rogue-SSID pattern detector: for each open
// network whose lowercased SSID contains any of roguePatterns, emit a
// RogueAp detection at confidence 0.6.
func detectRogueSSIDs(results []domain.ScanResult, now time.Time) []domain.ThreatDetection {
	var out []domain.ThreatDetection
	for _, r := range results {
		if !r.IsOpen {
			continue
		}
		lower := strings.ToLower(r.SSID)
		for _, pattern := range roguePatterns {
			if strings.Contains(lower, pattern) {
				out = append(out, domain.NewThreatDetection(
					uuid.NewString(),
					r.BSSID,
					domain.ThreatRogueAP,
					0.6,
					now,
					"open network \""+r.SSID+"\" matches a common rogue-AP naming pattern",
					domain.ActionAlert,
				))
				break
			}
		}
	}
	return out
}

// detectEvilTwins implements the evil-twin duplication detector: group scan
// results by exact SSID string, and for every group with more than one
// BSSID, emit one EvilTwin detection per BSSID. BSSIDs are copied by value
// into the grouping map, never held as pointers into the scanner's result
// slice (§9's "stored raw pointers" pitfall).
func detectEvilTwins(results []domain.ScanResult, now time.Time) []domain.ThreatDetection {
	groups := make(map[string][]domain.MacAddress)
	for _, r := range results {
		groups[r.SSID] = append(groups[r.SSID], r.BSSID)
	}

	var out []domain.ThreatDetection
	for ssid, bssids := range groups {
		if len(bssids) <= 1 {
			continue
		}
		for _, bssid := range bssids {
			out = append(out, domain.NewThreatDetection(
				uuid.NewString(),
				bssid,
				domain.ThreatEvilTwin,
				0.7,
				now,
				"SSID \""+ssid+"\" observed from multiple BSSIDs",
				domain.ActionAlert,
			))
		}
	}
	return out
}
