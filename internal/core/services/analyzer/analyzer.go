// Package analyzer implements the periodic threat analyzer (§4.4): one pass
// over the device table that rolls sliding windows, derives rates, applies
// the seven scoring rules in fixed order, and promotes devices crossing the
// malicious threshold to the active-threats list.
package analyzer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/oxide-sec/wisentry/internal/core/ports"
	"github.com/oxide-sec/wisentry/internal/core/services/devicetable"
	"github.com/oxide-sec/wisentry/internal/telemetry"
)

// ShortWindowMS is the default sliding-window length (§6 SHORT_WINDOW_MS).
const ShortWindowMS = 3000

// ThreatTimeout is the default stale-entry skip duration (§6
// THREAT_TIMEOUT_MS): devices not seen within this long are skipped for
// scoring, letting their counters decay into irrelevance.
const ThreatTimeout = 30 * time.Second

// Analyzer runs periodic passes over a device table, emitting
// ThreatDetection values through sink and accumulating DefenseStats.
type Analyzer struct {
	table      *devicetable.Table
	rules      []Rule
	thresholds Thresholds
	window     time.Duration
	timeout    time.Duration
	sink       ports.ThreatSink

	statsMu sync.Mutex
	stats   domain.DefenseStats
}

// New builds an Analyzer with the default rule set and the given
// thresholds. sink receives every newly promoted ThreatDetection; it may be
// nil if the caller has no observer wired yet.
func New(table *devicetable.Table, th Thresholds, sink ports.ThreatSink) *Analyzer {
	return NewWithWindow(table, th, sink, ShortWindowMS*time.Millisecond, ThreatTimeout)
}

// NewWithWindow builds an Analyzer like New, but with an explicit window and
// staleness timeout instead of the package defaults — used by the
// application wiring to honor config.Config's SHORT_WINDOW_MS/
// THREAT_TIMEOUT_MS overrides.
func NewWithWindow(table *devicetable.Table, th Thresholds, sink ports.ThreatSink, window, timeout time.Duration) *Analyzer {
	return &Analyzer{
		table:      table,
		rules:      defaultRules(),
		thresholds: th,
		window:     window,
		timeout:    timeout,
		sink:       sink,
	}
}

// Stats returns the analyzer's current DefenseStats snapshot. The analyzer
// is the single owner of DefenseStats (§2's shared state); the passive scan
// analyzer and application wiring fold their own contributions in through
// RecordScan and AddMonitorTime rather than keeping a second copy.
func (a *Analyzer) Stats() domain.DefenseStats {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return a.stats
}

// RecordScan folds an on-demand passive scan's network count into the
// shared stats (§4.5 "networks_scanned ... incremented by the count of
// returned networks per scan").
func (a *Analyzer) RecordScan(networks int, now time.Time) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	a.stats.RecordScan(networks, now)
}

// AddMonitorTime accrues elapsed wall-clock capture time into the shared
// stats (§6 active_monitor_time).
func (a *Analyzer) AddMonitorTime(d time.Duration, now time.Time) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	a.stats.AddMonitorTime(d, now)
}

// Run performs one analyzer pass at now. It is safe to call no more often
// than MIN_ANALYSIS_TIME (§4.4); the analyzer itself does not rate-limit
// callers — that is the application loop's responsibility (§5).
func (a *Analyzer) Run(now time.Time) {
	var newDetections []domain.ThreatDetection

	a.table.WithEach(func(d *domain.TrackedDevice) {
		det, ok := a.scoreDevice(d, now)
		if ok {
			newDetections = append(newDetections, det)
		}
		a.rolloverIfDue(d, now)
	})

	for _, det := range newDetections {
		a.statsMu.Lock()
		a.stats.RecordDetection(isBlockingAction(det.RecommendedAction), now)
		a.statsMu.Unlock()
		telemetry.ThreatsDetected.WithLabelValues(string(det.Category)).Inc()
		if a.sink != nil {
			a.sink.PublishDetection(det)
		}
	}
}

// scoreDevice implements §4.4 steps 1-6 for a single device. Returns the
// newly emitted detection and true when the device crossed the malicious
// threshold on this pass; marked_malicious is sticky, so a device already
// malicious never emits twice.
func (a *Analyzer) scoreDevice(d *domain.TrackedDevice, now time.Time) (domain.ThreatDetection, bool) {
	d.RiskScore = 0

	if now.Sub(d.LastSeen) > a.timeout {
		return domain.ThreatDetection{}, false
	}

	windowSeconds := max0_1(now.Sub(d.WindowStart).Seconds())
	totalSeconds := max0_1(now.Sub(d.FirstSeen).Seconds())

	r := rates{
		beacon:         float64(d.RecentBeacons) / windowSeconds,
		probe:          float64(d.RecentProbes) / windowSeconds,
		deauth:         float64(d.RecentDeauths) / windowSeconds,
		lifetimeBeacon: float64(d.BeaconCount) / totalSeconds,
	}

	for _, rule := range a.rules {
		outcome := rule.Evaluate(d, r, a.thresholds)
		if !outcome.fired {
			continue
		}
		d.RiskScore += outcome.weight
		if outcome.category == "" {
			continue
		}
		if outcome.unconditional || d.Suspected == domain.ThreatUnknown {
			d.Suspected = outcome.category
		}
	}

	// TODO(karma): no rule yet consumes FrameKind.ProbeResponse history;
	// implementing the "unsolicited probe-response" heuristic needs the
	// cross-referenced probe-request history this pass does not retain.

	if d.RiskScore >= a.thresholds.AttackDetection && !d.MarkedMalicious {
		d.MarkedMalicious = true
		confidence := d.RiskScore / 10.0
		if confidence > 1 {
			confidence = 1
		}
		det := domain.NewThreatDetection(
			uuid.NewString(),
			d.MAC,
			d.Suspected,
			confidence,
			now,
			"device "+d.MAC.String()+" crossed the attack-detection threshold",
			domain.ActionAlert,
		)
		return det, true
	}
	return domain.ThreatDetection{}, false
}

// rolloverIfDue implements §4.4 step 7: zero the sliding window once it has
// run longer than the configured window length. Lifetime counters are never
// touched here.
func (a *Analyzer) rolloverIfDue(d *domain.TrackedDevice, now time.Time) {
	if now.Sub(d.WindowStart) > a.window {
		d.ResetWindow(now)
	}
}

func max0_1(v float64) float64 {
	if v < 0.1 {
		return 0.1
	}
	return v
}

// isBlockingAction reports whether a recommended action corresponds to a
// "blocked" outcome for DefenseStats.ThreatsBlocked purposes (§AMBIENT
// errors: the engine never actually isolates or counters traffic, it only
// counts what it would have acted on).
func isBlockingAction(action domain.RecommendedAction) bool {
	return action == domain.ActionIsolate || action == domain.ActionCounter
}
