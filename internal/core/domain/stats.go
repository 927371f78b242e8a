package domain

import "time"

// DefenseStats is the periodically-refreshed summary exposed over the stats
// endpoint and persisted as a snapshot row. It never holds per-device detail;
// see the device table and active-threats list for that.
type DefenseStats struct {
	ThreatsDetected   int
	ThreatsBlocked    int
	ActiveMonitorTime time.Duration
	NetworksScanned   int
	LastUpdate        time.Time
}

// NewDefenseStats returns a zeroed snapshot stamped at now.
func NewDefenseStats(now time.Time) DefenseStats {
	return DefenseStats{LastUpdate: now}
}

// RecordDetection increments ThreatsDetected and, when blocked is true,
// ThreatsBlocked. "Blocked" here means the recommended action was isolate or
// counter; the engine itself never blocks traffic (see Non-goals), it only
// counts the detections it would have acted on.
func (s *DefenseStats) RecordDetection(blocked bool, now time.Time) {
	s.ThreatsDetected++
	if blocked {
		s.ThreatsBlocked++
	}
	s.LastUpdate = now
}

// RecordScan increments NetworksScanned by the number of distinct networks
// observed in one passive scan pass.
func (s *DefenseStats) RecordScan(networks int, now time.Time) {
	s.NetworksScanned += networks
	s.LastUpdate = now
}

// AddMonitorTime accrues elapsed wall-clock time the radio spent in capture
// mode, per §6's active_monitor_time field.
func (s *DefenseStats) AddMonitorTime(d time.Duration, now time.Time) {
	s.ActiveMonitorTime += d
	s.LastUpdate = now
}
