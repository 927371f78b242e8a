package domain

import "time"

// ScanResult is one access point observed during an active passive-scan pass
// (§4.5: scan_networks returns a list of {ssid, rssi, bssid, is_open}). Used
// only by the passive scan analyzer; never stored in the device table.
type ScanResult struct {
	SSID   string
	BSSID  MacAddress
	RSSI   int
	IsOpen bool
}

// DetectionRecord wraps a ThreatDetection with a row ID and a persistence
// timestamp, so the core can describe a stored detection without depending
// on persistence concerns. The SQLite adapter does not use it; it writes its
// own DetectionModel rows.
type DetectionRecord struct {
	RowID       int64
	Detection   ThreatDetection
	PersistedAt time.Time
}

// NewDetectionRecord wraps a detection for persistence, stamped at now.
func NewDetectionRecord(d ThreatDetection, now time.Time) DetectionRecord {
	return DetectionRecord{Detection: d, PersistedAt: now}
}
