package domain

import "time"

// MaxAdvertisedSSIDs bounds the per-device SSID set so the capture callback
// never triggers an unbounded allocation (§5: "pre-reserve capacity"). Beyond
// two distinct SSIDs a device already contributes to risk (analyzer rule 5);
// eight gives headroom above that without letting a single rogue AP grow the
// set without limit.
const MaxAdvertisedSSIDs = 8

// TrackedDevice is the per-transmitter record held by the device table. It is
// created on first observation and mutated only by the frame demultiplexer
// (counter increments, SSID insertion) and the threat analyzer (score,
// category, malicious flag, window reset).
type TrackedDevice struct {
	MAC MacAddress

	FirstSeen time.Time
	LastSeen  time.Time

	// Lifetime totals. Monotonic for the life of the session; never reset.
	BeaconCount int
	ProbeCount  int
	DeauthCount int

	// Sliding-window totals. Zeroed on rollover (analyzer step 7).
	RecentBeacons int
	RecentProbes  int
	RecentDeauths int
	WindowStart   time.Time

	AdvertisedSSIDs map[string]struct{}

	Suspected    ThreatCategory
	RiskScore    float64
	MarkedMalicious bool
}

// NewTrackedDevice initializes a fresh entry for a MAC observed for the first
// time at now, per §4.3 observe(): first_seen = window_start = now, all
// counters zero.
func NewTrackedDevice(mac MacAddress, now time.Time) *TrackedDevice {
	return &TrackedDevice{
		MAC:             mac,
		FirstSeen:       now,
		LastSeen:        now,
		WindowStart:     now,
		AdvertisedSSIDs: make(map[string]struct{}, MaxAdvertisedSSIDs),
		Suspected:       ThreatUnknown,
	}
}

// Observe folds one captured frame of the given kind into the device's
// counters, per §4.3 step: increment the lifetime and window counter
// corresponding to kind, and bump last_seen.
func (d *TrackedDevice) Observe(kind FrameKind, now time.Time) {
	if now.After(d.LastSeen) {
		d.LastSeen = now
	}
	switch kind {
	case FrameBeacon:
		d.BeaconCount++
		d.RecentBeacons++
	case FrameProbeRequest:
		d.ProbeCount++
		d.RecentProbes++
	case FrameDeauth:
		d.DeauthCount++
		d.RecentDeauths++
	}
}

// AddSSID records an SSID advertised by this device (from a beacon or probe
// response information element), bounded at MaxAdvertisedSSIDs. Returns false
// if the set is already full and the SSID was not already present.
func (d *TrackedDevice) AddSSID(ssid string) bool {
	if ssid == "" {
		return false
	}
	if _, ok := d.AdvertisedSSIDs[ssid]; ok {
		return true
	}
	if len(d.AdvertisedSSIDs) >= MaxAdvertisedSSIDs {
		return false
	}
	d.AdvertisedSSIDs[ssid] = struct{}{}
	return true
}

// ResetWindow zeroes the sliding-window counters and restarts the window at
// now, per §4.4 step 7 (rollover).
func (d *TrackedDevice) ResetWindow(now time.Time) {
	d.RecentBeacons = 0
	d.RecentProbes = 0
	d.RecentDeauths = 0
	d.WindowStart = now
}
