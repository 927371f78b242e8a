// Package devicetable implements the bounded, MAC-keyed device tracking
// table (§4.3): the single point of mutation for per-station counters, and
// the read surface the threat analyzer iterates every pass.
package devicetable

import (
	"sync"
	"time"

	"github.com/oxide-sec/wisentry/internal/core/domain"
)

// MaxTrackedDevices is the default device-table cap (§6 MAX_TRACKED_DEVICES).
// Application wiring may override it via config; the table itself takes the
// cap as a constructor argument so tests can exercise saturation cheaply.
const MaxTrackedDevices = 50

// Table is a fixed-capacity, MAC-keyed set of TrackedDevice entries. It is
// mutated by the capture consumer (Observe, AddSSID) and by the analyzer
// (in place, through WithEach), guarded by one mutex — the
// 50-entry default cap makes sharding unnecessary (see DESIGN.md).
type Table struct {
	mu       sync.RWMutex
	capacity int
	devices  map[domain.MacAddress]*domain.TrackedDevice

	dropped int // TableFull occurrences, exposed for the drop-rate counter
}

// New returns an empty table with the given capacity. A capacity of 0 uses
// MaxTrackedDevices.
func New(capacity int) *Table {
	if capacity <= 0 {
		capacity = MaxTrackedDevices
	}
	return &Table{
		capacity: capacity,
		devices:  make(map[domain.MacAddress]*domain.TrackedDevice, capacity),
	}
}

// Observe folds one captured frame into the entry for mac, creating it if
// this is the first observation and the table has room (§4.3 observe()).
// Returns false when the table was full and mac was not already tracked —
// the frame is dropped, matching the TableFull error kind (§7).
func (t *Table) Observe(mac domain.MacAddress, kind domain.FrameKind, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.devices[mac]
	if !ok {
		if len(t.devices) >= t.capacity {
			t.dropped++
			return false
		}
		d = domain.NewTrackedDevice(mac, now)
		t.devices[mac] = d
	}
	d.Observe(kind, now)
	return true
}

// AddSSID records an SSID advertised by mac, if mac is tracked. It is a
// no-op (not a drop) when mac is unknown; SSID insertion never creates an
// entry on its own — a device is only created via Observe.
func (t *Table) AddSSID(mac domain.MacAddress, ssid string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.devices[mac]; ok {
		d.AddSSID(ssid)
	}
}

// Len reports the current number of tracked devices.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.devices)
}

// Dropped reports how many first-observations were refused because the
// table was full.
func (t *Table) Dropped() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dropped
}

// Snapshot returns a deep copy of every tracked device, safe for a caller to
// read or hold onto without synchronizing with further mutation. Used by the
// analyzer pass and by diagnostic/display consumers (§6 "snapshot of tracked
// devices").
func (t *Table) Snapshot() []domain.TrackedDevice {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.TrackedDevice, 0, len(t.devices))
	for _, d := range t.devices {
		out = append(out, cloneDevice(d))
	}
	return out
}

// WithEach calls fn for every tracked device under the table's write lock,
// allowing fn to mutate the device in place. This is the entry point the
// analyzer pass uses to score and roll over every entry in a single critical
// section held for the whole pass, matching the single-producer/single-
// consumer model of §5 without copying the whole table twice per pass.
func (t *Table) WithEach(fn func(d *domain.TrackedDevice)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, d := range t.devices {
		fn(d)
	}
}

// Clear empties the table and resets the drop counter, matching the
// initDefenseSystem / startAdvancedThreatMonitor reset contract (§3
// Lifecycle: session state is cleared before capture begins).
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.devices = make(map[domain.MacAddress]*domain.TrackedDevice, t.capacity)
	t.dropped = 0
}

func cloneDevice(d *domain.TrackedDevice) domain.TrackedDevice {
	clone := *d
	clone.AdvertisedSSIDs = make(map[string]struct{}, len(d.AdvertisedSSIDs))
	for ssid := range d.AdvertisedSSIDs {
		clone.AdvertisedSSIDs[ssid] = struct{}{}
	}
	return clone
}
