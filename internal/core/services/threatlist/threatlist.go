// Package threatlist implements the shared active-threats list (§2's
// "shared state": the active-threats list, aggregate statistics, and the
// analyzer's lifecycle flags). It is the single append-only sink both the
// threat analyzer and the passive scan analyzer write to, and the read path
// the HTTP API serves from. The WebSocket and storage observers receive the
// same detections alongside it, not by reading it.
package threatlist

import (
	"sync"

	"github.com/oxide-sec/wisentry/internal/core/domain"
)

// MaxEntries is the recommended active-threats cap (§5): beyond this many
// entries, new detections are dropped silently rather than growing the list
// without bound.
const MaxEntries = 256

// List is a bounded, append-only, concurrency-safe list of ThreatDetection
// values, satisfying ports.ThreatSink. Grounded on the device table's
// sync.RWMutex-guarded-map shape, generalized to a capped slice since this
// collection has no per-key lookup requirement, only append and snapshot.
type List struct {
	mu      sync.RWMutex
	items   []domain.ThreatDetection
	dropped int
}

// New returns an empty active-threats list.
func New() *List {
	return &List{}
}

// PublishDetection appends d unless the list is already at MaxEntries, in
// which case it is dropped silently and counted (§5 "drop silently
// thereafter").
func (l *List) PublishDetection(d domain.ThreatDetection) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.items) >= MaxEntries {
		l.dropped++
		return
	}
	l.items = append(l.items, d)
}

// Snapshot returns a copy of the current active-threats list, safe for the
// caller to read or retain without racing future appends.
func (l *List) Snapshot() []domain.ThreatDetection {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.ThreatDetection, len(l.items))
	copy(out, l.items)
	return out
}

// Dropped reports how many detections were refused after the list filled.
func (l *List) Dropped() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dropped
}

// Clear empties the list, matching §2's "session state ... is cleared by
// initDefenseSystem ... before capture begins".
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.dropped = 0
}
