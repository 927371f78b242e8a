// Package ports declares the interfaces THE CORE depends on but does not
// implement: the radio, the clock, the active-scan collaborator, and the
// observers that receive detections and stats. Adapters under
// internal/adapters satisfy these against real hardware; tests satisfy them
// with fakes.
package ports

import (
	"context"
	"time"

	"github.com/oxide-sec/wisentry/internal/core/domain"
)

var (
	// ErrRadioUnavailable is returned by RadioInterface.EnableCapture when the
	// device cannot enter promiscuous mode. Capture is treated as not started.
	ErrRadioUnavailable = errorString("radio unavailable")
)

type errorString string

func (e errorString) Error() string { return string(e) }

// FrameConsumer receives every captured management frame. It is invoked from
// an interrupt-like context (§4.1/§5): it must not block, must not allocate
// unbounded memory, and must not call back into the RadioInterface.
type FrameConsumer func(raw []byte, now time.Time)

// RadioInterface puts the underlying hardware into promiscuous management-
// frame capture and delivers frames to a registered FrameConsumer.
type RadioInterface interface {
	// EnableCapture puts the radio into promiscuous management-frame capture
	// (monitor mode on the real Radio) and registers consumer. Idempotent: a
	// second call re-registers the consumer without restarting the radio.
	EnableCapture(consumer FrameConsumer) error

	// DisableCapture stops delivery. Safe to call when already inactive.
	DisableCapture() error
}

// Scanner performs the blocking active scan the passive scan analyzer
// consumes (§4.5, §6 scan_networks).
type Scanner interface {
	ScanNetworks(ctx context.Context) ([]domain.ScanResult, error)
}

// Clock abstracts the monotonic time source so analyzer and device-table
// tests can drive deterministic scenarios without real sleeps.
type Clock interface {
	Now() time.Time
}

// ThreatSink receives every newly appended ThreatDetection, in order, the
// moment the analyzer (or the passive scan analyzer) creates it. Observers
// such as the WebSocket pusher and the SQLite writer implement this; neither
// feeds back into the device table or the analyzer.
type ThreatSink interface {
	PublishDetection(domain.ThreatDetection)
}

// StatsSink receives periodic DefenseStats snapshots for persistence or
// display. It is never consulted for reads; the core keeps its own live copy.
type StatsSink interface {
	PublishStats(domain.DefenseStats)
}
