package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// FramesCaptured counts every frame delivered by the radio interface to
	// the demultiplexer, before the management-frame/length filter runs.
	FramesCaptured = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wisentry",
			Name:      "frames_captured_total",
			Help:      "Total number of frames delivered by the radio interface",
		},
	)

	// FramesDropped counts frames rejected by the demultiplexer or refused by
	// the device table, by reason (§7's MalformedFrame/TableFull kinds).
	FramesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wisentry",
			Name:      "frames_dropped_total",
			Help:      "Total number of frames dropped before reaching the device table",
		},
		[]string{"reason"},
	)

	// ThreatsDetected counts every ThreatDetection the analyzer or passive
	// scan analyzer appends to the active-threats list, by category.
	ThreatsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wisentry",
			Name:      "threats_detected_total",
			Help:      "Total number of threat detections appended to the active-threats list",
		},
		[]string{"category"},
	)

	// ScansRun counts passive scan analyzer passes, by outcome (§7's
	// ScanFailure kind is folded into "error").
	ScansRun = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wisentry",
			Name:      "scans_run_total",
			Help:      "Total number of passive scan analyzer passes",
		},
		[]string{"outcome"},
	)

	once sync.Once
)

// InitMetrics registers every metric with the default Prometheus registry.
// Idempotent, so application wiring and tests can call it freely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(FramesCaptured)
		prometheus.DefaultRegisterer.Register(FramesDropped)
		prometheus.DefaultRegisterer.Register(ThreatsDetected)
		prometheus.DefaultRegisterer.Register(ScansRun)
	})
}
