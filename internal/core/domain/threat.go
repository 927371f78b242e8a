package domain

import "time"

// ThreatCategory tags the kind of attack a device is suspected of. A device's
// category is assigned by whichever analyzer rule fires first, with the
// stickiness rules described in the analyzer package.
type ThreatCategory string

const (
	ThreatUnknown       ThreatCategory = "unknown"
	ThreatBeaconSpam    ThreatCategory = "beacon_spam"
	ThreatEvilTwin      ThreatCategory = "evil_twin"
	ThreatKarma         ThreatCategory = "karma"
	ThreatDeauthFlood   ThreatCategory = "deauth_flood"
	ThreatProbeFlood    ThreatCategory = "probe_flood"
	ThreatCaptivePortal ThreatCategory = "captive_portal"
	ThreatRogueAP       ThreatCategory = "rogue_ap"
)

// RecommendedAction is the suggested operator response for a ThreatDetection.
// The core never acts on these itself; they are advisory only (see Non-goals).
type RecommendedAction string

const (
	ActionMonitor RecommendedAction = "monitor"
	ActionAlert   RecommendedAction = "alert"
	ActionIsolate RecommendedAction = "isolate"
	ActionCounter RecommendedAction = "counter"
	ActionReport  RecommendedAction = "report"
)

// ThreatDetection is an emitted alert. Once created it is never mutated; the
// active-threats list is append-only within a session (§3 Lifecycle).
type ThreatDetection struct {
	ID                string
	SourceMAC          MacAddress
	Category           ThreatCategory
	Confidence         float64 // in [0,1]
	DetectedAt         time.Time
	Description        string
	RecommendedAction  RecommendedAction
	Active             bool
}

// NewThreatDetection builds a detection with confidence clamped to [0,1], so
// callers (the analyzer's risk_score/10 formula, the passive scan's fixed
// confidences) never need to clamp by hand.
func NewThreatDetection(id string, mac MacAddress, cat ThreatCategory, confidence float64, now time.Time, description string, action RecommendedAction) ThreatDetection {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return ThreatDetection{
		ID:                id,
		SourceMAC:         mac,
		Category:          cat,
		Confidence:        confidence,
		DetectedAt:        now,
		Description:       description,
		RecommendedAction: action,
		Active:            true,
	}
}
