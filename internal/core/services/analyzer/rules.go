package analyzer

import "github.com/oxide-sec/wisentry/internal/core/domain"

// rates holds the instantaneous and lifetime rates derived once per device
// per pass (§4.4 step 4), shared across every rule so none recomputes them.
type rates struct {
	beacon         float64 // recent_beacons / window_seconds
	probe          float64 // recent_probes / window_seconds
	deauth         float64 // recent_deauths / window_seconds
	lifetimeBeacon float64 // beacon_count / total_seconds
}

// Thresholds bundles the tunable constants rules compare against (§6).
// Application wiring fills this from config; DefaultThresholds matches the
// spec's stated defaults.
type Thresholds struct {
	BeaconSpam      float64
	DeauthAttack    float64
	ProbeFlood      float64
	AttackDetection float64
}

// DefaultThresholds are the defaults given in §6's constants table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BeaconSpam:      2.0,
		DeauthAttack:    1.0,
		ProbeFlood:      5.0,
		AttackDetection: 2.0,
	}
}

// ruleOutcome is what one rule contributes to a pass: a weight added to
// risk_score and, optionally, a category assignment.
type ruleOutcome struct {
	fired         bool
	weight        float64
	category      domain.ThreatCategory
	unconditional bool // set category even if suspected != Unknown
}

// Rule is one numbered scoring rule from §4.4's table. Rules run in a fixed
// slice, never a map, because evaluation order is the correctness-critical
// part of category stickiness (§9).
type Rule interface {
	Name() string
	Evaluate(d *domain.TrackedDevice, r rates, th Thresholds) ruleOutcome
}

// Rule 1: r_beacon > BEACON_SPAM_THRESHOLD.
type beaconSpamRule struct{}

func (beaconSpamRule) Name() string { return "beacon_spam" }

func (beaconSpamRule) Evaluate(_ *domain.TrackedDevice, r rates, th Thresholds) ruleOutcome {
	if r.beacon > th.BeaconSpam {
		return ruleOutcome{fired: true, weight: 4.0, category: domain.ThreatBeaconSpam, unconditional: true}
	}
	return ruleOutcome{}
}

// Rule 2: r_beacon > 2*lt_beacon AND r_beacon > 1.5 — catches the onset of a
// beacon attack before the absolute rate crosses rule 1's threshold.
type beaconOnsetRule struct{}

func (beaconOnsetRule) Name() string { return "beacon_onset" }

func (beaconOnsetRule) Evaluate(_ *domain.TrackedDevice, r rates, _ Thresholds) ruleOutcome {
	if r.beacon > 2*r.lifetimeBeacon && r.beacon > 1.5 {
		return ruleOutcome{fired: true, weight: 3.0, category: domain.ThreatBeaconSpam, unconditional: false}
	}
	return ruleOutcome{}
}

// Rule 3: r_deauth > DEAUTH_ATTACK_THRESHOLD.
type deauthFloodRule struct{}

func (deauthFloodRule) Name() string { return "deauth_flood" }

func (deauthFloodRule) Evaluate(_ *domain.TrackedDevice, r rates, th Thresholds) ruleOutcome {
	if r.deauth > th.DeauthAttack {
		return ruleOutcome{fired: true, weight: 5.0, category: domain.ThreatDeauthFlood, unconditional: true}
	}
	return ruleOutcome{}
}

// Rule 4: r_probe > PROBE_FLOOD_THRESHOLD.
type probeFloodRule struct{}

func (probeFloodRule) Name() string { return "probe_flood" }

func (probeFloodRule) Evaluate(_ *domain.TrackedDevice, r rates, th Thresholds) ruleOutcome {
	if r.probe > th.ProbeFlood {
		return ruleOutcome{fired: true, weight: 4.0, category: domain.ThreatProbeFlood, unconditional: true}
	}
	return ruleOutcome{}
}

// Rule 5: |advertised_ssids| > 2.
type evilTwinSSIDRule struct{}

func (evilTwinSSIDRule) Name() string { return "evil_twin_ssid_count" }

func (evilTwinSSIDRule) Evaluate(d *domain.TrackedDevice, _ rates, _ Thresholds) ruleOutcome {
	if len(d.AdvertisedSSIDs) > 2 {
		return ruleOutcome{fired: true, weight: 3.0, category: domain.ThreatEvilTwin, unconditional: false}
	}
	return ruleOutcome{}
}

// Rule 6: r_beacon > 10 OR r_probe > 8 OR recent_beacons > 20. An amplifier;
// never assigns a category.
type highVolumeRule struct{}

func (highVolumeRule) Name() string { return "high_volume" }

func (highVolumeRule) Evaluate(d *domain.TrackedDevice, r rates, _ Thresholds) ruleOutcome {
	if r.beacon > 10 || r.probe > 8 || d.RecentBeacons > 20 {
		return ruleOutcome{fired: true, weight: 2.0}
	}
	return ruleOutcome{}
}

// Rule 7: recent_beacons + recent_probes + recent_deauths > 15. An
// amplifier; never assigns a category.
type windowTotalRule struct{}

func (windowTotalRule) Name() string { return "window_total" }

func (windowTotalRule) Evaluate(d *domain.TrackedDevice, _ rates, _ Thresholds) ruleOutcome {
	if d.RecentBeacons+d.RecentProbes+d.RecentDeauths > 15 {
		return ruleOutcome{fired: true, weight: 2.0}
	}
	return ruleOutcome{}
}

// defaultRules returns the seven rules in the fixed order §4.4 specifies.
// This ordering must never change: heavy single-indicator rules (1, 3, 4)
// dominate category assignment, rule 2 catches onset, rules 5-7 amplify.
func defaultRules() []Rule {
	return []Rule{
		beaconSpamRule{},
		beaconOnsetRule{},
		deauthFloodRule{},
		probeFloodRule{},
		evilTwinSSIDRule{},
		highVolumeRule{},
		windowTotalRule{},
	}
}
