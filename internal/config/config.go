package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable named in §6's constants table plus the ambient
// flags (HTTP address, mock mode, SQLite path) §AMBIENT adds. Grounded on the
// donor's flag+env Load, same override order: flags beat env, env beats the
// default given here.
type Config struct {
	Interface string
	Addr      string
	MockMode  bool
	DBPath    string
	Debug     bool

	MaxTrackedDevices int
	BeaconSpamRate    float64
	DeauthAttackRate  float64
	ProbeFloodRate    float64
	AttackDetection   float64
	ShortWindow       time.Duration
	MinAnalysisTime   time.Duration
	ThreatTimeout     time.Duration

	// EvilPortalConfidenceThreshold is exposed per §6's constants table as a
	// tunable, but no passive-scan detector currently gates on it: §4.5 fixes
	// the rogue-SSID detector's confidence at a flat 0.6, independent of this
	// threshold. Kept as a config field so a future detector has somewhere to
	// read it from without another config-surface change.
	EvilPortalConfidenceThreshold float64
}

// Load parses command-line flags and WISENTRY_* environment variables into a
// Config. Flags take precedence over environment variables, which take
// precedence over the defaults below.
func Load() *Config {
	cfg := &Config{}

	cfg.Interface = getEnv("WISENTRY_INTERFACE", "wlan0")
	cfg.Addr = getEnv("WISENTRY_ADDR", ":8080")
	cfg.MockMode = getEnvBool("WISENTRY_MOCK", false)
	cfg.DBPath = getEnv("WISENTRY_DB", "wisentry.db")
	cfg.MaxTrackedDevices = int(getEnvFloat("WISENTRY_MAX_TRACKED_DEVICES", 50))
	cfg.BeaconSpamRate = getEnvFloat("WISENTRY_BEACON_SPAM_THRESHOLD", 2.0)
	cfg.DeauthAttackRate = getEnvFloat("WISENTRY_DEAUTH_ATTACK_THRESHOLD", 1.0)
	cfg.ProbeFloodRate = getEnvFloat("WISENTRY_PROBE_FLOOD_THRESHOLD", 5.0)
	cfg.AttackDetection = getEnvFloat("WISENTRY_ATTACK_DETECTION_THRESHOLD", 2.0)
	cfg.ShortWindow = time.Duration(getEnvFloat("WISENTRY_SHORT_WINDOW_MS", 3000)) * time.Millisecond
	cfg.MinAnalysisTime = time.Duration(getEnvFloat("WISENTRY_MIN_ANALYSIS_TIME_MS", 500)) * time.Millisecond
	cfg.ThreatTimeout = time.Duration(getEnvFloat("WISENTRY_THREAT_TIMEOUT_MS", 30000)) * time.Millisecond
	cfg.EvilPortalConfidenceThreshold = getEnvFloat("WISENTRY_EVIL_PORTAL_CONFIDENCE_THRESHOLD", 0.75)

	flag.StringVar(&cfg.Interface, "i", cfg.Interface, "network interface to put into monitor mode")
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server listen address")
	flag.BoolVar(&cfg.MockMode, "mock", cfg.MockMode, "run against FakeRadio/FakeScanner instead of real hardware")
	flag.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite detection/stats log (empty to disable, \":memory:\" for an unpersisted in-memory log)")
	flag.BoolVar(&cfg.Debug, "debug", false, "enable verbose debug logging")
	flag.IntVar(&cfg.MaxTrackedDevices, "max-tracked-devices", cfg.MaxTrackedDevices, "device table capacity")
	flag.Float64Var(&cfg.BeaconSpamRate, "beacon-spam-threshold", cfg.BeaconSpamRate, "beacons/s per MAC that trigger rule 1")
	flag.Float64Var(&cfg.DeauthAttackRate, "deauth-attack-threshold", cfg.DeauthAttackRate, "deauths/s per MAC that trigger rule 3")
	flag.Float64Var(&cfg.ProbeFloodRate, "probe-flood-threshold", cfg.ProbeFloodRate, "probes/s per MAC that trigger rule 4")
	flag.Float64Var(&cfg.AttackDetection, "attack-detection-threshold", cfg.AttackDetection, "risk score that marks a device malicious")
	flag.DurationVar(&cfg.ShortWindow, "short-window", cfg.ShortWindow, "sliding-window length for recent_* counters")
	flag.DurationVar(&cfg.MinAnalysisTime, "min-analysis-time", cfg.MinAnalysisTime, "minimum interval between analyzer passes")
	flag.DurationVar(&cfg.ThreatTimeout, "threat-timeout", cfg.ThreatTimeout, "staleness cutoff before a device is skipped by a pass")
	flag.Float64Var(&cfg.EvilPortalConfidenceThreshold, "evil-portal-confidence-threshold", cfg.EvilPortalConfidenceThreshold, "passive-scan gate (currently unconsumed, see field doc)")

	flag.Parse()

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
