package storage

import (
	"time"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DetectionModel is the GORM row for one persisted ThreatDetection. It never
// feeds back into the live device table or analyzer; it exists purely for
// offline review (§GLOSSARY "Detection log"). The PDF report is built from
// the in-memory active-threats list, not from these rows.
type DetectionModel struct {
	RowID             int64 `gorm:"primaryKey;autoIncrement"`
	DetectionID       string `gorm:"index"`
	SourceMAC         string `gorm:"index"`
	Category          string `gorm:"index"`
	Confidence        float64
	DetectedAt        time.Time `gorm:"index"`
	Description       string
	RecommendedAction string
	Active            bool
	PersistedAt       time.Time
}

// StatsSnapshotModel is one periodic DefenseStats row, for offline review.
// The stats endpoint and the PDF report read the analyzer's live stats
// instead.
type StatsSnapshotModel struct {
	RowID             int64 `gorm:"primaryKey;autoIncrement"`
	ThreatsDetected   int
	ThreatsBlocked    int
	ActiveMonitorTime time.Duration
	NetworksScanned   int
	LastUpdate        time.Time
	PersistedAt       time.Time
}

// SQLiteAdapter persists ThreatDetection rows and periodic DefenseStats
// snapshots via GORM, satisfying ports.ThreatSink and ports.StatsSink.
// Grounded on the donor's SQLiteAdapter (same gorm.Open/AutoMigrate/Silent-
// logger wiring), with the device/probe schema replaced entirely: this spec
// never persists the device table across sessions (§1 Non-goals), so there is
// no DeviceModel/ProbeModel equivalent here.
type SQLiteAdapter struct {
	db *gorm.DB
}

// NewSQLiteAdapter opens path (or ":memory:") and migrates the detection/
// stats schema.
func NewSQLiteAdapter(path string) (*SQLiteAdapter, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&DetectionModel{}, &StatsSnapshotModel{}); err != nil {
		return nil, err
	}

	db.Exec("CREATE INDEX IF NOT EXISTS idx_detections_detected_at ON detection_models(detected_at)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_detections_category ON detection_models(category)")

	return &SQLiteAdapter{db: db}, nil
}

// PublishDetection appends one detection row. Errors are swallowed: the
// ports.ThreatSink.PublishDetection contract has no error return, matching
// §7's policy that persistence failures never interrupt the analyzer pass.
func (a *SQLiteAdapter) PublishDetection(d domain.ThreatDetection) {
	model := DetectionModel{
		DetectionID:       d.ID,
		SourceMAC:         d.SourceMAC.String(),
		Category:          string(d.Category),
		Confidence:        d.Confidence,
		DetectedAt:        d.DetectedAt,
		Description:       d.Description,
		RecommendedAction: string(d.RecommendedAction),
		Active:            d.Active,
		PersistedAt:       d.DetectedAt,
	}
	a.db.Create(&model)
}

// PublishStats appends one DefenseStats snapshot row.
func (a *SQLiteAdapter) PublishStats(s domain.DefenseStats) {
	model := StatsSnapshotModel{
		ThreatsDetected:   s.ThreatsDetected,
		ThreatsBlocked:    s.ThreatsBlocked,
		ActiveMonitorTime: s.ActiveMonitorTime,
		NetworksScanned:   s.NetworksScanned,
		LastUpdate:        s.LastUpdate,
		PersistedAt:       s.LastUpdate,
	}
	a.db.Create(&model)
}

// RecentDetections returns up to limit persisted detections, most recent
// first. No HTTP route or report calls it.
func (a *SQLiteAdapter) RecentDetections(limit int) ([]DetectionModel, error) {
	var rows []DetectionModel
	if err := a.db.Order("detected_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// LatestStats returns the most recently persisted DefenseStats snapshot.
// Returns gorm.ErrRecordNotFound if nothing has been published yet.
func (a *SQLiteAdapter) LatestStats() (StatsSnapshotModel, error) {
	var row StatsSnapshotModel
	err := a.db.Order("persisted_at DESC").First(&row).Error
	return row, err
}

// Close releases the underlying database connection.
func (a *SQLiteAdapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
