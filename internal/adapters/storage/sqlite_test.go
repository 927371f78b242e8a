package storage

import (
	"testing"
	"time"

	"github.com/oxide-sec/wisentry/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupInMemoryDB(t *testing.T) *SQLiteAdapter {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&DetectionModel{}, &StatsSnapshotModel{})
	require.NoError(t, err)

	return &SQLiteAdapter{db: db}
}

func TestPublishDetectionPersistsRow(t *testing.T) {
	adapter := setupInMemoryDB(t)

	mac := domain.MacAddress{1, 2, 3, 4, 5, 6}
	now := time.Now()
	det := domain.NewThreatDetection("det-1", mac, domain.ThreatBeaconSpam, 0.8, now, "beacon spam", domain.ActionAlert)

	adapter.PublishDetection(det)

	rows, err := adapter.RecentDetections(10)
	assert.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, "det-1", rows[0].DetectionID)
	assert.Equal(t, mac.String(), rows[0].SourceMAC)
	assert.Equal(t, string(domain.ThreatBeaconSpam), rows[0].Category)
	assert.InDelta(t, 0.8, rows[0].Confidence, 0.0001)
}

func TestRecentDetectionsOrdersByDetectedAtDescending(t *testing.T) {
	adapter := setupInMemoryDB(t)

	base := time.Now()
	mac := domain.MacAddress{1, 2, 3, 4, 5, 6}
	older := domain.NewThreatDetection("older", mac, domain.ThreatProbeFlood, 0.5, base, "", domain.ActionAlert)
	newer := domain.NewThreatDetection("newer", mac, domain.ThreatDeauthFlood, 0.9, base.Add(time.Minute), "", domain.ActionAlert)

	adapter.PublishDetection(older)
	adapter.PublishDetection(newer)

	rows, err := adapter.RecentDetections(10)
	assert.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, "newer", rows[0].DetectionID)
	assert.Equal(t, "older", rows[1].DetectionID)
}

func TestPublishStatsAndLatestStats(t *testing.T) {
	adapter := setupInMemoryDB(t)

	now := time.Now()
	stats := domain.NewDefenseStats(now)
	stats.RecordDetection(true, now)
	stats.RecordScan(3, now)

	adapter.PublishStats(stats)

	got, err := adapter.LatestStats()
	assert.NoError(t, err)
	assert.Equal(t, 1, got.ThreatsDetected)
	assert.Equal(t, 1, got.ThreatsBlocked)
	assert.Equal(t, 3, got.NetworksScanned)
}

func TestLatestStatsReturnsNotFoundWhenEmpty(t *testing.T) {
	adapter := setupInMemoryDB(t)
	_, err := adapter.LatestStats()
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
