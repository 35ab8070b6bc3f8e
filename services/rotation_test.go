package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exseed/exseed/models"
)

func TestEnsureTodaysSpotIsStableForTheDay(t *testing.T) {
	db := newTestDB(t)
	createSpot(t, db, "Library Steps")
	createSpot(t, db, "Clock Tower")
	createSpot(t, db, "Rose Garden")

	svc := NewRotationService(db, DefaultRules())
	day := time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC)

	first, err := svc.EnsureTodaysSpot(day)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := svc.EnsureTodaysSpot(day)
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	}

	var count int64
	require.NoError(t, db.Model(&models.SpotRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureTodaysSpotAvoidsBackToBackRepeat(t *testing.T) {
	db := newTestDB(t)
	createSpot(t, db, "Library Steps")
	createSpot(t, db, "Clock Tower")

	svc := NewRotationService(db, DefaultRules())
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	var prevID uint
	for i := 0; i < 10; i++ {
		spot, err := svc.EnsureTodaysSpot(start.AddDate(0, 0, i))
		require.NoError(t, err)
		if prevID != 0 {
			assert.NotEqual(t, prevID, spot.ID, "day %d repeated yesterday's spot", i)
		}
		prevID = spot.ID
	}
}

func TestEnsureTodaysSpotSingleCandidateRepeats(t *testing.T) {
	db := newTestDB(t)
	only := createSpot(t, db, "Library Steps")

	svc := NewRotationService(db, DefaultRules())
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	first, err := svc.EnsureTodaysSpot(day)
	require.NoError(t, err)
	assert.Equal(t, only.ID, first.ID)

	second, err := svc.EnsureTodaysSpot(day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, only.ID, second.ID)
}

func TestEnsureTodaysSpotEmptyCatalogue(t *testing.T) {
	db := newTestDB(t)
	svc := NewRotationService(db, DefaultRules())

	_, err := svc.EnsureTodaysSpot(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrNoSpotsAvailable)
}

func TestEnsureTodaysRecordPreloadsSpot(t *testing.T) {
	db := newTestDB(t)
	spot := createSpot(t, db, "Library Steps")

	svc := NewRotationService(db, DefaultRules())
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	rec, err := svc.EnsureTodaysRecord(day)
	require.NoError(t, err)
	assert.Equal(t, spot.ID, rec.SpotID)
	assert.Equal(t, spot.Name, rec.Spot.Name)
	assert.True(t, rec.Date.Equal(DateOnly(day)))

	// Re-read path must also carry the association.
	rec2, err := svc.EnsureTodaysRecord(day)
	require.NoError(t, err)
	assert.Equal(t, spot.Name, rec2.Spot.Name)
}
