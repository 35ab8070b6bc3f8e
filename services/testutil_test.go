package services

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/exseed/exseed/models"
)

var testDBSeq int64

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.UserStats{},
		&models.Avatar{},
		&models.Spot{},
		&models.SpotRecord{},
		&models.Registration{},
		&models.DailyTask{},
		&models.PageView{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{Username: username}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.UserStats{UserID: user.ID}).Error)
	return user
}

func createSpot(t *testing.T, db *gorm.DB, name string) models.Spot {
	t.Helper()
	spot := models.Spot{Name: name, Latitude: 51.5, Longitude: -0.12}
	require.NoError(t, db.Create(&spot).Error)
	return spot
}

func loadStats(t *testing.T, db *gorm.DB, userID uint) models.UserStats {
	t.Helper()
	var stats models.UserStats
	require.NoError(t, db.Where("user_id = ?", userID).First(&stats).Error)
	return stats
}

// at builds a clock reading on the given day.
func at(day time.Time, hour, min, sec int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, sec, 0, time.UTC)
}
