package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/exseed/exseed/models"
	"github.com/exseed/exseed/services"
	"github.com/exseed/exseed/utils"
)

// StatsController provides aggregate app statistics.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate statistics for the app.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var spotCount int64
	var todayAttendance int64
	var dailyActive int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		// Fallback to 0 instead of failing the whole endpoint
		userCount = 0
	}

	if err := s.db.Model(&models.Spot{}).Count(&spotCount).Error; err != nil {
		spotCount = 0
	}

	day := services.DateOnly(time.Now())

	var rec models.SpotRecord
	if err := s.db.Where("date = ?", day).First(&rec).Error; err == nil {
		todayAttendance = int64(rec.AttendanceCount)
	}

	// Daily active (PV-based): sum of today's page views across all paths
	if err := s.db.Model(&models.PageView{}).
		Where("date = ?", day).
		Select("COALESCE(SUM(count),0)").
		Scan(&dailyActive).Error; err != nil {
		dailyActive = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":         userCount,
		"spot_count":         spotCount,
		"today_attendance":   todayAttendance,
		"daily_active_count": dailyActive,
	})
}
