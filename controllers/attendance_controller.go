package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/exseed/exseed/middleware"
	"github.com/exseed/exseed/models"
	"github.com/exseed/exseed/services"
	"github.com/exseed/exseed/utils"
)

// AttendanceController handles daily check-ins against the featured spot.
type AttendanceController struct {
	db      *gorm.DB
	scoring *services.ScoringService
}

// NewAttendanceController creates an AttendanceController.
func NewAttendanceController(db *gorm.DB, scoring *services.ScoringService) *AttendanceController {
	return &AttendanceController{db: db, scoring: scoring}
}

// Checkin records the user's rated attendance at today's spot and returns
// the updated totals.
func (a *AttendanceController) Checkin(ctx *gin.Context) {
	var req struct {
		RatingStars int `json:"rating_stars" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	userID := ctx.GetUint(middleware.ContextUserIDKey)
	now := time.Now()

	result, err := a.scoring.RegisterAttendance(userID, now, req.RatingStars, now)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidRating):
			utils.Error(ctx, http.StatusBadRequest, 40031, "rating must be between 1 and 5 stars")
		case errors.Is(err, services.ErrOutsideWindow):
			utils.Error(ctx, http.StatusForbidden, 40302, "check-in window is closed")
		case errors.Is(err, services.ErrNoSpotToday):
			utils.Error(ctx, http.StatusNotFound, 40404, "no spot assigned for today")
		case errors.Is(err, services.ErrAlreadyRegistered):
			utils.Error(ctx, http.StatusConflict, 40903, "already checked in today")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to record check-in")
		}
		return
	}

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.InvalidateByPrefix("cache:spot:today:")
	utils.Success(ctx, result)
}

// Status reports whether the user has checked in today and their totals.
func (a *AttendanceController) Status(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	day := services.DateOnly(time.Now())

	var stats models.UserStats
	if err := a.db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40402, "profile not found")
		return
	}

	checkedIn := stats.LastCheckinDate != nil && services.DateOnly(*stats.LastCheckinDate).Equal(day)

	utils.Success(ctx, gin.H{
		"checked_in_today": checkedIn,
		"total_points":     stats.TotalPoints,
		"current_streak":   stats.CurrentStreak,
	})
}
