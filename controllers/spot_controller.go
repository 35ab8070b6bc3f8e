package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/exseed/exseed/models"
	"github.com/exseed/exseed/services"
	"github.com/exseed/exseed/utils"
)

// SpotController exposes the day's featured spot and the admin catalogue.
type SpotController struct {
	db       *gorm.DB
	rotation *services.RotationService
}

// NewSpotController creates a SpotController over the rotation engine.
func NewSpotController(db *gorm.DB, rotation *services.RotationService) *SpotController {
	return &SpotController{db: db, rotation: rotation}
}

// TodaySpot returns today's featured spot with the coordinates the client
// compass needs. The first request of the day triggers the draw.
func (s *SpotController) TodaySpot(ctx *gin.Context) {
	day := services.DateOnly(time.Now())
	cacheKey := "cache:spot:today:" + day.Format("2006-01-02")
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	rec, err := s.rotation.EnsureTodaysRecord(time.Now())
	if err != nil {
		if errors.Is(err, services.ErrNoSpotsAvailable) {
			utils.Error(ctx, http.StatusNotFound, 40404, "no spot assigned for today")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to resolve today's spot")
		return
	}

	payload := gin.H{
		"date": day.Format("2006-01-02"),
		"spot": gin.H{
			"id":                 rec.Spot.ID,
			"name":               rec.Spot.Name,
			"description":        rec.Spot.Description,
			"latitude":           rec.Spot.Latitude,
			"longitude":          rec.Spot.Longitude,
			"image_url":          rec.Spot.ImageURL,
			"average_attendance": rec.Spot.AverageAttendance,
		},
		"attendance_count": rec.AttendanceCount,
	}
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON(cacheKey, wrapper, 30*time.Second)
	utils.Success(ctx, payload)
}

// ListSpots returns the full spot catalogue.
func (s *SpotController) ListSpots(ctx *gin.Context) {
	var spots []models.Spot
	if err := s.db.Order("id").Find(&spots).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list spots")
		return
	}
	utils.Success(ctx, gin.H{"items": spots})
}

// CreateSpot adds a new location to the rotation pool. Admin only.
func (s *SpotController) CreateSpot(ctx *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required,min=2,max=100"`
		Description string  `json:"description"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		ImageURL    string  `json:"image_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	if req.Latitude < -90 || req.Latitude > 90 {
		utils.Error(ctx, http.StatusBadRequest, 40021, "latitude out of range")
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		utils.Error(ctx, http.StatusBadRequest, 40022, "longitude out of range")
		return
	}

	spot := models.Spot{
		Name:        utils.SanitizeStrict(strings.TrimSpace(req.Name)),
		Description: utils.Sanitize(strings.TrimSpace(req.Description)),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}
	if spot.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "name must not be empty")
		return
	}

	if err := s.db.Create(&spot).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40902, "spot name already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to create spot")
		return
	}

	utils.Success(ctx, spot)
}

// UpdateSpot edits a catalogue entry. Coordinates keep their values when the
// request omits them.
func (s *SpotController) UpdateSpot(ctx *gin.Context) {
	var spot models.Spot
	if err := s.db.First(&spot, ctx.Param("id")).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40405, "spot not found")
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
		ImageURL    *string  `json:"image_url"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	if req.Name != nil {
		name := utils.SanitizeStrict(strings.TrimSpace(*req.Name))
		if name == "" {
			utils.Error(ctx, http.StatusBadRequest, 40023, "name must not be empty")
			return
		}
		spot.Name = name
	}
	if req.Description != nil {
		spot.Description = utils.Sanitize(strings.TrimSpace(*req.Description))
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			utils.Error(ctx, http.StatusBadRequest, 40021, "latitude out of range")
			return
		}
		spot.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		if *req.Longitude < -180 || *req.Longitude > 180 {
			utils.Error(ctx, http.StatusBadRequest, 40022, "longitude out of range")
			return
		}
		spot.Longitude = *req.Longitude
	}
	if req.ImageURL != nil {
		spot.ImageURL = strings.TrimSpace(*req.ImageURL)
	}

	if err := s.db.Save(&spot).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40902, "spot name already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to update spot")
		return
	}

	utils.InvalidateByPrefix("cache:spot:today:")
	utils.Success(ctx, spot)
}
