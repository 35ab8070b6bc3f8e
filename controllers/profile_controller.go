package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/exseed/exseed/middleware"
	"github.com/exseed/exseed/models"
	"github.com/exseed/exseed/utils"
)

// ProfileController handles the user's gameplay profile: pledge, title and
// avatar selection.
type ProfileController struct {
	db *gorm.DB
}

// NewProfileController creates a ProfileController.
func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db}
}

func (p *ProfileController) loadStats(ctx *gin.Context) (*models.UserStats, bool) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)
	var stats models.UserStats
	if err := p.db.Where("user_id = ?", userID).First(&stats).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "profile not found")
		} else {
			utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load profile")
		}
		return nil, false
	}
	return &stats, true
}

// TakePledge records that the user accepted the pledge. Accepting twice is a
// no-op, never an error.
func (p *ProfileController) TakePledge(ctx *gin.Context) {
	stats, ok := p.loadStats(ctx)
	if !ok {
		return
	}

	if !stats.PledgeAccepted {
		if err := p.db.Model(stats).Update("pledge_accepted", true).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to save pledge")
			return
		}
	}
	utils.Success(ctx, gin.H{"pledge_accepted": true})
}

// UpdateTitle sets the user's display title, stripped of any markup. An empty
// title clears it.
func (p *ProfileController) UpdateTitle(ctx *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request payload")
		return
	}

	title := utils.SanitizeStrict(strings.TrimSpace(req.Title))
	if len([]rune(title)) > 100 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "title too long")
		return
	}

	stats, ok := p.loadStats(ctx)
	if !ok {
		return
	}

	if err := p.db.Model(stats).Update("title", title).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to update title")
		return
	}

	utils.InvalidateByPrefix("cache:leaderboard:")
	utils.Success(ctx, gin.H{"title": title})
}

// ListAvatars returns the selectable avatar catalogue.
func (p *ProfileController) ListAvatars(ctx *gin.Context) {
	var avatars []models.Avatar
	if err := p.db.Order("id").Find(&avatars).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to list avatars")
		return
	}
	utils.Success(ctx, gin.H{"items": avatars})
}

// ChooseAvatar points the profile at one of the catalogued avatars.
func (p *ProfileController) ChooseAvatar(ctx *gin.Context) {
	var req struct {
		AvatarID uint `json:"avatar_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}

	var avatar models.Avatar
	if err := p.db.First(&avatar, req.AvatarID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40403, "avatar not found")
		return
	}

	stats, ok := p.loadStats(ctx)
	if !ok {
		return
	}

	if err := p.db.Model(stats).Update("avatar_id", avatar.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50014, "failed to choose avatar")
		return
	}
	utils.Success(ctx, gin.H{"avatar": avatar})
}
