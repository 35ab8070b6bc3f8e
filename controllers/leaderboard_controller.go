package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/exseed/exseed/middleware"
	"github.com/exseed/exseed/services"
	"github.com/exseed/exseed/utils"
)

// LeaderboardController serves the ranked views.
type LeaderboardController struct {
	leaderboard *services.LeaderboardService
}

// NewLeaderboardController creates a LeaderboardController.
func NewLeaderboardController(leaderboard *services.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{leaderboard: leaderboard}
}

// GetLeaderboard returns the top block plus the requesting user's
// neighborhood. The metric query parameter picks points or streak ordering.
// Cached briefly per metric and user; check-ins invalidate the prefix.
func (l *LeaderboardController) GetLeaderboard(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	metric := services.MetricPoints
	if ctx.Query("metric") == string(services.MetricStreak) {
		metric = services.MetricStreak
	}

	cacheKey := fmt.Sprintf("cache:leaderboard:%s:%d", metric, userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	window, err := l.leaderboard.ComputeWindow(userID, metric)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to compute leaderboard")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: window}
	utils.CacheSetJSON(cacheKey, wrapper, 30*time.Second)
	utils.Success(ctx, window)
}
