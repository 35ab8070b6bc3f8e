package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/exseed/exseed/config"
	"github.com/exseed/exseed/controllers"
	"github.com/exseed/exseed/middleware"
	"github.com/exseed/exseed/services"
	"github.com/exseed/exseed/utils"
)

// SetupRouter wires routes, middlewares, engines and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(middleware.RequestID())
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(middleware.RequestID())
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))
	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	rules := services.RulesFromConfig(cfg)
	rotation := services.NewRotationService(db, rules)
	scoring := services.NewScoringService(db, rotation, rules)
	leaderboard := services.NewLeaderboardService(db, rules)

	authController := controllers.NewAuthController(db)
	profileController := controllers.NewProfileController(db)
	spotController := controllers.NewSpotController(db, rotation)
	attendanceController := controllers.NewAttendanceController(db, scoring)
	leaderboardController := controllers.NewLeaderboardController(leaderboard)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/:provider/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/:provider/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	// Public endpoints
	api.GET("/stats", statsController.GetStats)
	api.GET("/spots/today", spotController.TodaySpot)
	api.GET("/avatars", profileController.ListAvatars)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/profile/pledge", profileController.TakePledge)
	protected.PATCH("/profile/title", profileController.UpdateTitle)
	protected.PATCH("/profile/avatar", profileController.ChooseAvatar)
	protected.POST("/attendance/checkin", attendanceController.Checkin)
	protected.GET("/attendance/status", attendanceController.Status)
	protected.GET("/leaderboard", leaderboardController.GetLeaderboard)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired(config.IsAdmin))
	admin.GET("/spots", spotController.ListSpots)
	admin.POST("/spots", spotController.CreateSpot)
	admin.PATCH("/spots/:id", spotController.UpdateSpot)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
