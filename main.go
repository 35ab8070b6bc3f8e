package main

import (
	"github.com/exseed/exseed/config"
	"github.com/exseed/exseed/models"
	"github.com/exseed/exseed/routes"
	"github.com/exseed/exseed/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(utils.LogOptions{
		Level:      cfg.LogLevel,
		Path:       cfg.LogPath,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
		Compress:   cfg.LogCompress,
	}); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.UserStats{},
		&models.Avatar{},
		&models.Spot{},
		&models.SpotRecord{},
		&models.Registration{},
		&models.DailyTask{},
		&models.PageView{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
