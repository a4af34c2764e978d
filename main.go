package main

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/recipe-costing/config"
	"github.com/yeremiapane/recipe-costing/database"
	"github.com/yeremiapane/recipe-costing/router"
	"github.com/yeremiapane/recipe-costing/utils"
)

func main() {
	cfg := config.Load()
	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if cfg.GinMode == gin.ReleaseMode || cfg.GinMode == gin.TestMode {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin user: %v", err)
	}
	if cfg.AuthEnabled && cfg.JWTSecret == config.DefaultJWTSecret {
		utils.ErrorLogger.Warn("JWT_SECRET is the built-in default; set it before exposing the API")
	}

	r := router.SetupRouter(db, cfg)
	if err := r.SetTrustedProxies(nil); err != nil {
		utils.ErrorLogger.Fatal(err)
	}

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}
