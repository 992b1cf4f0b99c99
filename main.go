package main

import (
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/models"
	"github.com/teatime/teashop-api/routes"
	"github.com/teatime/teashop-api/services"
	"github.com/teatime/teashop-api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Logger.Fatalf("Failed to load configuration: %v", err)
	}
	utils.InitLogger(cfg.LogLevel, cfg.IsProduction())
	utils.Logger.WithField("env", cfg.GoEnv).Info("Starting Teashop API server...")

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		utils.Logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	if err := models.Migrate(config.GetDB()); err != nil {
		utils.Logger.Fatalf("Failed to migrate database: %v", err)
	}
	utils.Logger.Info("Database migration completed successfully")

	initImageStorage(cfg)

	router := routes.SetupRouter(cfg)

	// Start server
	addr := ":" + cfg.Port
	utils.Logger.Infof("Server is running on http://localhost%s", addr)
	if err := router.Run(addr); err != nil {
		utils.Logger.Fatalf("Failed to start server: %v", err)
	}
}

// initImageStorage uses S3 when a bucket is configured and the local upload directory otherwise
func initImageStorage(cfg *config.Config) {
	if !cfg.UsesS3() {
		services.InitLocalImageService(cfg.UploadDir)
		utils.Logger.WithField("dir", cfg.UploadDir).Info("Storing images on local disk")
		return
	}

	s3Service, err := services.InitS3Service(cfg)
	if err != nil {
		utils.Logger.Fatalf("Failed to initialize S3 service: %v", err)
	}
	services.InitImageService(s3Service)
	utils.Logger.WithField("bucket", cfg.AWSS3Bucket).Info("Storing images in S3")
}
