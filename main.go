package main

import (
	"time"

	"github.com/ryanmoffett1/harmonydrill/internal/config"
	"github.com/ryanmoffett1/harmonydrill/internal/database"
	"github.com/ryanmoffett1/harmonydrill/internal/logging"
	"github.com/ryanmoffett1/harmonydrill/internal/router"
	"github.com/ryanmoffett1/harmonydrill/internal/services"
	"github.com/ryanmoffett1/harmonydrill/internal/theory"

	"go.uber.org/zap"
)

func main() {
	// Bootstrap logger for config loading; replaced once the logging
	// config is known.
	bootLog, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize bootstrap logger: " + err.Error())
	}

	if err := config.Init(".", bootLog); err != nil {
		bootLog.Fatal("Failed to load config", zap.Error(err))
	}

	log, err := logging.Init(logging.Rotation{
		Directory:  config.Conf.Logging.Directory,
		MaxSize:    config.Conf.Logging.MaxSize,
		MaxBackups: config.Conf.Logging.MaxBackups,
		MaxAge:     config.Conf.Logging.MaxAge,
		Compress:   config.Conf.Logging.Compress,
	})
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	database.Init(log)

	// Chord and cadence catalog, optionally overridden from YAML.
	catalog := theory.DefaultCatalog()
	if path := config.Conf.Practice.CatalogPath; path != "" {
		catalog, err = theory.LoadCatalog(path)
		if err != nil {
			log.Fatal("Failed to load catalog", zap.String("path", path), zap.Error(err))
		}
	}

	r := router.Setup(log, catalog)

	ticker := services.NewReviewTicker(log, time.Hour)
	ticker.Start()

	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
