package main

import (
	"context"
	"time"

	"busline/config"
	"busline/di"
	"busline/helper"
	"busline/shared/logger"

	"github.com/rs/zerolog/log"
)

const seedTimeout = 30 * time.Second

// @title Busline API
// @version 1.0
// @description Bus transport booking backend with transactional seat inventory.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Get()

	logger.Init(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	app := di.InitializeService()

	ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
	if err := app.Admin.Seed(ctx); err != nil {
		logger.ErrorWithStack(err)
	}

	cancel()

	app.HTTP.Serve()
}
