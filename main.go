package main

import (
	"time"

	"facturation-backend/automation"
	"facturation-backend/config"
	"facturation-backend/controllers"
	"facturation-backend/database"
	"facturation-backend/logger"
	"facturation-backend/middlewares"
	"facturation-backend/routes"
	"facturation-backend/sweep"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Setup("info", "console")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := database.Connect(cfg); err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	automation.Default = automation.NewClient(cfg.AutomationURL)
	controllers.PDFRendererURL = cfg.PDFRendererURL

	app := fiber.New(fiber.Config{
		ErrorHandler: middlewares.ErrorHandler,
		BodyLimit:    cfg.BodyLimitBytes,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: false, // Bearer tokens, not cookies
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Automation-Secret",
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: time.Duration(cfg.RateLimitWinS) * time.Second,
	}))

	routes.Register(app)

	if cfg.ExpirySweepCron != "" {
		if _, err := sweep.Start(database.DB, cfg.ExpirySweepCron); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.ExpirySweepCron).Msg("invalid sweep schedule")
		}
	}

	log.Info().Str("port", cfg.Port).Msg("API server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
