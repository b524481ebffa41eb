package main

import (
	"fmt"

	"training-copilot/config"
	apiexport "training-copilot/internal/api/export"
	apigenerate "training-copilot/internal/api/generate"
	"training-copilot/internal/api/healthcheck"
	apileads "training-copilot/internal/api/leads"
	"training-copilot/internal/api/parse"
	"training-copilot/internal/core/extract"
	coregen "training-copilot/internal/core/generate"
	coreleads "training-copilot/internal/core/leads"
	"training-copilot/internal/middleware"
	"training-copilot/pkg/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	gocache "github.com/patrickmn/go-cache"
)

func main() {
	cfg := config.Cfg

	app := fiber.New(fiber.Config{
		AppName:     cfg.Server.AppName,
		BodyLimit:   cfg.Server.BodyLimit,
		Concurrency: cfg.Server.Concurrency,
	})

	app.Use(middleware.PanicRecovery())
	app.Use(middleware.ConnectionLimit(middleware.NewConnectionLimiter(cfg.Server.Concurrency)))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Cors.AllowOrigins,
		AllowMethods: cfg.Cors.AllowMethods,
		AllowHeaders: cfg.Cors.AllowHeaders,
	}))

	extractor := extract.New(
		gocache.New(cfg.Extract.CacheTTL, 0),
		cfg.Extract.MaxBytes,
		cfg.Extract.MaxPages,
		cfg.Extract.Timeout,
	)
	backend, err := coregen.NewOpenAIBackend(cfg.OpenAI.Key, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
	if err != nil {
		logger.Fatal(err, "openai backend init failed")
	}
	genSvc := coregen.NewService(backend, cfg.Generate.Timeout, coregen.Limits{
		QuizTextRunes:     cfg.Generate.QuizTextLimit,
		FeedbackTextRunes: cfg.Generate.FeedbackTextLimit,
	})
	leadSvc := coreleads.NewService(cfg.Leads.LogPath, cfg.Leads.ForwardURL)

	healthcheck.RegisterRoutes(app)

	api := app.Group("/api")
	parse.RegisterRoutes(api, extractor)
	apigenerate.RegisterRoutes(api, genSvc)
	apiexport.RegisterRoutes(api)
	apileads.RegisterRoutes(api, leadSvc)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Error(err, "server error")
	}
}
