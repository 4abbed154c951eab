// Package backend exposes the loyalty engine over HTTP.
package backend

import (
	"time"

	"github.com/disgoorg/loyalty-engine/backend/handlers"
	"github.com/disgoorg/loyalty-engine/backend/middleware"
	"github.com/disgoorg/loyalty-engine/loyalty"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber app with global middleware and every route.
func NewApp(webApp *handlers.WebApp, cfg loyalty.HTTPConfig) *fiber.App {
	fiberCfg := fiber.Config{
		AppName:               "Loyalty Engine API",
		ServerHeader:          "Loyalty-Engine",
		ErrorHandler:          middleware.CustomErrorHandler,
		BodyLimit:             cfg.BodyLimit,
		ReadTimeout:           cfg.ReadTimeout.Duration,
		DisableStartupMessage: true,
	}
	if len(cfg.TrustedProxies) > 0 {
		fiberCfg.ProxyHeader = fiber.HeaderXForwardedFor
		fiberCfg.EnableTrustedProxyCheck = true
		fiberCfg.TrustedProxies = cfg.TrustedProxies
		fiberCfg.EnableIPValidation = true
	}
	app := fiber.New(fiberCfg)

	app.Use(recover.New())
	app.Use(middleware.LoggingMiddleware())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	if cfg.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowOrigins,
			AllowMethods: "GET,POST,PUT,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept",
		}))
	}

	SetupRoutes(app, webApp, cfg)
	return app
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, webApp *handlers.WebApp, cfg loyalty.HTTPConfig) {
	app.Get("/healthz", handlers.HealthCheck(webApp))

	v1 := app.Group("/v1", middleware.RateLimit(cfg.RateLimit, time.Minute))

	ev := v1.Group("/events")
	ev.Post("/orders", handlers.SubmitOrder(webApp))
	ev.Post("/referrals", handlers.SubmitReferral(webApp))

	v1.Post("/purchases", handlers.Purchase(webApp))
	v1.Get("/shop", handlers.ListShop(webApp))
	v1.Get("/tiers", handlers.ListTiers(webApp))

	users := v1.Group("/users")
	users.Post("/", middleware.AuditLogMiddleware("create_user"), handlers.CreateUser(webApp))
	users.Get("/:id/ledger", handlers.GetLedger(webApp))
	users.Get("/:id/inventory", handlers.GetInventory(webApp))
	users.Get("/:id/quests", handlers.GetQuests(webApp))
	users.Put("/:id/style", handlers.EquipStyle(webApp))
	users.Put("/:id/progression", middleware.AuditLogMiddleware("set_progression"), handlers.SetProgression(webApp))

	app.Use(handlers.NotFound)
}
