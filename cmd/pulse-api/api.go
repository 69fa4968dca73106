// Package main provides the Pulse API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/contractpulse/pulse/pkg/eventbus"
	"github.com/contractpulse/pulse/pkg/notification"
	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/steps"
	"github.com/contractpulse/pulse/pkg/web"
	"github.com/contractpulse/pulse/pkg/workflow"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	dispatcher  *notification.Dispatcher
	registry    *steps.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	dispatcher *notification.Dispatcher,
	registry *steps.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		dispatcher:  dispatcher,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	runner := workflow.NewRunner(a.persistence, a.registry, a.logger)
	handlers := web.NewAPIHandlers(a.persistence, a.dispatcher, runner, a.eventBus, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Pulse API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
