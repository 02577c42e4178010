// Package main provides the Scrapeflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/scrapeflow/scrapeflow/pkg/eventbus"
	"github.com/scrapeflow/scrapeflow/pkg/persistence"
	"github.com/scrapeflow/scrapeflow/pkg/services"
	"github.com/scrapeflow/scrapeflow/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, a.eventBus)
	schedulerService := services.NewScheduler(a.persistence, a.eventBus)

	handlers := web.NewAPIHandlers(workflowService, schedulerService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Scrapeflow API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	// Node endpoints:
	w.Post("/:id/nodes", handlers.CreateNode)
	w.Patch("/:id/nodes/:nodeId", handlers.PatchNode)
	w.Delete("/:id/nodes/:nodeId", handlers.DeleteNode)

	// Connection endpoints:
	w.Post("/:id/connections", handlers.CreateConnection)
	w.Delete("/:id/connections/:connectionId", handlers.DeleteConnection)

	j := app.Group("/jobs")
	j.Get("/", handlers.GetJobs)
	j.Post("/", handlers.CreateJob)
	j.Get("/conflicts", handlers.GetConflicts)
	j.Post("/conflicts/resolve", handlers.ResolveConflict)
	j.Get("/:id", handlers.GetJob)
	j.Patch("/:id", handlers.UpdateJob)
	j.Delete("/:id", handlers.DeleteJob)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
