// Package main provides the Flowkit API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hdts/flowkit/pkg/eventbus"
	"github.com/hdts/flowkit/pkg/otelhelper"
	"github.com/hdts/flowkit/pkg/persistence"
	"github.com/hdts/flowkit/pkg/services"
	"github.com/hdts/flowkit/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	validate    *validator.Validate
	tracer      trace.Tracer
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		tracer:      tracer,
	}
}

// traceRequests starts one span per request. Installed only when a tracer is
// configured.
func (a *API) traceRequests(c fiber.Ctx) error {
	ctx, span := otelhelper.StartSpan(c.Context(), a.tracer, c.Method()+" "+c.Path(),
		attribute.String("http.method", c.Method()),
		attribute.String("http.target", c.Path()),
		attribute.String(otelhelper.WorkflowIDKey, c.Params("id")),
	)
	defer span.End()

	c.SetContext(ctx)

	err := c.Next()
	if err != nil {
		otelhelper.SetError(span, err)
	}

	span.SetAttributes(attribute.Int("http.status_code", c.Response().StatusCode()))

	return err
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence, a.eventBus, nil)

	handlers := web.NewAPIHandlers(workflowService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	if a.tracer != nil {
		app.Use(a.traceRequests)
	}

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowkit API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/publish", handlers.PublishWorkflow)
	w.Post("/:id/validate", handlers.ValidateWorkflow)
	w.Get("/:id/export", handlers.ExportWorkflow)
	w.Post("/:id/arrange", handlers.ArrangeWorkflow)
	w.Post("/:id/apply-template/:name", handlers.ApplyTemplate)
	w.Get("/:id/projections", handlers.GetProjections)

	// Step endpoints:
	w.Post("/:id/steps", handlers.CreateStep)
	w.Patch("/:id/steps/:stepId", handlers.UpdateStep)
	w.Delete("/:id/steps/:stepId", handlers.DeleteStep)

	// Transition endpoints:
	w.Post("/:id/transitions", handlers.CreateTransition)
	w.Patch("/:id/transitions/:transitionId", handlers.UpdateTransition)
	w.Delete("/:id/transitions/:transitionId", handlers.DeleteTransition)
	w.Post("/:id/connect", handlers.Connect)

	app.Get("/templates", handlers.GetTemplates)
	app.Get("/roles", handlers.GetRoles)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
