package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/mechshop/service-api/internal/api/handler"
	"github.com/mechshop/service-api/internal/api/middleware"
	"github.com/mechshop/service-api/internal/core/ports"
	"github.com/mechshop/service-api/internal/infrastructure/http/handlers"
)

// Services bundles the core services the routes call into.
type Services struct {
	Auth         ports.AuthService
	Mechanics    ports.MechanicService
	Customers    ports.CustomerService
	Tickets      ports.TicketService
	Parts        ports.PartService
	Associations ports.AssociationService
	Ranking      ports.RankingService
}

// Guards holds one authorizer per principal role.
type Guards struct {
	Mechanic middleware.Authorizer
	Customer middleware.Authorizer
}

// RouterConfig wires the router's collaborators.
type RouterConfig struct {
	Services Services
	Guards   Guards
	Health   *handlers.HealthDependenciesHandler
	Logger   zerolog.Logger

	// Registerer and Gatherer back the HTTP metrics and /metrics. Nil means the
	// process-wide default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)

	reg, gatherer := cfg.Registerer, cfg.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: reg,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	mechanicOnly := middleware.Guard(cfg.Guards.Mechanic, cfg.Logger)
	customerOnly := middleware.Guard(cfg.Guards.Customer, cfg.Logger)

	svc := cfg.Services
	authHandler := handler.NewAuthHandler(svc.Auth)
	mechanicHandler := handler.NewMechanicHandler(svc.Mechanics, svc.Associations, svc.Ranking)
	customerHandler := handler.NewCustomerHandler(svc.Customers)
	ticketHandler := handler.NewTicketHandler(svc.Tickets, svc.Associations)
	inventoryHandler := handler.NewInventoryHandler(svc.Parts, svc.Associations)

	// --- Mechanics ---
	mechanics := e.Group("/mechanics")
	mechanics.POST("/login", authHandler.MechanicLogin)
	mechanics.POST("", mechanicHandler.Register)
	mechanics.GET("", mechanicHandler.List)
	mechanics.GET("/ranked", mechanicHandler.Ranked, mechanicOnly)
	mechanics.GET("/:id", mechanicHandler.Get)
	mechanics.PUT("/:id", mechanicHandler.Update, mechanicOnly)
	mechanics.DELETE("/:id", mechanicHandler.Delete, mechanicOnly)
	mechanics.POST("/:id/tickets/:ticket_id", mechanicHandler.AssignTicket, mechanicOnly)
	mechanics.DELETE("/:id/tickets/:ticket_id", mechanicHandler.UnassignTicket, mechanicOnly)

	// --- Customers ---
	customers := e.Group("/customers")
	customers.POST("/login", authHandler.CustomerLogin)
	customers.POST("", customerHandler.Register)
	customers.GET("", customerHandler.List)
	customers.PUT("", customerHandler.UpdateSelf, customerOnly)
	customers.DELETE("", customerHandler.DeleteSelf, customerOnly)
	customers.GET("/my-tickets", customerHandler.MyTickets, customerOnly)
	customers.GET("/:id", customerHandler.Get)
	customers.DELETE("/:id", customerHandler.Delete, mechanicOnly)

	// --- Service tickets ---
	tickets := e.Group("/service_tickets")
	tickets.GET("", ticketHandler.List)
	tickets.GET("/:id", ticketHandler.Get)
	tickets.POST("", ticketHandler.Create, mechanicOnly)
	tickets.PUT("/:id", ticketHandler.Update, mechanicOnly)
	tickets.DELETE("/:id", ticketHandler.Delete, mechanicOnly)
	tickets.PUT("/:id/edit", ticketHandler.EditMechanics, mechanicOnly)
	tickets.PUT("/:id/parts", ticketHandler.EditParts, mechanicOnly)

	// --- Inventory ---
	inventory := e.Group("/inventory")
	inventory.GET("", inventoryHandler.List)
	inventory.GET("/:id", inventoryHandler.Get)
	inventory.POST("", inventoryHandler.Create, mechanicOnly)
	inventory.PUT("/:id", inventoryHandler.Update, mechanicOnly)
	inventory.DELETE("/:id", inventoryHandler.Delete, mechanicOnly)
	inventory.POST("/:ticket_id/add_part", inventoryHandler.AddPart, mechanicOnly)
	inventory.POST("/:ticket_id/remove_part", inventoryHandler.RemovePart, mechanicOnly)

	// --- Health probes (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness) // liveness  – is the process alive?
	if cfg.Health != nil {
		e.GET("/health/ready", cfg.Health.Readiness) // readiness – are dependencies up?
	}

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
