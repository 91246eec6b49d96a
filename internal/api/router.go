package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/aayus49/spiritual-wellness/internal/api/docs"
	"github.com/aayus49/spiritual-wellness/internal/api/handler"
	"github.com/aayus49/spiritual-wellness/internal/api/middleware"
	"github.com/aayus49/spiritual-wellness/internal/core/domain"
	"github.com/aayus49/spiritual-wellness/internal/core/ports"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Stores   ports.StoreFactory
	Accounts ports.AccountService
	Tokens   middleware.TokenParser
	Checks   map[string]handler.Check
	Logger   zerolog.Logger
	// Registry receives the HTTP request metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// @title                       Spiritual Wellness API
// @version                     1.0
// @description                 Readings, practitioner directory and bookings.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "wellness",
		Registerer: registerer(d.Registry),
	}))

	// --- Probes and tooling (no auth) ---
	health := handler.NewHealthHandler(d.Checks)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer(d.Registry),
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := middleware.Auth(d.Tokens)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Accounts)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	readings := handler.NewReadingHandler(d.Stores)
	appointments := handler.NewAppointmentHandler(d.Stores)
	practitioners := handler.NewPractitionerHandler(d.Stores)
	activity := handler.NewActivityHandler(d.Stores)

	v1 := e.Group("/v1", auth)

	// Directory reads are open to guests.
	v1.GET("/directory", practitioners.Directory)
	v1.GET("/practitioners/:id", practitioners.Get)

	member := v1.Group("", middleware.RequireAccount())
	member.GET("/readings", readings.List)
	member.POST("/readings", readings.Save)
	member.DELETE("/readings/:id", readings.Delete)
	member.GET("/appointments", appointments.List)
	member.POST("/appointments", appointments.Create)
	member.PATCH("/appointments/:id/status", appointments.UpdateStatus)
	member.GET("/activity", activity.List)

	me := v1.Group("/me", middleware.RBAC(domain.RolePractitioner))
	me.PUT("/services", practitioners.UpdateMyServices)

	admin := v1.Group("/admin", middleware.RBAC(domain.RoleAdmin))
	admin.GET("/practitioners", practitioners.ListAll)
	admin.PUT("/practitioners/:id/verification", practitioners.SetVerification)

	return e
}

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
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func gatherer(r *prometheus.Registry) prometheus.Gatherer {
	if r == nil {
		return prometheus.DefaultGatherer
	}
	return r
}
