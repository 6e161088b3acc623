package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/employee-management/docs"
	"github.com/99minutos/employee-management/internal/api/handler"
	"github.com/99minutos/employee-management/internal/api/middleware"
	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/core/ports"
	"github.com/99minutos/employee-management/pkg/sessiontoken"
)

// Dependencies is everything the HTTP layer needs from the composition root.
type Dependencies struct {
	Auth      ports.AuthService
	Employees ports.EmployeeService
	Reports   ports.ReportService
	Signer    *sessiontoken.Signer

	// SecureCookie sets the Secure attribute on the session cookie.
	SecureCookie bool
	// HealthChecks are run by /health/ready, keyed by dependency name.
	HealthChecks map[string]handler.Check

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	httpMetrics, err := echoprometheus.MiddlewareConfig{
		Namespace:  "ems",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}.ToMiddleware()
	if err != nil {
		return nil, err
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(httpMetrics)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Signer, deps.SecureCookie)
	employeeHandler := handler.NewEmployeeHandler(deps.Employees)
	reportHandler := handler.NewReportHandler(deps.Reports)
	healthHandler := handler.NewHealthHandler(deps.HealthChecks)

	session := middleware.Session(deps.Auth, deps.Signer)
	guard := func(res domain.Resource) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{session, middleware.Authorize(res)}
	}

	// --- Public routes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.POST("/auth/register", authHandler.Register)
	e.GET("/auth/login", authHandler.LoginPage)
	e.POST("/auth/login", authHandler.Login)
	e.GET("/end", authHandler.End)

	// --- Any authenticated role ---
	e.POST("/auth/logout", authHandler.Logout, guard(domain.ResourceSession)...)
	e.GET("/auth/me", authHandler.Me, guard(domain.ResourceSession)...)
	e.GET("/home", authHandler.Home, guard(domain.ResourceSession)...)

	// --- Admin ---
	e.GET("/employees", employeeHandler.List, guard(domain.ResourceEmployeeList)...)
	e.POST("/employees", employeeHandler.Create, guard(domain.ResourceEmployeeCreate)...)
	e.GET("/employees/filter", employeeHandler.Filter, guard(domain.ResourceEmployeeFilter)...)
	e.GET("/employees/report", reportHandler.ExportEmployees, guard(domain.ResourceEmployeeReport)...)
	e.GET("/employees/report/department/export", reportHandler.ExportByDepartment, guard(domain.ResourceEmployeeReport)...)
	e.GET("/employees/report/job-title/export", reportHandler.ExportByJobTitle, guard(domain.ResourceEmployeeReport)...)
	e.GET("/employees/:id", employeeHandler.Get, guard(domain.ResourceEmployeeRead)...)
	e.PUT("/employees/:id", employeeHandler.Update, guard(domain.ResourceEmployeeUpdate)...)
	e.DELETE("/employees/:id", employeeHandler.Delete, guard(domain.ResourceEmployeeDelete)...)

	// --- Manager ---
	e.GET("/view", employeeHandler.ViewAll, guard(domain.ResourceDirectoryList)...)
	e.GET("/view/:id", employeeHandler.ViewOne, guard(domain.ResourceDirectoryRead)...)

	// --- Employee ---
	e.GET("/profile/:id", employeeHandler.Profile, guard(domain.ResourceProfileRead)...)

	return e, nil
}

// requestLogger writes one zerolog line per request.
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
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
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
