// @title        Employee Management API
// @version      1.0
// @description  Role-gated employee directory with session login and CSV reports.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/99minutos/employee-management/internal/api"
	"github.com/99minutos/employee-management/internal/api/handler"
	"github.com/99minutos/employee-management/internal/core/domain"
	"github.com/99minutos/employee-management/internal/core/ports"
	"github.com/99minutos/employee-management/internal/core/service"
	"github.com/99minutos/employee-management/internal/infrastructure/db/memory"
	mongodb "github.com/99minutos/employee-management/internal/infrastructure/db/mongo"
	redisdb "github.com/99minutos/employee-management/internal/infrastructure/db/redis"
	"github.com/99minutos/employee-management/internal/infrastructure/storage"
	"github.com/99minutos/employee-management/internal/pkg/config"
	"github.com/99minutos/employee-management/pkg/logger"
	"github.com/99minutos/employee-management/pkg/password"
	"github.com/99minutos/employee-management/pkg/sessiontoken"
)

const shutdownTimeout = 15 * time.Second

type repositories struct {
	users     ports.UserRepository
	roles     ports.RoleRepository
	employees ports.EmployeeRepository
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "employee-management",
	})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := make(map[string]handler.Check)

	// --- Storage ---
	var repos repositories
	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store, data is lost on restart")
		repos = repositories{
			users:     memory.NewUserRepository(),
			roles:     memory.NewRoleRepository(),
			employees: memory.NewEmployeeRepository(),
		}
	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		repos = repositories{
			users:     mongodb.NewUserRepository(db),
			roles:     mongodb.NewRoleRepository(db),
			employees: mongodb.NewEmployeeRepository(db),
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
	}

	if err := repos.roles.Seed(ctx, domain.Roles...); err != nil {
		return err
	}

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer redisClient.Close()
	checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }

	var archive ports.ReportArchive
	if cfg.Report.ArchiveDir != "" {
		disk, err := storage.NewDiskArchive(cfg.Report.ArchiveDir)
		if err != nil {
			return err
		}
		archive = disk
		log.Info().Str("dir", cfg.Report.ArchiveDir).Msg("report archiving enabled")
	}

	// --- Services ---
	authService := service.NewAuthService(
		repos.users,
		repos.roles,
		redisdb.NewSessionStore(redisClient),
		password.NewHasher(cfg.Session.BcryptCost),
		cfg.Session.IdleTimeout,
		log.With().Str("component", "auth").Logger(),
	)
	employeeService := service.NewEmployeeService(repos.employees, log.With().Str("component", "employees").Logger())
	reportService := service.NewReportService(repos.employees, archive, log.With().Str("component", "reports").Logger())

	e, err := api.NewRouter(api.Dependencies{
		Auth:         authService,
		Employees:    employeeService,
		Reports:      reportService,
		Signer:       sessiontoken.NewSigner(cfg.Session.Secret),
		SecureCookie: !cfg.IsDevelopment(),
		HealthChecks: checks,
		Logger:       log,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
