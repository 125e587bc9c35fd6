package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-booking/config"
	deliveryHttp "clinic-booking/internal/delivery/http"
	"clinic-booking/internal/delivery/http/handler"
	"clinic-booking/internal/delivery/http/middleware"
	"clinic-booking/internal/domain/schedule"
	"clinic-booking/internal/infrastructure/cache"
	"clinic-booking/internal/infrastructure/database"
	"clinic-booking/internal/repository"
	"clinic-booking/internal/service"
	"clinic-booking/internal/usecase"
	"clinic-booking/pkg/jwt"
	"clinic-booking/pkg/metrics"
	"clinic-booking/pkg/validator"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const metricsNamespace = "clinic"

// App holds all dependencies for the application
type App struct {
	Config       *config.Config
	Log          *logrus.Logger
	DB           *gorm.DB
	RedisClient  *redis.Client
	Server       *http.Server
	BookingGuard *service.BookingGuard
}

// Dependencies are the external resources the HTTP stack is built on.
type Dependencies struct {
	Config   *config.Config
	Log      *logrus.Logger
	DB       *gorm.DB
	Redis    *redis.Client
	Registry *prometheus.Registry
	// Now overrides the clinic clock; nil means wall time.
	Now func() time.Time
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	app := &App{Config: cfg, Log: log}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	log.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(db, database.MigrateUp, log); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if cfg.App.Seed {
		if err := database.SeedDemoDoctors(db, log); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, log)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpHandler, guard := NewHandler(Dependencies{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Redis:    redisClient,
		Registry: registry,
	})
	app.BookingGuard = guard
	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// SetupLogger configures a JSON logger at the given level, falling back to info.
func SetupLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// NewHandler wires repositories, services, usecases and handlers into the HTTP router.
// The caller owns the returned guard and must Stop it on shutdown.
func NewHandler(deps Dependencies) (http.Handler, *service.BookingGuard) {
	cfg := deps.Config
	log := deps.Log
	db := deps.DB

	m := metrics.NewMetrics(deps.Registry, metricsNamespace)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	doctorRepo := repository.NewDoctorRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	sessionRepo := repository.NewSessionRepository(deps.Redis)
	loginAttemptRepo := repository.NewLoginAttemptRepository(deps.Redis)

	// Initialize services
	auditService := service.NewAuditService(db, log, auditLogRepo)
	calendarCache := service.NewCalendarCache(deps.Redis, cfg.Clinic.CacheTTL, log, m)
	bookingGuard := service.NewBookingGuard(log)
	loginThrottle := service.NewLoginThrottle(loginAttemptRepo, log)

	settings := usecase.ClinicSettings{
		Hours:    schedule.WorkingHours{Open: cfg.Clinic.OpenHour, Close: cfg.Clinic.CloseHour},
		Location: cfg.Location(),
		Now:      deps.Now,
	}
	if deps.Now != nil {
		loginThrottle.WithClock(deps.Now)
	}

	// Initialize usecases
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, appointmentRepo, sessionRepo, calendarCache, auditService)
	availabilityUsecase := usecase.NewAvailabilityUsecase(db, log, doctorRepo, appointmentRepo, calendarCache, settings)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, doctorRepo, appointmentRepo, bookingGuard, calendarCache, auditService, m, settings)
	authUsecase := usecase.NewAuthUsecase(db, log, cfg.Admin, doctorRepo, sessionRepo, jwtService, loginThrottle, auditService, m)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, sessionRepo, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  rate.Limit(cfg.RateLimit.RPS),
		Burst: cfg.RateLimit.Burst,
	})

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		doctorHandler,
		availabilityHandler,
		appointmentHandler,
		auditLogHandler,
		authMiddleware,
		corsMiddleware,
		rateLimiter,
		deps.Registry,
		middleware.ClientIP(cfg.App.TrustProxy),
		middleware.RequestLogger(log, m),
	)

	return router.Setup(), bookingGuard
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background workers and closes all connections (database, redis)
func (app *App) Close() {
	if app.BookingGuard != nil {
		app.BookingGuard.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
