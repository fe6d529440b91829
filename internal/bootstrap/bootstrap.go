package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/unistud/internal/app/controllers"
	appMigrations "github.com/yigit/unistud/internal/app/migrations"
	appRepos "github.com/yigit/unistud/internal/app/repositories"
	sqliteRepos "github.com/yigit/unistud/internal/app/repositories/sqlite"
	appRoutes "github.com/yigit/unistud/internal/app/routes"
	appServices "github.com/yigit/unistud/internal/app/services"
	"github.com/yigit/unistud/internal/config"
	"github.com/yigit/unistud/internal/db"
	appMiddleware "github.com/yigit/unistud/internal/middleware"
	pkgAuth "github.com/yigit/unistud/internal/pkg/auth"
	"github.com/yigit/unistud/internal/pkg/helpers"
	"github.com/yigit/unistud/internal/pkg/logger"
	"github.com/yigit/unistud/internal/pkg/metrics"
	"github.com/yigit/unistud/internal/seed"
	"github.com/yigit/unistud/migrations"
)

// Store is an opened record store with its repositories.
type Store struct {
	Driver string
	Repos  *appRepos.Repositories
	Ping   func(ctx context.Context) error
	Close  func()
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Config         *config.Config
	Store          *Store
	JWTService     *pkgAuth.JWTService
	Metrics        *metrics.Metrics
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Pretty:  cfg.Logging.Format == "text",
		Service: "unistud",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase opens the configured record store, brings its schema up to
// date and, when enabled, seeds the demo catalogue.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Store, error) {
	var (
		store *Store
		err   error
	)

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		store, err = openSQLite(ctx, cfg, lgr)
	default:
		store, err = openPostgres(ctx, cfg, lgr)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Seed.Enabled {
		if err := seed.CreateDefaultData(ctx, store.Repos.Courses, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return store, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Store, error) {
	lgr.Info().Str("host", cfg.Database.Host).Str("db", cfg.Database.DBName).Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	if err := RunMigrations(ctx, database.Pool, lgr); err != nil {
		database.Close()
		return nil, err
	}

	return &Store{
		Driver: config.DriverPostgres,
		Repos:  appRepos.NewRepositories(database.Pool),
		Ping:   database.Pool.Ping,
		Close:  database.Close,
	}, nil
}

// RunMigrations applies the embedded PostgreSQL migrations.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, lgr zerolog.Logger) error {
	lgr.Info().Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(pool, lgr).Migrate(ctx, migrations.Files, ".")
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("migrations", applied).Msg("Database migrations successfully applied.")
	return nil
}

func openSQLite(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*Store, error) {
	lgr.Info().Str("path", cfg.Database.SQLitePath).Msg("Opening embedded database...")
	handle, err := db.OpenSQLite(ctx, cfg.Database.SQLitePath)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to open sqlite database")
		return nil, err
	}

	if err := sqliteRepos.EnsureSchema(ctx, handle); err != nil {
		_ = handle.Close()
		return nil, err
	}

	return NewSQLiteStore(handle), nil
}

// NewSQLiteStore wraps an already prepared SQLite handle.
func NewSQLiteStore(handle *sql.DB) *Store {
	return &Store{
		Driver: config.DriverSQLite,
		Repos:  sqliteRepos.NewRepositories(handle),
		Ping:   handle.PingContext,
		Close:  func() { _ = handle.Close() },
	}
}

// BuildDependencies initializes services, controllers and middleware on top of store.
func BuildDependencies(cfg *config.Config, store *Store, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Config: cfg, Store: store, Logger: lgr}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.Metrics = metrics.New()

	deps.Services = appServices.New(appServices.Dependencies{
		Repos:           store.Repos,
		JWT:             deps.JWTService,
		Hasher:          pkgAuth.NewPasswordHasher(0),
		Metrics:         deps.Metrics,
		DefaultCapacity: cfg.Enrollment.DefaultMaxCapacity,
		Logger:          lgr,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, appRoutes.PublicPaths...)

	deps.Controllers = appRoutes.Controllers{
		Auth:        appControllers.NewAuthController(deps.Services.Auth, deps.Services.Students, lgr),
		Students:    appControllers.NewStudentController(deps.Services.Students),
		Courses:     appControllers.NewCourseController(deps.Services.Courses),
		Enrollments: appControllers.NewEnrollmentController(deps.Services.Enrollments),
		Health:      appControllers.NewHealthController(store.Driver, store.Ping),
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Metrics(deps.Metrics),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupMetrics(router, deps.Metrics.Handler())
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, appMiddleware.RateLimit(cfg.RateLimit))

	return router
}
