package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"tarvee/docs"
	"tarvee/internal/auth"
	"tarvee/internal/catalog"
	"tarvee/internal/config"
	"tarvee/internal/database"
	"tarvee/internal/database/migration"
	handlers "tarvee/internal/http/handler"
	"tarvee/internal/http/middleware"
	"tarvee/internal/logger"
	"tarvee/internal/metrics"
	"tarvee/internal/model"
	"tarvee/internal/otel"
	"tarvee/internal/repository"
	"tarvee/internal/repository/postgres"
	"tarvee/internal/service"
	"tarvee/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Tarvee API
// @version 1.0
// @description Used computer science books and notes: catalog, listings and accounts.
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logger.SetupDefault(os.Stdout, cfg.Location())

	if err := cfg.Validate(); err != nil {
		log.Error("config_invalid", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server_exit", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// PostgreSQL holds accounts, and listings unless the memory catalog is selected
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return err
	}
	imageURLs := storage.NewURLResolver(objStore, cfg.MinIO.PublicBaseURL)

	revoked, closeRevoked, err := newRevocationStore(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeRevoked()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	authSvc := auth.NewService(postgres.NewUserPostgres(db), tokens, revoked, auth.Options{
		BcryptCost:   cfg.Auth.BcryptCost,
		UserCacheTTL: cfg.Auth.UserCacheTTL,
		Logger:       log,
		Metrics:      domainMetrics,
	})

	listingRepo := newListingRepository(cfg, db, log)
	listingSvc := service.NewListingService(listingRepo, listingRepo, objStore, imageURLs, service.ListingOptions{
		MaxImageBytes: cfg.Upload.MaxImageBytes,
		Logger:        log,
		Metrics:       domainMetrics,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// Room for the image plus the text fields of the form
		BodyLimit: int(cfg.Upload.MaxImageBytes) + 1<<20,
	})

	// Outermost first: the logger renders handler errors, so everything
	// above it sees the final status.
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/metrics" || strings.HasPrefix(c.Path(), "/health")
	})))
	app.Use(promMiddleware.Handler())
	app.Use(middleware.LoggerWithWriter(os.Stdout, cfg.Location()))

	app.Get("/metrics", metrics.Handler(reg))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:           db,
		Listings:     listingSvc,
		Auth:         authSvc,
		Images:       objStore,
		CookieSecure: cfg.Auth.CookieSecure,
		Logger:       log,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server_started", slog.String("addr", addr), slog.String("catalog_backend", cfg.CatalogBackend))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_stopping")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newListingRepository picks the catalog backend. The memory store is seeded
// with demo listings when CATALOG_SEED_DEMO is on.
func newListingRepository(cfg *config.AppConfig, db *sql.DB, log *slog.Logger) repository.ListingRepository {
	if cfg.CatalogBackend == config.CatalogBackendMemory {
		var seed []model.Listing
		if cfg.SeedDemoData {
			seed = catalog.DemoListings(time.Now())
		}
		log.Info("catalog_backend", slog.String("backend", config.CatalogBackendMemory), slog.Int("seeded", len(seed)))
		return catalog.NewMemoryStore(seed)
	}
	return postgres.NewListingPostgres(db)
}

// newRevocationStore uses Redis when an address is configured so sign-outs hold
// across replicas, and the in-process cache otherwise.
func newRevocationStore(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (auth.RevocationStore, func(), error) {
	if cfg.Addr == "" {
		log.Info("revocation_store", slog.String("backend", "memory"))
		return auth.NewMemoryRevocations(time.Minute), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	log.Info("revocation_store", slog.String("backend", "redis"), slog.String("addr", cfg.Addr))
	return auth.NewRedisRevocations(client, cfg.KeyPrefix), func() { _ = client.Close() }, nil
}
