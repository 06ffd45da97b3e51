package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"scholarship-fund.backend/internal/config"
	"scholarship-fund.backend/internal/infrastructure/blockchain"
	"scholarship-fund.backend/internal/infrastructure/datasources/postgres"
	"scholarship-fund.backend/internal/infrastructure/jobs"
	"scholarship-fund.backend/internal/infrastructure/messaging"
	"scholarship-fund.backend/internal/infrastructure/models"
	"scholarship-fund.backend/internal/infrastructure/repositories"
	"scholarship-fund.backend/internal/interfaces/http/handlers"
	"scholarship-fund.backend/internal/interfaces/http/middleware"
	"scholarship-fund.backend/internal/usecases"
	"scholarship-fund.backend/pkg/jwt"
	"scholarship-fund.backend/pkg/logger"
	"scholarship-fund.backend/pkg/metrics"
	"scholarship-fund.backend/pkg/redis"
	"scholarship-fund.backend/pkg/validation"
)

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.Init
	initRedis       = redis.Init
	openDB          = openDatabase
	newSessionStore = redis.NewSessionStore
	newEventBus     = messaging.NewEventBus
	runServer       = func(srv *http.Server) error { return srv.ListenAndServe() }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

// openDatabase opens sqlite for DB_DRIVER=sqlite, otherwise a lib/pq pool
// handed to gorm.
func openDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Driver == "sqlite" {
		return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
	}
	sqlDB, err := postgres.NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	return postgres.OpenGorm(sqlDB)
}

func parseOwner(raw string) (common.Address, error) {
	if raw == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("REGISTRY_OWNER_ADDRESS %q is not a hex address", raw)
	}
	return common.HexToAddress(raw), nil
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	owner, err := parseOwner(cfg.Registry.OwnerAddress)
	if err != nil {
		return err
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	log.Printf("✅ Connected to database (%s)", cfg.Database.Driver)

	if cfg.Registry.AutoMigrate {
		if err := models.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	m := metrics.New()
	validation.RegisterBindingValidators()

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	bus, err := newEventBus(cfg.Messaging, logger.GetLogger(), m)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	defer bus.Close()

	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()

	// Repositories
	uow := repositories.NewUnitOfWork(db)
	stateRepo := repositories.NewRegistryStateRepository(db)
	studentRepo := repositories.NewStudentRepository(db)
	eventRepo := repositories.NewFundEventRepository(db)
	accountRepo := repositories.NewPayoutAccountRepository(db)

	// Usecases
	transferer := usecases.NewLedgerTransferer(accountRepo)
	registryUsecase := usecases.NewRegistryUsecase(uow, stateRepo, studentRepo, eventRepo, transferer, bus, m)
	authUsecase := usecases.NewAuthUsecase(redis.NewChallengeStore(cfg.Security.ChallengeTTL), registryUsecase, jwtService)
	eventUsecase := usecases.NewEventUsecase(eventRepo, bus)
	auditUsecase := usecases.NewOnchainAuditUsecase(registryUsecase, clientFactory, cfg.Blockchain, m)

	state, err := registryUsecase.EnsureInitialized(context.Background(), owner)
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}
	log.Printf("📒 Registry owner: %s (paused=%t)", state.Owner.Hex(), state.Paused)

	// Handlers
	registryHandler := handlers.NewRegistryHandler(registryUsecase, transferer)
	authHandler := handlers.NewAuthHandler(authUsecase, sessionStore, cfg.JWT.AccessExpiry)
	eventHandler := handlers.NewEventHandler(eventUsecase)
	auditHandler := handlers.NewOnchainAuditHandler(auditUsecase)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var auditJob *jobs.OnchainAuditJob
	if cfg.Blockchain.Enabled() {
		auditJob = jobs.NewOnchainAuditJob(auditUsecase, cfg.Blockchain.AuditInterval)
		go auditJob.Start(ctx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(m))

	applyCORSMiddleware(r, cfg.Server.AllowedOrigins)
	registerHealthRoute(r,
		healthProbe{name: "database", check: sqlDB.PingContext},
		healthProbe{name: "redis", check: redis.Ping},
	)
	registerMetricsRoute(r, m)
	registerAPIV1Routes(r, routeDeps{
		registryHandler: registryHandler,
		authHandler:     authHandler,
		eventHandler:    eventHandler,
		auditHandler:    auditHandler,
		authMiddleware:  middleware.AuthMiddleware(jwtService, sessionStore),
		ownerOnly:       middleware.RequireOwner(registryUsecase),
		idempotency:     middleware.IdempotencyMiddleware(),
	})

	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		select {
		case <-quit:
		case <-ctx.Done():
			return
		}
		log.Println("🛑 Shutting down server...")
		if auditJob != nil {
			auditJob.Stop()
		}
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️ Shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Scholarship Fund Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
