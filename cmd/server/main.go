package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"token-registry.backend/internal/config"
	"token-registry.backend/internal/infrastructure/blockchain"
	pgsource "token-registry.backend/internal/infrastructure/datasources/postgres"
	"token-registry.backend/internal/infrastructure/jobs"
	"token-registry.backend/internal/infrastructure/models"
	"token-registry.backend/internal/infrastructure/repositories"
	"token-registry.backend/internal/interfaces/http/handlers"
	"token-registry.backend/internal/interfaces/http/middleware"
	"token-registry.backend/internal/usecases"
	"token-registry.backend/pkg/jwt"
	"token-registry.backend/pkg/logger"
	"token-registry.backend/pkg/metrics"
	"token-registry.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		if cfg.Driver == "sqlite" {
			return gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		}
		sqlDB, err := pgsource.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return gorm.Open(postgres.New(postgres.Config{
			Conn:                 sqlDB,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if !common.IsHexAddress(cfg.Registry.OwnerAddress) {
		return fmt.Errorf("REGISTRY_OWNER_ADDRESS must be a hex address, got %q", cfg.Registry.OwnerAddress)
	}
	owner := common.HexToAddress(cfg.Registry.OwnerAddress)
	if owner == (common.Address{}) {
		return errors.New("REGISTRY_OWNER_ADDRESS must not be the zero address")
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

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database not available: %w", err)
	}
	logger.Info(context.Background(), "Connected to database", zap.String("driver", cfg.Database.Driver))

	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	m := metrics.New()

	// Initialize repositories
	registryRepo := repositories.NewRegistryRepository(db)
	treasuryRepo := repositories.NewTreasuryRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	uow := repositories.NewUnitOfWork(db)

	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()

	// Without a treasury key withdrawals of a positive balance and deposit
	// verification are refused.
	var gateway usecases.TreasuryGateway
	if cfg.Blockchain.TreasuryPrivateKey != "" {
		wallet, err := blockchain.NewTreasuryWallet(clientFactory, cfg.Blockchain.RPCURL, cfg.Blockchain.TreasuryPrivateKey, cfg.Blockchain.ConfirmationTimeout)
		if err != nil {
			return fmt.Errorf("failed to initialize treasury wallet: %w", err)
		}
		gateway = wallet
		logger.Info(context.Background(), "Treasury wallet loaded", zap.String("address", wallet.Address().Hex()))
	} else {
		logger.Warn(context.Background(), "TREASURY_PRIVATE_KEY not set, payouts disabled")
	}

	// Initialize usecases
	registryUsecase := usecases.NewRegistryUsecase(registryRepo, treasuryRepo, eventRepo, uow, gateway, m)
	if err := registryUsecase.Bootstrap(context.Background(), owner, cfg.Registry.ContractURI, cfg.Registry.BaseURI); err != nil {
		return fmt.Errorf("failed to bootstrap registry: %w", err)
	}
	authUsecase := usecases.NewAuthUsecase(jwtService, cfg.Auth.LoginMaxSkew)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	registryHandler := handlers.NewRegistryHandler(registryUsecase)
	tokenHandler := handlers.NewTokenHandler(registryUsecase)
	adminHandler := handlers.NewAdminHandler(registryUsecase)
	treasuryHandler := handlers.NewTreasuryHandler(registryUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	relayJob := jobs.NewEventRelayJob(eventRepo, publishEvent, cfg.Relay.Channel, cfg.Relay.Interval, m)
	go relayJob.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r, m)
	registerAPIV1Routes(r, routeDeps{
		authHandler:     authHandler,
		registryHandler: registryHandler,
		tokenHandler:    tokenHandler,
		adminHandler:    adminHandler,
		treasuryHandler: treasuryHandler,
		authMiddleware:  middleware.AuthMiddleware(jwtService),
	})

	for _, route := range r.Routes() {
		logger.Debug(context.Background(), "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "Shutting down server")
		relayJob.Stop()
		cancel()
	}()

	logger.Info(context.Background(), "Token registry backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("owner", owner.Hex()),
	)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// publishEvent forwards relayed events to redis pub/sub.
func publishEvent(ctx context.Context, channel string, message []byte) error {
	if redis.GetClient() == nil {
		return errors.New("redis client not initialized")
	}
	_, err := redis.Publish(ctx, channel, message)
	return err
}
