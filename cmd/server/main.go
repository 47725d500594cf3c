package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"nft-swapper.backend/internal/config"
	"nft-swapper.backend/internal/infrastructure/blockchain"
	pgsource "nft-swapper.backend/internal/infrastructure/datasources/postgres"
	"nft-swapper.backend/internal/infrastructure/devnet"
	"nft-swapper.backend/internal/infrastructure/events"
	"nft-swapper.backend/internal/infrastructure/jobs"
	"nft-swapper.backend/internal/infrastructure/locker"
	"nft-swapper.backend/internal/infrastructure/metrics"
	"nft-swapper.backend/internal/infrastructure/models"
	"nft-swapper.backend/internal/infrastructure/repositories"
	"nft-swapper.backend/internal/interfaces/http/handlers"
	"nft-swapper.backend/internal/interfaces/http/middleware"
	"nft-swapper.backend/internal/usecases"
	"nft-swapper.backend/pkg/jwt"
	"nft-swapper.backend/pkg/logger"
	"nft-swapper.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
		conn, err := pgsource.NewConnection(cfg)
		if err != nil {
			return nil, err
		}
		return gorm.Open(postgres.New(postgres.Config{
			Conn:                 conn,
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
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	if cfg.Server.LogLevel != "" {
		if err := logger.SetLevel(cfg.Server.LogLevel); err != nil {
			logger.Warn(context.Background(), "Ignoring invalid log level", zap.String("level", cfg.Server.LogLevel), zap.Error(err))
		}
	}
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
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

	if err := repositories.AutoMigrate(db, models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info(context.Background(), "Database ready")

	addresses, err := parseSwapAddresses(cfg)
	if err != nil {
		return err
	}

	network := devnet.NewNetwork(addresses.paymentToken)
	for _, spec := range cfg.Devnet.Collections {
		name, symbol := splitCollectionSpec(spec)
		c := network.DeployCollection(addresses.deployer, name, symbol)
		logger.Info(context.Background(), "Devnet collection deployed",
			zap.String("name", name), zap.String("address", c.Address().Hex()))
	}

	swapMetrics := metrics.NewSwapMetrics()
	registries := repositories.NewSwapRegistryRepository(db)
	offers := repositories.NewSwapOfferRepository(db)
	uow := repositories.NewUnitOfWork(db)
	lock := locker.New(true, cfg.Swap.LockTTL)

	swapUsecase := usecases.NewSwapRegistryUsecase(usecases.SwapRegistryDeps{
		Registries: registries,
		Offers:     offers,
		Events:     repositories.NewSwapEventRepository(db),
		UnitOfWork: uow,
		Ledgers:    network,
		Locker:     lock,
		Publisher:  events.NewRedisPublisher(cfg.Swap.EventsChannel),
		Observer:   swapMetrics,
	})
	factoryUsecase := usecases.NewSwapFactoryUsecase(
		addresses.factory,
		repositories.NewSwapFactoryRepository(db),
		registries,
		uow,
		swapUsecase,
		lock,
		swapMetrics,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := swapUsecase.DeployRegistry(ctx, addresses.sharedRegistry, addresses.paymentToken, addresses.sharedRegistryOwner); err != nil {
		return fmt.Errorf("failed to deploy shared registry: %w", err)
	}
	if _, err := factoryUsecase.Bootstrap(ctx, addresses.factoryOwner, addresses.template, addresses.paymentToken); err != nil {
		return fmt.Errorf("failed to bootstrap factory: %w", err)
	}

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	authUsecase := usecases.NewAuthUsecase(redis.NewChallengeStore(cfg.Swap.ChallengeTTL), jwtService, cfg.Swap.ChallengeTTL)

	clientFactory := blockchain.NewClientFactory()
	defer clientFactory.Close()
	reader := usecases.NewOnchainReaderUsecase(clientFactory, cfg.Blockchain.RPCURL)

	deps := routeDeps{
		authHandler:     handlers.NewAuthHandler(authUsecase),
		factoryHandler:  handlers.NewSwapFactoryHandler(factoryUsecase),
		registryHandler: handlers.NewSwapRegistryHandler(swapUsecase),
		onchainHandler:  handlers.NewOnchainHandler(reader),
		authMiddleware:  middleware.AuthMiddleware(jwtService),
	}
	if cfg.Devnet.Enabled {
		deps.devnetHandler = handlers.NewDevnetHandler(usecases.NewDevnetUsecase(network, addresses.paymentToken, lock))
	}

	gaugeJob := jobs.NewOpenOfferGaugeJob(offers, swapMetrics, cfg.Swap.GaugeInterval)
	go gaugeJob.Start(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware(swapMetrics))

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	r.GET("/metrics", gin.WrapH(swapMetrics.Handler()))
	registerAPIV1Routes(r, deps)

	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "Shutting down server")
		gaugeJob.Stop()
		cancel()
	}()

	logger.Info(ctx, "NFT swapper backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("factory", addresses.factory.Hex()),
		zap.String("sharedRegistry", addresses.sharedRegistry.Hex()),
	)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

type swapAddresses struct {
	factory             common.Address
	factoryOwner        common.Address
	template            common.Address
	sharedRegistry      common.Address
	sharedRegistryOwner common.Address
	paymentToken        common.Address
	deployer            common.Address
}

func parseSwapAddresses(cfg *config.Config) (swapAddresses, error) {
	var out swapAddresses
	fields := []struct {
		name string
		raw  string
		dst  *common.Address
	}{
		{"SWAP_FACTORY_ADDRESS", cfg.Swap.FactoryAddress, &out.factory},
		{"SWAP_FACTORY_OWNER", cfg.Swap.FactoryOwner, &out.factoryOwner},
		{"SWAP_TEMPLATE_ADDRESS", cfg.Swap.TemplateAddress, &out.template},
		{"SWAP_REGISTRY_ADDRESS", cfg.Swap.SharedRegistryAddress, &out.sharedRegistry},
		{"SWAP_REGISTRY_OWNER", cfg.Swap.SharedRegistryOwner, &out.sharedRegistryOwner},
		{"SWAP_PAYMENT_TOKEN", cfg.Swap.PaymentToken, &out.paymentToken},
		{"DEVNET_DEPLOYER", cfg.Devnet.Deployer, &out.deployer},
	}
	for _, f := range fields {
		if !common.IsHexAddress(f.raw) {
			return swapAddresses{}, fmt.Errorf("invalid %s: %q", f.name, f.raw)
		}
		*f.dst = common.HexToAddress(f.raw)
	}
	return out, nil
}

// splitCollectionSpec parses "Name:SYMBOL"; a bare name is its own symbol.
func splitCollectionSpec(spec string) (string, string) {
	name, symbol, ok := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	if !ok || strings.TrimSpace(symbol) == "" {
		return name, strings.ToUpper(name)
	}
	return name, strings.TrimSpace(symbol)
}
