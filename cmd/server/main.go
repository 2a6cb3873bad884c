package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Noviath61/finsight/internal/auth"
	"github.com/Noviath61/finsight/internal/cache"
	"github.com/Noviath61/finsight/internal/client"
	"github.com/Noviath61/finsight/internal/config"
	"github.com/Noviath61/finsight/internal/dashboard"
	"github.com/Noviath61/finsight/internal/events"
	"github.com/Noviath61/finsight/internal/handler"
	"github.com/Noviath61/finsight/internal/market"
	"github.com/Noviath61/finsight/internal/repository"
	"github.com/Noviath61/finsight/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	configPath := os.Getenv("FINSIGHT_CONFIG")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database (optional with the Parse provider)
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Warn("Failed to connect to database, running without snapshot and local users", zap.Error(err))
		db = nil
	} else {
		defer db.Close()
		if err := repository.EnsureSchema(context.Background(), db); err != nil {
			logger.Fatal("Failed to prepare database schema", zap.Error(err))
		}
	}
	st := newStores(db, logger)

	// Initialize Redis client (if configured)
	redisClient := setupRedis(cfg.Redis, logger)

	// Initialize Kafka producer (if enabled)
	var publisher events.Publisher = events.Nop{}
	var producer *events.Producer
	if cfg.Kafka.Enabled && cfg.Kafka.Brokers != "" {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ClientID, cfg.Kafka.Topics, logger)
		publisher = producer
		logger.Info("Initialized Kafka producer", zap.String("brokers", cfg.Kafka.Brokers))
	}

	loc, err := market.LoadLocation(cfg.Display.Timezone)
	if err != nil {
		logger.Warn("Unknown display timezone, using local time",
			zap.String("timezone", cfg.Display.Timezone),
			zap.Error(err))
		loc = time.Local
	}

	// Create clients
	fmpClient := client.NewFMPClient(cfg.Vendors.FMP, loc, logger)
	twelveDataClient := client.NewTwelveDataClient(cfg.Vendors.TwelveData, loc, logger)

	// Load the symbol directory once; the index is immutable afterwards
	directoryService := service.NewDirectoryService(fmpClient, st.snapshot, cfg.Directory, logger)
	index := directoryService.Load(context.Background())

	// Create services
	quoteCache := cache.NewQuoteCache(redisClient, cfg.Cache.PrefixKey, cfg.Cache.QuoteTTL, logger)
	quoteService := service.NewQuoteService(twelveDataClient, index, quoteCache, publisher, logger)
	chartService := service.NewChartService(twelveDataClient, fmpClient, publisher, logger)
	fundamentalsService := service.NewFundamentalsService(fmpClient, logger)
	marketService := service.NewMarketService(market.NewClock(loc))

	provider, err := newProvider(cfg, st, logger)
	if err != nil {
		logger.Fatal("Failed to set up authentication", zap.Error(err))
	}
	tokenService := auth.NewTokenService(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenDuration,
		cache.NewRevocationList(redisClient, cfg.Cache.PrefixKey),
		logger,
	)
	authService := auth.NewService(provider, tokenService, publisher, logger)

	registry := dashboard.NewRegistry(dashboard.Deps{
		Quotes:    quoteService,
		Charts:    chartService,
		Index:     index,
		Publisher: publisher,
		Logger:    logger,
	}, cfg.Dashboard.SessionTTL, logger)

	// Create HTTP server
	router := &handler.Router{
		Symbols:   handler.NewSymbolHandler(index, logger),
		Market:    handler.NewMarketHandler(marketService),
		Stocks:    handler.NewStockHandler(quoteService, chartService, fundamentalsService, logger),
		Auth:      handler.NewAuthHandler(authService, logger),
		Dashboard: handler.NewDashboardHandler(registry, fundamentalsService, cfg.Dashboard.CookieName, cfg.Dashboard.SessionTTL, logger),
		Health:    handler.NewHealthHandler(st.pinger, redisClient, producer != nil, index.Len),

		Tokens:         tokenService,
		Redis:          redisClient,
		RateLimit:      cfg.RateLimit,
		ChartCacheTTL:  cfg.Cache.ChartTTL,
		CachePrefix:    cfg.Cache.PrefixKey,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.Int("symbols", index.Len()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	registry.Close()

	// Close Kafka producer
	if producer != nil {
		producer.Close()
	}

	// Close Redis client
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited properly")
}

// setupRedis connects to Redis. It returns nil when Redis is not configured
// or unreachable; every Redis consumer has an in-process fallback.
func setupRedis(cfg config.RedisConfig, logger *zap.Logger) *redis.Client {
	if cfg.URL == "" {
		logger.Info("Redis not configured, running without cache")
		return nil
	}

	options, err := redis.ParseURL(cfg.URL)
	if err != nil {
		options = &redis.Options{
			Addr: cfg.URL,
			DB:   cfg.DB,
		}
	}
	if cfg.Password != "" {
		options.Password = cfg.Password
	}

	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		client.Close()
		return nil
	}

	logger.Info("Connected to Redis", zap.String("address", options.Addr))
	return client
}

func createLogger(level, format string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	encoding := "json"
	encoderConfig := zap.NewProductionEncoderConfig()
	if format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}
