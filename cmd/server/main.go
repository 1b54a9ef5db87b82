package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rl1809/workshop-parts/config"
	"github.com/rl1809/workshop-parts/internal/adapter/handler"
	"github.com/rl1809/workshop-parts/internal/adapter/storage"
	"github.com/rl1809/workshop-parts/internal/core/catalog"
	"github.com/rl1809/workshop-parts/internal/core/service"
	"github.com/rl1809/workshop-parts/internal/logger"
)

const healthInterval = 15 * time.Second

func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger, err := logger.New(logger.Config{
		Development:       cfg.IsDevelopment(),
		Level:             cfg.Logger.Level,
		Encoding:          cfg.Logger.Encoding,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize MySQL
	db, err := sqlx.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		appLogger.Fatal("failed to connect mysql", zap.Error(err))
	}
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		appLogger.Fatal("failed to ping mysql", zap.Error(err))
	}
	appLogger.Info("connected to mysql")

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		appLogger.Fatal("failed to connect redis", zap.Error(err))
	}
	appLogger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))

	// Initialize adapters
	mysqlAdapter := storage.NewMySQLAdapter(db)
	redisAdapter := storage.NewRedisAdapter(rdb,
		storage.WithNamespace(cfg.Redis.Namespace),
		storage.WithIdempotencyTTL(cfg.Redis.IdempotencyTTL),
	)

	if cfg.MySQL.Migrate {
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			appLogger.Fatal("failed to migrate schema", zap.Error(err))
		}
	}

	// Initialize services
	mapper := catalog.NewMapper(catalog.Config{
		CodePrefix:      cfg.Catalog.CodePrefix,
		DefaultCategory: cfg.Catalog.DefaultCategory,
		DefaultMinStock: cfg.Catalog.DefaultMinStock,
		SupplierID:      cfg.Catalog.SupplierID,
		SupplierName:    cfg.Catalog.SupplierName,
	})
	inventoryService := service.NewInventoryService(mysqlAdapter, mapper, appLogger.Named("inventory"))
	orderService := service.NewOrderService(
		mysqlAdapter, redisAdapter, mysqlAdapter, inventoryService,
		cfg.Worker.QueueSize, appLogger.Named("orders"),
	)

	// Start worker pool
	var wg sync.WaitGroup
	for i := 0; i < cfg.Worker.Count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			service.WorkerLoop(id, orderService.GetOrderQueue(), mysqlAdapter, redisAdapter, appLogger.Named("worker"))
		}(i)
	}
	appLogger.Info("started workers", zap.Int("count", cfg.Worker.Count))

	// Initialize gRPC server
	grpcHandler := handler.NewGRPCHandler(appLogger.Named("grpc"), map[string]handler.Pinger{
		"mysql": mysqlAdapter,
		"redis": redisAdapter,
	})
	go grpcHandler.Watch(ctx, healthInterval)

	lis, err := net.Listen("tcp", cfg.Server.GRPCPort)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.Error(err))
	}

	// Initialize HTTP server
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handler.AccessLog(appLogger.Named("http")))
	handler.NewHTTPHandler(inventoryService, orderService, appLogger.Named("http")).Register(router)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPPort,
		Handler: router,
	}

	// Serve until a signal arrives or either server fails
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		appLogger.Info("gRPC server listening", zap.String("port", cfg.Server.GRPCPort))
		return grpcHandler.Server().Serve(lis)
	})
	g.Go(func() error {
		appLogger.Info("HTTP server listening", zap.String("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Warn("HTTP shutdown", zap.Error(err))
		}
		appLogger.Info("HTTP server stopped")

		grpcHandler.Shutdown()
		appLogger.Info("gRPC server stopped")
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("server error", zap.Error(err))
	}

	// Close order queue and wait for workers
	orderService.Close()
	wg.Wait()
	appLogger.Info("workers stopped")

	rdb.Close()
	db.Close()
	appLogger.Info("connections closed")
}
