package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"go.uber.org/zap"

	"github.com/grandslambert/backend-cms/internal/di"
	"github.com/grandslambert/backend-cms/internal/handler"
	"github.com/grandslambert/backend-cms/internal/repository"
	"github.com/grandslambert/backend-cms/internal/tenantstore"
	"github.com/grandslambert/backend-cms/pkg/config"
	"github.com/grandslambert/backend-cms/pkg/database"
	"github.com/grandslambert/backend-cms/pkg/logger"
	"github.com/grandslambert/backend-cms/pkg/middleware"
	pkgredis "github.com/grandslambert/backend-cms/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Development: cfg.Log.Development,
		OutputPath:  cfg.Log.OutputPath,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
	})
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := repository.EnsureSchema(ctx, db.Pool()); err != nil {
		logger.Fatal("failed to ensure database schema", zap.Error(err))
	}

	// Tenant content lives behind a pluggable strategy. Postgres shared
	// tables are the default; SurrealDB gives each tenant its own tables.
	var strategy tenantstore.Strategy
	if cfg.Surreal.Enabled {
		sdb, err := surrealdb.New(cfg.Surreal.URL)
		if err != nil {
			logger.Fatal("failed to connect to surrealdb", zap.Error(err))
		}
		defer sdb.Close()
		if _, err := sdb.Signin(map[string]any{
			"user": cfg.Surreal.User,
			"pass": cfg.Surreal.Password,
		}); err != nil {
			logger.Fatal("failed to sign in to surrealdb", zap.Error(err))
		}
		if _, err := sdb.Use(cfg.Surreal.Namespace, cfg.Surreal.Database); err != nil {
			logger.Fatal("failed to select surrealdb namespace", zap.Error(err))
		}
		strategy = tenantstore.NewSurrealStrategy(sdb)
		logger.Info("tenant store strategy: surrealdb", zap.String("url", cfg.Surreal.URL))
	} else {
		strategy = tenantstore.NewPostgresStrategy(db.Pool())
		logger.Info("tenant store strategy: postgres")
	}

	// Token blacklist: Redis when available, in-process otherwise.
	var blacklist di.TokenBlacklist
	if cfg.Redis.Enabled {
		rdb, err := pkgredis.NewClient(ctx, &pkgredis.Config{
			Addr:         cfg.Redis.Addr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		blacklist = middleware.NewRedisBlacklist(rdb, middleware.DefaultBlacklistConfig())
		logger.Info("token blacklist: redis", zap.String("addr", cfg.Redis.Addr()))
	} else {
		memBlacklist := middleware.NewMemoryBlacklist(middleware.DefaultBlacklistConfig())
		defer memBlacklist.Close()
		blacklist = memBlacklist
		logger.Info("token blacklist: in-memory")
	}

	container := di.NewContainer(&di.ContainerConfig{
		DB:        db,
		Strategy:  strategy,
		Blacklist: blacklist,
		JWT:       cfg.JWT,
	})

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())
	defer rateLimiter.Close()

	router := handler.NewRouter(handler.RouterConfig{
		Debug:       cfg.App.Debug,
		CORSOrigin:  cfg.App.CORSOrigin,
		JWTSecret:   cfg.JWT.Secret,
		Blacklist:   container.Blacklist,
		RateLimiter: rateLimiter,
	}, container.Handlers, container.AuthService, container.APIKeyService)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
