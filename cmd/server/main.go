package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/carecircle/api/handler"
	"github.com/fastygo/carecircle/internal/config"
	"github.com/fastygo/carecircle/internal/infrastructure/buffer"
	"github.com/fastygo/carecircle/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/carecircle/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/carecircle/internal/infrastructure/redis"
	"github.com/fastygo/carecircle/internal/middleware"
	"github.com/fastygo/carecircle/internal/router"
	"github.com/fastygo/carecircle/internal/services"
	"github.com/fastygo/carecircle/internal/services/lifecycle"
	"github.com/fastygo/carecircle/pkg/httpcontext"
	"github.com/fastygo/carecircle/pkg/logger"
	"github.com/fastygo/carecircle/repository/postgres"
	redisRepo "github.com/fastygo/carecircle/repository/redis"
	activityUC "github.com/fastygo/carecircle/usecase/activity"
	authUC "github.com/fastygo/carecircle/usecase/auth"
	groupUC "github.com/fastygo/carecircle/usecase/group"
	profileUC "github.com/fastygo/carecircle/usecase/profile"
	statusUC "github.com/fastygo/carecircle/usecase/status"
	taskUC "github.com/fastygo/carecircle/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("app", cfg.AppName), zap.String("env", cfg.Environment))

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", pgInfra.Close(pool, zapLogger))

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(monitor.Probes{
		Postgres: pool.Ping,
		Redis: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
		Buffer: bufferStore,
	}, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", mon.Stop)

	userRepo := postgres.NewUserRepository(pool)
	groupRepo := postgres.NewGroupRepository(pool)
	memberRepo := postgres.NewMembershipRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	statusRepo := postgres.NewStatusRepository(pool)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.JWT.SessionTTL)

	bufferProcessor, err := services.NewBufferProcessor(
		bufferStore,
		mon,
		services.Repositories{Users: userRepo, Tasks: taskRepo, Statuses: statusRepo},
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  cfg.Buffer.BatchSize,
			MaxRetries: cfg.Buffer.MaxRetry,
			Retention:  time.Duration(cfg.Buffer.RetentionHours) * time.Hour,
		},
	)
	if err != nil {
		zapLogger.Fatal("buffer processor setup failed", zap.Error(err))
	}
	bufferProcessor.Start()
	manager.Register("buffer_processor", bufferProcessor.Stop)

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	groupUseCase := groupUC.New(groupRepo, memberRepo, zapLogger)
	authUseCase := authUC.New(userRepo, sessionRepo, middleware.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.Issuer), zapLogger)
	profileUseCase := profileUC.New(userRepo, bufferBridge, zapLogger)
	taskUseCase := taskUC.New(taskRepo, groupUseCase, bufferBridge, zapLogger)
	statusUseCase := statusUC.New(statusRepo, groupUseCase, bufferBridge, zapLogger)
	activityUseCase := activityUC.New(
		postgres.NewStatusActivitySource(pool),
		postgres.NewTaskActivitySource(pool),
		groupUseCase,
		activityUC.Config{DefaultLimit: cfg.Feed.DefaultLimit, MaxLimit: cfg.Feed.MaxLimit},
		zapLogger,
	)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.SessionTTL),
		Profile: apiHandler.NewProfileHandler(profileUseCase, ctxAdapter, zapLogger),
		Group:   apiHandler.NewGroupHandler(groupUseCase, ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Status:  apiHandler.NewStatusHandler(statusUseCase, ctxAdapter, zapLogger),
		Feed:    apiHandler.NewFeedHandler(activityUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, sessionRepo, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
