package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/bancharampur/infogate/internal/admin"
	"github.com/bancharampur/infogate/internal/app"
	"github.com/bancharampur/infogate/internal/auth"
	"github.com/bancharampur/infogate/internal/llm"
	"github.com/bancharampur/infogate/internal/moderation"
	"github.com/bancharampur/infogate/internal/observability"
	"github.com/bancharampur/infogate/internal/platform/cache"
	"github.com/bancharampur/infogate/internal/platform/db"
	"github.com/bancharampur/infogate/internal/rbac"
	"github.com/bancharampur/infogate/internal/shared"
	"github.com/bancharampur/infogate/internal/users"
	"github.com/bancharampur/infogate/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, redisErr := cache.New(ctx, cfg.RedisAddr)
	if redisErr != nil {
		logger.Warn("redis ping, highlight lock falls back to postgres", slog.Any("error", redisErr))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	completer, err := llm.New(ctx, cfg.LLM())
	if err != nil {
		logger.Error("init language model", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.LLMAPIKey == "" {
		logger.Warn("LLM_API_KEY not set, admin chat will report a configuration error")
	}
	completer = llm.WithObserver(completer, metrics.ObserveLLM)

	userService := users.NewService(users.NewRepository(dbpool))
	gate := rbac.NewGate(userService)
	var locker admin.Locker
	if redisErr == nil {
		locker = shared.NewRedisLocker(redisClient, cfg.HighlightLockTTL, 5*time.Second)
	}
	executor := admin.NewExecutor(gate, moderation.NewRepository(dbpool), userService, locker, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	interpreter := admin.NewInterpreter(admin.NewParser(completer), executor, logger,
		admin.WithIdempotency(shared.NewIdempotencyStore(dbpool)),
		admin.WithRecorder(metrics),
		admin.WithAuditSink(jobClient),
	)

	authService := auth.NewService(auth.NewJWTVerifier([]byte(cfg.JWTSecret)))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthMiddleware: authService.Middleware(logger),
		AdminHandler:   admin.NewHandler(interpreter, logger),
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
