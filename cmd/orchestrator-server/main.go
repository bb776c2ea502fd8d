// cmd/orchestrator-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"query-orchestrator/internal/api"
	"query-orchestrator/internal/common/assistant"
	"query-orchestrator/internal/common/config"
	"query-orchestrator/internal/common/database"
	"query-orchestrator/internal/common/genai"
	"query-orchestrator/internal/common/logger"
	"query-orchestrator/internal/common/observability"
	"query-orchestrator/internal/history"
	"query-orchestrator/internal/orchestrator"
	anglegeneration "query-orchestrator/internal/pipeline/angle-generation"
	angleresolution "query-orchestrator/internal/pipeline/angle-resolution"
	checkcontradictions "query-orchestrator/internal/pipeline/check-contradictions"
	normalizeresponses "query-orchestrator/internal/pipeline/normalize-responses"
	synthesizereport "query-orchestrator/internal/pipeline/synthesize-report"
	"query-orchestrator/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting orchestrator server",
		zap.String("service", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Remote capability clients ---
	genaiClient := genai.NewClient(cfg.GenAI, log)
	assistantClient := assistant.NewClient(cfg.Assistant, log)

	// --- Result store ---
	var resultStore store.Store
	if cfg.Store.Backend == "redis" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		resultStore = store.NewRedis(redisClient, cfg.Store.ResultTTLDuration())
		zapLog.Info("Redis result store connected")
	} else {
		resultStore = store.NewMemory(cfg.Store.ResultTTLDuration())
	}

	// --- Pipeline handlers ---
	resolverConfig := &angleresolution.Config{
		PollInterval:    cfg.Assistant.PollIntervalDuration(),
		MaxPollAttempts: cfg.Assistant.PollMaxAttempts,
	}

	orch := orchestrator.New(
		anglegeneration.NewHandler(genaiClient, &angleGenerationLoggerAdapter{log}),
		angleresolution.NewHandler(resolverConfig, assistantClient, &angleResolutionLoggerAdapter{log}),
		normalizeresponses.NewHandler(&normalizeResponsesLoggerAdapter{log}),
		checkcontradictions.NewHandler(genaiClient, &checkContradictionsLoggerAdapter{log}),
		synthesizereport.NewHandler(genaiClient, &synthesizeReportLoggerAdapter{log}),
		log,
	).WithFeedback(assistantClient)

	// --- HTTP surface ---
	server := api.NewServer(cfg.App, orch, resultStore, obs, log)

	// --- Optional Postgres history ---
	if cfg.History.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		historyStore := history.NewStore(pg, log)
		if err := historyStore.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("history schema setup failed", zap.Error(err))
		}
		server.WithHistory(historyStore)
		zapLog.Info("PostgreSQL history connected")
	}

	mux := http.NewServeMux()
	mux.Handle("/", server.Routes())
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		zapLog.Info("http server listening", zap.Int("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLog.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}

	zapLog.Info("orchestrator server stopped")
}

// Logger adapters for pipeline stages that declare their own Logger interfaces
type angleGenerationLoggerAdapter struct {
	logger.Logger
}

func (a *angleGenerationLoggerAdapter) With(fields map[string]interface{}) anglegeneration.Logger {
	return &angleGenerationLoggerAdapter{a.Logger.With(fields)}
}

type angleResolutionLoggerAdapter struct {
	logger.Logger
}

func (a *angleResolutionLoggerAdapter) With(fields map[string]interface{}) angleresolution.Logger {
	return &angleResolutionLoggerAdapter{a.Logger.With(fields)}
}

type normalizeResponsesLoggerAdapter struct {
	logger.Logger
}

func (a *normalizeResponsesLoggerAdapter) With(fields map[string]interface{}) normalizeresponses.Logger {
	return &normalizeResponsesLoggerAdapter{a.Logger.With(fields)}
}

type checkContradictionsLoggerAdapter struct {
	logger.Logger
}

func (a *checkContradictionsLoggerAdapter) With(fields map[string]interface{}) checkcontradictions.Logger {
	return &checkContradictionsLoggerAdapter{a.Logger.With(fields)}
}

type synthesizeReportLoggerAdapter struct {
	logger.Logger
}

func (a *synthesizeReportLoggerAdapter) With(fields map[string]interface{}) synthesizereport.Logger {
	return &synthesizeReportLoggerAdapter{a.Logger.With(fields)}
}
