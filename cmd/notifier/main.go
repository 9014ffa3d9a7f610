// cmd/notifier/main.go
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

	commonaws "activity-notifier/internal/common/aws"
	"activity-notifier/internal/common/config"
	"activity-notifier/internal/common/database"
	"activity-notifier/internal/common/logger"
	"activity-notifier/internal/common/observability"
	"activity-notifier/internal/consumer"
	"activity-notifier/internal/notify"
	"activity-notifier/internal/store"
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

	zapLog.Info("Starting notification consumer...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pg.Ping(pingCtx)
	}, 10, 2*time.Second, zapLog, "PostgreSQL initialization")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init AWS clients ---
	sqsClient, err := commonaws.NewSQSClient(ctx, cfg.Queue.Region)
	if err != nil {
		zapLog.Fatal("sqs client failed", zap.Error(err))
	}

	ddbClient, err := commonaws.NewDynamoDBClient(ctx, cfg.Store.DynamoDB.Region)
	if err != nil {
		zapLog.Fatal("dynamodb client failed", zap.Error(err))
	}

	// --- Optional redis dedup guard ---
	var dedup *store.DedupGuard
	if cfg.Notifications.Dedup.Enabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return rdb.Ping(pingCtx)
		}, 10, 2*time.Second, zapLog, "Redis initialization")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()

		window := time.Duration(cfg.Notifications.Dedup.WindowHours) * time.Hour
		dedup = store.NewDedupGuard(rdb.GetClient(), window)
		zapLog.Info("dedup guard enabled", zap.Duration("window", window))
	}

	// --- Wire the routing engine ---
	links := store.Links{
		ServiceBase: cfg.Notifications.ServiceBaseURL,
		ImageBase:   cfg.Notifications.ImageBaseURL,
	}
	reader := store.NewReader(pg.GetDB())
	writer := store.NewWriter(ddbClient, cfg.Store.DynamoDB.Table, links, dedup, log)
	ttl := time.Duration(cfg.Store.DynamoDB.TTLDays) * 24 * time.Hour
	engine := notify.NewEngine(reader, writer, log, ttl)

	cons := consumer.New(sqsClient, consumer.Config{
		QueueURL:          cfg.Queue.URL,
		WaitTimeSeconds:   int32(cfg.Queue.WaitTimeSeconds),
		VisibilityTimeout: int32(cfg.Queue.VisibilityTimeout),
		HandlerTimeout:    time.Duration(cfg.Queue.HandlerTimeout) * time.Millisecond,
	}, engine, log, obs)

	// --- Metrics endpoint ---
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("metrics server listening", zap.String("address", cfg.Metrics.ListenAddress))
		if err := http.ListenAndServe(cfg.Metrics.ListenAddress, nil); err != nil {
			zapLog.Error("metrics server stopped", zap.Error(err))
		}
	}()

	// --- Run until signalled ---
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cons.Run(runCtx); err != nil {
		zapLog.Fatal("consumer exited", zap.Error(err))
	}

	zapLog.Info("shutdown complete")
}
