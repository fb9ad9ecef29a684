package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/muhammadchandra19/matching-core/internal/app/engine"
	matchpublisher "github.com/muhammadchandra19/matching-core/internal/usecase/match-publisher"
	orderreader "github.com/muhammadchandra19/matching-core/internal/usecase/order-reader"
	orderbook "github.com/muhammadchandra19/matching-core/internal/usecase/orderbook"
	snapshot "github.com/muhammadchandra19/matching-core/internal/usecase/snapshot"
	"github.com/muhammadchandra19/matching-core/pkg/config"
	"github.com/muhammadchandra19/matching-core/pkg/logger"
	"github.com/muhammadchandra19/matching-core/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	config.MustLoad(cfg)

	l, err := logger.NewLogger(
		logger.WithLoggingLevel(logger.Level(cfg.LogConfig.Level)),
		logger.WithOutputPaths(cfg.LogConfig.OutputPaths),
		logger.WithCallerTraceSkip(cfg.LogConfig.CallerSkip),
	)
	if err != nil {
		panic(err)
	}

	log = l
}

func main() {
	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	redisConfig := redis.DefaultConfig()
	redisConfig.Addrs = []string{cfg.RedisConfig.Addrs}
	redisConfig.Password = cfg.RedisConfig.Password
	redisConfig.Username = cfg.RedisConfig.Username
	redisConfig.DB = cfg.RedisConfig.DB

	rclient := redis.NewClient(log, redisConfig)
	if err := rclient.Connect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "connect_redis",
		})
		return
	}

	// Initialize components
	ob := orderbook.NewOrderbook()
	oReader := orderreader.NewReader(cfg.KafkaConfig, log)
	snapshotStore := snapshot.NewSnapshotStore(rclient, cfg.Pair, log)
	mPublisher := matchpublisher.NewPublisher(cfg.MatchPublisherConfig, log)

	options := app.DefaultEngineOptions()
	options.Workers = cfg.Workers
	options.SnapshotInterval = time.Duration(cfg.SnapshotConfig.IntervalSeconds) * time.Second
	options.SnapshotOrderDelta = uint64(cfg.SnapshotConfig.OrderDelta)

	engine := app.NewEngineWithOptions(
		ob,
		oReader,
		snapshotStore,
		mPublisher,
		log,
		cfg,
		options,
	)

	// Start the engine
	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	log.Info("Matching core started successfully", logger.Field{
		Key:   "pair",
		Value: cfg.Pair,
	})

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal", logger.Field{
		Key:   "signal",
		Value: sig.String(),
	})

	// Cancel the main context to signal shutdown
	cancel()

	// Create a timeout context for graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the engine gracefully
	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	log.Info("Engine metrics",
		logger.Field{Key: "ordersProcessed", Value: engine.OrdersProcessed()},
		logger.Field{Key: "averageLatencyMicros", Value: engine.AverageLatencyMicros()},
		logger.Field{Key: "ordersPerSecond", Value: engine.OrdersProcessedPerSecond()},
	)

	if err := mPublisher.Close(); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "close_match_publisher",
		})
	}

	if err := rclient.Disconnect(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "disconnect_redis",
		})
	}

	log.Info("Matching core shutdown complete")
}
