package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vidshare/internal/config"
	"vidshare/internal/infra/database"
	infraES "vidshare/internal/infra/elasticsearch"
	infraKafka "vidshare/internal/infra/kafka"
	"vidshare/internal/repository"
	"vidshare/internal/service"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
)

// 搜索索引 worker：消费视频事件写入 Elasticsearch；-reindex 时先从数据库全量重建
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	reindex := flag.Bool("reindex", false, "rebuild the search index from the database before consuming events")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if !cfg.Elasticsearch.Enabled() {
		logger.Fatal("Elasticsearch is not configured")
	}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Fatal("Failed to init elasticsearch", zap.Error(err))
	}
	defer infraES.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	index := infraES.NewVideoIndex(infraES.Get(), cfg.Elasticsearch.VideosIndex())
	if err := index.Ensure(ctx); err != nil {
		logger.Fatal("Failed to ensure index", zap.String("index", index.Name()), zap.Error(err))
	}

	indexService := service.NewIndexService(repository.NewVideoRepository(database.Get()), index)

	if *reindex {
		success, failed, err := indexService.Reindex(ctx)
		if err != nil {
			logger.Fatal("Reindex failed", zap.Int("success", success), zap.Int("failed", failed), zap.Error(err))
		}
		logger.Info("Reindex completed", zap.Int("success", success), zap.Int("failed", failed))
	}

	if !cfg.Kafka.Enabled() {
		if *reindex {
			return
		}
		logger.Fatal("Kafka is not configured")
	}

	logger.Info("Search indexer started",
		zap.String("topic", cfg.Kafka.VideoEventsTopic()),
		zap.String("group", cfg.Kafka.GroupID),
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("index", index.Name()),
	)

	infraKafka.StartVideoEventConsumer(ctx, cfg.Kafka.Brokers, cfg.Kafka.VideoEventsTopic(), cfg.Kafka.GroupID, indexService.HandleEvent)
	logger.Info("Search indexer stopped")
}
