package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidshare/internal/api/handler"
	"vidshare/internal/api/router"
	"vidshare/internal/config"
	"vidshare/internal/infra/database"
	infraES "vidshare/internal/infra/elasticsearch"
	infraKafka "vidshare/internal/infra/kafka"
	infraMinio "vidshare/internal/infra/minio"
	infraRedis "vidshare/internal/infra/redis"
	"vidshare/internal/infra/storage"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/internal/service"
	"vidshare/internal/session"
	"vidshare/pkg/logger"

	_ "vidshare/api/openapi"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// @title VidShare API
// @version 1.0
// @description 视频分享站点的 JSON 接口（搜索、点赞、订阅、删除）

// @host 127.0.0.1:8000
// @BasePath /

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// 加载配置文件
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.FilePath); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(model.All()...); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 会话吊销：有 Redis 时跨实例共享，否则仅本进程内有效
	var revoker session.Revoker = session.NewMemoryRevoker()
	if cfg.Redis.Enabled() {
		if err := infraRedis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to init redis", zap.Error(err))
		}
		defer infraRedis.Close()
		revoker = infraRedis.NewSessionRevocations(infraRedis.Get())
	} else {
		logger.Warn("Redis not configured, session revocation is process-local")
	}

	sessions := session.NewManager(session.Options{
		Secret:     cfg.Session.Secret,
		Issuer:     cfg.App.Name,
		TTL:        cfg.Session.ExpireDuration(),
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
		Revoker:    revoker,
	})

	// 媒体文件存储
	var (
		store     storage.Store
		localRoot string
		prefix    string
	)
	switch cfg.Storage.Driver {
	case "minio":
		if err := infraMinio.Init(&cfg.MinIO, cfg.Storage.VideoBucket, cfg.Storage.ThumbnailBucket); err != nil {
			logger.Fatal("Failed to init minio", zap.Error(err))
		}
		store = infraMinio.NewStore(infraMinio.Get(), &cfg.MinIO, &cfg.Storage)
	case "local", "":
		local := storage.NewLocalStore(cfg.Storage.Root, cfg.Storage.VideoDir, cfg.Storage.ThumbnailDir)
		store = local
		localRoot = local.Root()
		prefix = "/" + local.Prefix()
	default:
		logger.Fatal("Unsupported storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	// 视频事件（可选）
	var events service.EventPublisher
	if cfg.Kafka.Enabled() {
		producer := infraKafka.NewProducer(&cfg.Kafka)
		defer producer.Close()
		events = producer
	}

	// 搜索索引（可选，失败则搜索降级到 DB）
	var searcher service.VideoSearcher
	if cfg.Elasticsearch.Enabled() && !cfg.SearchIndexEnabled() {
		logger.Warn("Elasticsearch configured without Kafka, search will use DB")
	}
	if cfg.SearchIndexEnabled() {
		if err := infraES.Init(&cfg.Elasticsearch); err != nil {
			logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
		} else {
			defer infraES.Close()
			index := infraES.NewVideoIndex(infraES.Get(), cfg.Elasticsearch.VideosIndex())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := index.Ensure(ctx); err != nil {
				logger.Warn("Elasticsearch index init failed", zap.Error(err))
			}
			cancel()
			searcher = index
		}
	}

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	authService := service.NewAuthService(userRepo, sessions)
	videoService := service.NewVideoService(videoRepo, commentRepo, likeRepo, subRepo, store, events, service.UploadLimits{
		MaxVideoBytes:     cfg.Storage.MaxVideoBytes(),
		MaxThumbnailBytes: cfg.Storage.MaxThumbnailBytes(),
	})
	commentService := service.NewCommentService(commentRepo, videoRepo)
	interactionService := service.NewInteractionService(likeRepo, subRepo, videoRepo, userRepo)
	searchService := service.NewSearchService(videoRepo, store, searcher, cfg.Search.MaxResults)
	userService := service.NewUserService(userRepo, videoRepo, subRepo, store)

	videoHandler := handler.NewVideoHandler(videoService, handler.UploadPageLimits{
		MaxVideoMB:     cfg.Storage.MaxVideoMB,
		MaxThumbnailMB: cfg.Storage.MaxThumbnailMB,
	})
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService, sessions),
		User:        handler.NewUserHandler(userService, authService, sessions),
		Video:       videoHandler,
		Comment:     handler.NewCommentHandler(commentService, videoHandler),
		Interaction: handler.NewInteractionHandler(interactionService),
		Search:      handler.NewSearchHandler(searchService),
		Health:      handler.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.App.Mode),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	r, err := router.New(router.Options{
		Sessions:           sessions,
		Registry:           registry,
		MediaPrefix:        prefix,
		MediaRoot:          localRoot,
		MaxMultipartMemory: cfg.Storage.MaxMultipartMemMB << 20,
		// 两个文件上限之外预留表单字段与 multipart 边界的开销
		MaxUploadBytes: cfg.Storage.MaxVideoBytes() + cfg.Storage.MaxThumbnailBytes() + 10<<20,
		Swagger:        cfg.App.Mode != gin.ReleaseMode,
	}, handlers)
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
		zap.String("database", cfg.Database.Driver),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("redis", cfg.Redis.Enabled()),
		zap.Bool("kafka", cfg.Kafka.Enabled()),
		zap.Bool("elasticsearch", searcher != nil),
	)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 监听系统信号，优雅退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}
