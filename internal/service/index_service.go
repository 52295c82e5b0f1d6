package service

import (
	"context"
	"errors"
	"fmt"

	infraKafka "vidshare/internal/infra/kafka"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reindexBatchSize 全量重建时每个 bulk 请求的文档数
const reindexBatchSize = 500

// VideoIndexer 搜索索引的写入端
type VideoIndexer interface {
	SyncVideo(ctx context.Context, v *model.Video) error
	DeleteVideo(ctx context.Context, videoID int64) error
	BulkSyncVideos(ctx context.Context, videos []model.Video) (success, failed int, err error)
}

// IndexService 根据视频事件维护搜索索引
type IndexService struct {
	videoRepo *repository.VideoRepository
	index     VideoIndexer
}

func NewIndexService(videoRepo *repository.VideoRepository, index VideoIndexer) *IndexService {
	return &IndexService{videoRepo: videoRepo, index: index}
}

// HandleEvent 处理一条视频事件；创建事件到达时视频已被删除则忽略
func (s *IndexService) HandleEvent(ctx context.Context, event *infraKafka.VideoEvent) error {
	switch event.Type {
	case infraKafka.EventVideoCreated:
		video, err := s.videoRepo.GetByIDWithUser(ctx, event.VideoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Info("Video gone before indexing, skipped", zap.Int64("video_id", event.VideoID))
				return nil
			}
			return err
		}
		return s.index.SyncVideo(ctx, video)
	case infraKafka.EventVideoDeleted:
		return s.index.DeleteVideo(ctx, event.VideoID)
	default:
		logger.Warn("Unknown video event type", zap.String("type", event.Type))
		return nil
	}
}

// Reindex 从数据库全量重建索引，返回成功与失败的文档数
func (s *IndexService) Reindex(ctx context.Context) (int, int, error) {
	videos, err := s.videoRepo.ListAllWithUser(ctx)
	if err != nil {
		return 0, 0, err
	}

	var success, failed int
	for start := 0; start < len(videos); start += reindexBatchSize {
		end := min(start+reindexBatchSize, len(videos))
		ok, bad, err := s.index.BulkSyncVideos(ctx, videos[start:end])
		success += ok
		failed += bad
		if err != nil {
			return success, failed, fmt.Errorf("bulk sync videos [%d,%d): %w", start, end, err)
		}
	}
	return success, failed, nil
}
