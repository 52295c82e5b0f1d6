package service

import (
	"context"
	"errors"
	"time"

	"vidshare/internal/api/dto"
	infraKafka "vidshare/internal/infra/kafka"
	"vidshare/internal/infra/storage"
	"vidshare/internal/model"
	"vidshare/internal/repository"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrVideoNotFound     = errors.New("Video not found.")
	ErrVideoNoPermission = errors.New("You can only delete your own videos.")
)

const (
	// HomeLimit 首页展示的视频数
	HomeLimit = 6
	// RelatedLimit 播放页侧栏的相关视频数
	RelatedLimit = 3
)

// EventPublisher 视频事件发布
type EventPublisher interface {
	PublishVideoEvent(ctx context.Context, event infraKafka.VideoEvent) error
}

type VideoService struct {
	videoRepo   *repository.VideoRepository
	commentRepo *repository.CommentRepository
	likeRepo    *repository.LikeRepository
	subRepo     *repository.SubscriptionRepository
	store       storage.Store
	events      EventPublisher
	limits      UploadLimits
}

// NewVideoService events 为 nil 时不发布事件
func NewVideoService(
	videoRepo *repository.VideoRepository,
	commentRepo *repository.CommentRepository,
	likeRepo *repository.LikeRepository,
	subRepo *repository.SubscriptionRepository,
	store storage.Store,
	events EventPublisher,
	limits UploadLimits,
) *VideoService {
	return &VideoService{
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		subRepo:     subRepo,
		store:       store,
		events:      events,
		limits:      limits,
	}
}

// ListTop 首页：播放量最高的视频
func (s *VideoService) ListTop(ctx context.Context) ([]dto.VideoCard, error) {
	videos, err := s.videoRepo.ListTop(ctx, HomeLimit)
	if err != nil {
		return nil, err
	}
	return toVideoCards(videos, s.store), nil
}

// Watch 播放页数据。countView 为 true 时播放量 +1（每次 GET 都计数，不去重）。
// viewerID 为 0 表示未登录。
func (s *VideoService) Watch(ctx context.Context, videoID, viewerID int64, countView bool) (*dto.WatchPage, error) {
	video, err := s.videoRepo.GetByIDWithUser(ctx, videoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	if countView {
		if err := s.videoRepo.IncrementViews(ctx, videoID); err != nil {
			return nil, err
		}
		video.Views++
	}

	comments, err := s.commentRepo.ListByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	commentCount, err := s.commentRepo.CountByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	related, err := s.videoRepo.ListRelated(ctx, videoID, RelatedLimit)
	if err != nil {
		return nil, err
	}
	likes, err := s.likeRepo.CountByVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	subscribers, err := s.subRepo.CountByChannel(ctx, video.UserID)
	if err != nil {
		return nil, err
	}

	page := &dto.WatchPage{
		Video:       toVideoCard(video, s.store),
		Comments:     toCommentInfos(comments),
		CommentCount: commentCount,
		Related:      toVideoCards(related, s.store),
		Likes:        likes,
		Subscribers:  subscribers,
	}

	if viewerID != 0 {
		page.IsOwner = viewerID == video.UserID
		if page.Liked, err = s.likeRepo.Exists(ctx, viewerID, videoID); err != nil {
			return nil, err
		}
		if page.Subscribed, err = s.subRepo.Exists(ctx, viewerID, video.UserID); err != nil {
			return nil, err
		}
	}

	return page, nil
}

// Delete 删除视频（仅上传者本人）：事务内删除评论、点赞与视频记录，提交后再删除文件
func (s *VideoService) Delete(ctx context.Context, userID, videoID int64) error {
	video, err := s.videoRepo.GetByIDAndOwner(ctx, videoID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNoPermission
		}
		return err
	}

	if err := s.videoRepo.DeleteWithDependents(ctx, video.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVideoNoPermission
		}
		return err
	}

	// 记录已删除，文件清理失败只记日志
	cleanupCtx := context.WithoutCancel(ctx)
	s.removeFiles(cleanupCtx, video.VideoURL, video.Thumbnail)

	logger.Info("Video deleted", zap.Int64("video_id", video.ID), zap.Int64("user_id", userID))
	s.publish(cleanupCtx, infraKafka.EventVideoDeleted, video)
	return nil
}

func (s *VideoService) removeFiles(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := s.store.Remove(ctx, p); err != nil {
			logger.Error("Failed to remove stored file", zap.String("path", p), zap.Error(err))
		}
	}
}

// publish 发布视频事件，失败只记日志
func (s *VideoService) publish(ctx context.Context, eventType string, video *model.Video) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event := infraKafka.VideoEvent{
		Type:       eventType,
		VideoID:    video.ID,
		UserID:     video.UserID,
		OccurredAt: time.Now(),
	}
	if err := s.events.PublishVideoEvent(ctx, event); err != nil {
		logger.Warn("Publish video event failed",
			zap.String("type", eventType),
			zap.Int64("video_id", video.ID),
			zap.Error(err),
		)
	}
}

func toVideoCard(v *model.Video, store storage.Store) dto.VideoCard {
	return dto.VideoCard{
		ID:           v.ID,
		UserID:       v.UserID,
		Username:     v.User.Username,
		Title:        v.Title,
		Description:  v.Description,
		VideoURL:     store.URL(v.VideoURL),
		ThumbnailURL: store.URL(v.Thumbnail),
		Views:        v.Views,
		UploadDate:   v.UploadDate,
	}
}

func toVideoCards(videos []model.Video, store storage.Store) []dto.VideoCard {
	cards := make([]dto.VideoCard, 0, len(videos))
	for i := range videos {
		cards = append(cards, toVideoCard(&videos[i], store))
	}
	return cards
}
