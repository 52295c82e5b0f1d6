package service

import (
	"context"
	"errors"

	"vidshare/internal/api/dto"
	"vidshare/internal/repository"
	"vidshare/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrChannelNotFound     = errors.New("Channel not found.")
	ErrCannotSubscribeSelf = errors.New("You cannot subscribe to your own channel.")
)

// InteractionService 点赞与订阅
type InteractionService struct {
	likeRepo  *repository.LikeRepository
	subRepo   *repository.SubscriptionRepository
	videoRepo *repository.VideoRepository
	userRepo  *repository.UserRepository
}

func NewInteractionService(
	likeRepo *repository.LikeRepository,
	subRepo *repository.SubscriptionRepository,
	videoRepo *repository.VideoRepository,
	userRepo *repository.UserRepository,
) *InteractionService {
	return &InteractionService{likeRepo: likeRepo, subRepo: subRepo, videoRepo: videoRepo, userRepo: userRepo}
}

// ToggleLike 切换点赞状态，返回切换后的状态与点赞总数
func (s *InteractionService) ToggleLike(ctx context.Context, userID, videoID int64) (*dto.LikeResult, error) {
	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	liked, err := s.likeRepo.Toggle(ctx, userID, videoID)
	if err != nil {
		return nil, err
	}

	total, err := s.likeRepo.CountByVideo(ctx, videoID)
	if err != nil {
		logger.Warn("Count likes failed", zap.Int64("video_id", videoID), zap.Error(err))
	}
	return &dto.LikeResult{Liked: liked, Likes: total}, nil
}

// ToggleSubscription 切换订阅状态，返回切换后的状态与订阅者总数
func (s *InteractionService) ToggleSubscription(ctx context.Context, subscriberID, channelID int64) (*dto.SubscribeResult, error) {
	if subscriberID == channelID {
		return nil, ErrCannotSubscribeSelf
	}
	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	subscribed, err := s.subRepo.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return nil, err
	}

	total, err := s.subRepo.CountByChannel(ctx, channelID)
	if err != nil {
		logger.Warn("Count subscribers failed", zap.Int64("channel_id", channelID), zap.Error(err))
	}
	return &dto.SubscribeResult{Subscribed: subscribed, Subscribers: total}, nil
}
