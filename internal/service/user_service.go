package service

import (
	"context"
	"errors"

	"vidshare/internal/api/dto"
	"vidshare/internal/infra/storage"
	"vidshare/internal/repository"

	"gorm.io/gorm"
)

type UserService struct {
	userRepo  *repository.UserRepository
	videoRepo *repository.VideoRepository
	subRepo   *repository.SubscriptionRepository
	store     storage.Store
}

func NewUserService(
	userRepo *repository.UserRepository,
	videoRepo *repository.VideoRepository,
	subRepo *repository.SubscriptionRepository,
	store storage.Store,
) *UserService {
	return &UserService{userRepo: userRepo, videoRepo: videoRepo, subRepo: subRepo, store: store}
}

// Profile 用户自己的视频列表，最新上传在前
func (s *UserService) Profile(ctx context.Context, userID int64) (*dto.ProfilePage, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	videos, err := s.videoRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range videos {
		videos[i].User = *user
	}

	subscribers, err := s.subRepo.CountByChannel(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.ProfilePage{
		UserID:      user.ID,
		Username:    user.Username,
		Subscribers: subscribers,
		Videos:      toVideoCards(videos, s.store),
	}, nil
}
