package service

import (
	"context"
	"errors"
	"strings"

	"vidshare/internal/api/dto"
	"vidshare/internal/model"
	"vidshare/internal/repository"

	"gorm.io/gorm"
)

var ErrCommentEmpty = errors.New("Comment cannot be empty.")

type CommentService struct {
	commentRepo *repository.CommentRepository
	videoRepo   *repository.VideoRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, videoRepo *repository.VideoRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, videoRepo: videoRepo}
}

// Create 发表评论，空白内容被拒绝
func (s *CommentService) Create(ctx context.Context, userID, videoID int64, form *dto.CommentForm) (*model.Comment, error) {
	body := strings.TrimSpace(form.Comment)
	if body == "" {
		return nil, ErrCommentEmpty
	}

	if _, err := s.videoRepo.GetByID(ctx, videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}

	comment := &model.Comment{
		UserID:  userID,
		VideoID: videoID,
		Body:    body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func toCommentInfos(comments []model.Comment) []dto.CommentInfo {
	items := make([]dto.CommentInfo, 0, len(comments))
	for _, c := range comments {
		items = append(items, dto.CommentInfo{
			ID:        c.ID,
			UserID:    c.UserID,
			Username:  c.User.Username,
			Comment:   c.Body,
			CreatedAt: c.CreatedAt,
		})
	}
	return items
}
