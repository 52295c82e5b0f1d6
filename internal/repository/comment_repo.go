package repository

import (
	"context"

	"vidshare/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListByVideo 视频的评论（含评论者），最新在前
func (r *CommentRepository) ListByVideo(ctx context.Context, videoID int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("video_id = ?", videoID).
		Order("created_at DESC").Order("id DESC").
		Find(&comments).Error
	return comments, err
}

// CountByVideo 统计视频评论数
func (r *CommentRepository) CountByVideo(ctx context.Context, videoID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}
