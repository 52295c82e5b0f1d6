package repository

import (
	"context"

	"vidshare/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Toggle 存在则删除，不存在则插入；返回操作后的点赞状态。
// 唯一索引 + ON CONFLICT DO NOTHING 保证并发下不会出现重复记录。
func (r *LikeRepository) Toggle(ctx context.Context, userID, videoID int64) (bool, error) {
	liked := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND video_id = ?", userID, videoID).Delete(&model.Like{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		liked = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&model.Like{UserID: userID, VideoID: videoID}).Error
	})
	if err != nil {
		return false, err
	}
	return liked, nil
}

func (r *LikeRepository) Exists(ctx context.Context, userID, videoID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).Count(&count).Error
	return count > 0, err
}

// CountByVideo 统计视频的点赞数
func (r *LikeRepository) CountByVideo(ctx context.Context, videoID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).Where("video_id = ?", videoID).Count(&count).Error
	return count, err
}
