package repository

import (
	"context"
	"strings"

	"vidshare/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create 创建视频记录
func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

// GetByID 根据 ID 获取视频
func (r *VideoRepository) GetByID(ctx context.Context, id int64) (*model.Video, error) {
	var video model.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDWithUser 根据 ID 获取视频（含上传者）
func (r *VideoRepository) GetByIDWithUser(ctx context.Context, id int64) (*model.Video, error) {
	var video model.Video
	if err := r.db.WithContext(ctx).Preload("User").First(&video, id).Error; err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDAndOwner 根据视频 ID + 上传者 ID 查询（权限校验用）
func (r *VideoRepository) GetByIDAndOwner(ctx context.Context, videoID, userID int64) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", videoID, userID).First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

// GetByIDsWithUser 批量查询（顺序不保证）
func (r *VideoRepository) GetByIDsWithUser(ctx context.Context, ids []int64) ([]model.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var videos []model.Video
	err := r.db.WithContext(ctx).Preload("User").Where("id IN ?", ids).Find(&videos).Error
	return videos, err
}

// ListTop 按播放量倒序取前 limit 个视频
func (r *VideoRepository) ListTop(ctx context.Context, limit int) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).Preload("User").
		Order("views DESC").Order("id DESC").
		Limit(limit).Find(&videos).Error
	return videos, err
}

// ListByUser 某用户上传的视频，最新上传在前
func (r *VideoRepository) ListByUser(ctx context.Context, userID int64) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("upload_date DESC").Order("id DESC").
		Find(&videos).Error
	return videos, err
}

// ListRelated 随机取 limit 个其他视频
func (r *VideoRepository) ListRelated(ctx context.Context, excludeID int64, limit int) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).Preload("User").
		Where("id <> ?", excludeID).
		Order("RANDOM()").
		Limit(limit).Find(&videos).Error
	return videos, err
}

// ListAllWithUser 全量视频（索引重建用）
func (r *VideoRepository) ListAllWithUser(ctx context.Context) ([]model.Video, error) {
	var videos []model.Video
	err := r.db.WithContext(ctx).Preload("User").Order("id ASC").Find(&videos).Error
	return videos, err
}

// Search 标题或描述包含 keyword（不区分大小写），按播放量倒序
func (r *VideoRepository) Search(ctx context.Context, keyword string, limit int) ([]model.Video, error) {
	var videos []model.Video
	err := r.searchScope(ctx, keyword).Limit(limit).Find(&videos).Error
	return videos, err
}

// SearchAfterID 与 Search 相同，但只查 id 大于 afterID 的视频（尚未进入搜索索引的部分）
func (r *VideoRepository) SearchAfterID(ctx context.Context, keyword string, afterID int64, limit int) ([]model.Video, error) {
	var videos []model.Video
	err := r.searchScope(ctx, keyword).Where("videos.id > ?", afterID).Limit(limit).Find(&videos).Error
	return videos, err
}

func (r *VideoRepository) searchScope(ctx context.Context, keyword string) *gorm.DB {
	cond, pattern := searchCondition(r.db.Dialector.Name(), keyword)
	return r.db.WithContext(ctx).Model(&model.Video{}).
		Select("videos.*").
		Joins("JOIN users ON users.id = videos.user_id").
		Where(cond, pattern, pattern).
		Preload("User").
		Order("videos.views DESC").Order("videos.id DESC")
}

// searchCondition 返回匹配条件与 LIKE 模式。
// postgres 用 ILIKE；sqlite 的 LOWER() 只处理 ASCII，非 ASCII 字母在 sqlite 上区分大小写。
func searchCondition(dialect, keyword string) (string, string) {
	if dialect == "postgres" {
		return `(videos.title ILIKE ? ESCAPE '\' OR videos.description ILIKE ? ESCAPE '\')`, "%" + escapeLike(keyword) + "%"
	}
	return `(LOWER(videos.title) LIKE ? ESCAPE '\' OR LOWER(videos.description) LIKE ? ESCAPE '\')`, "%" + escapeLike(strings.ToLower(keyword)) + "%"
}

// IncrementViews 播放量 +1
func (r *VideoRepository) IncrementViews(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Video{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// DeleteWithDependents 在一个事务内删除视频及其评论、点赞
func (r *VideoRepository) DeleteWithDependents(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("video_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("video_id = ?", id).Delete(&model.Like{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Video{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
