package model

import "time"

// Like 点赞关系，(user_id, video_id) 唯一
type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:点赞记录ID" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex:uq_likes_user_video;comment:点赞用户ID" json:"user_id"`
	VideoID   int64     `gorm:"not null;uniqueIndex:uq_likes_user_video;index:idx_likes_video_id;comment:被点赞视频ID" json:"video_id"`
	CreatedAt time.Time `gorm:"autoCreateTime;comment:点赞时间" json:"created_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Video Video `gorm:"foreignKey:VideoID" json:"-"`
}

func (Like) TableName() string {
	return "likes"
}
