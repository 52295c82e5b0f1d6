package model

import "time"

// Video 视频模型，VideoURL/Thumbnail 保存存储层返回的路径
type Video struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;comment:视频标识" json:"id"`
	UserID      int64     `gorm:"not null;index:idx_videos_user_id;comment:上传者ID" json:"user_id"`
	Title       string    `gorm:"size:255;not null;comment:视频标题" json:"title"`
	Description string    `gorm:"type:text;comment:视频描述" json:"description"`
	VideoURL    string    `gorm:"size:500;not null;comment:视频文件路径" json:"video_url"`
	Thumbnail   string    `gorm:"size:500;not null;comment:封面文件路径" json:"thumbnail"`
	Views       int64     `gorm:"not null;default:0;index:idx_videos_views;comment:播放量" json:"views"`
	UploadDate  time.Time `gorm:"autoCreateTime;index:idx_videos_upload_date;comment:上传时间" json:"upload_date"`

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Video) TableName() string {
	return "videos"
}
