package dto

import "time"

// UploadForm 视频上传表单中的文本字段（multipart/form-data）
type UploadForm struct {
	Title       string `form:"title"`
	Description string `form:"description"`
}

// VideoIDForm 以 video_id 标识视频的表单（删除、点赞）
type VideoIDForm struct {
	VideoID int64 `form:"video_id" binding:"required,gt=0"`
}

// VideoCard 列表中的视频，URL 已由存储层解析为可访问地址
type VideoCard struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Views        int64     `json:"views"`
	UploadDate   time.Time `json:"upload_date"`
}

// WatchPage 播放页数据
type WatchPage struct {
	Video       VideoCard     `json:"video"`
	Comments     []CommentInfo `json:"comments"`
	CommentCount int64         `json:"comment_count"`
	Related      []VideoCard   `json:"related"`
	Likes        int64         `json:"likes"`
	Subscribers  int64         `json:"subscribers"`
	Liked        bool          `json:"liked"`
	Subscribed   bool          `json:"subscribed"`
	IsOwner      bool          `json:"is_owner"`
}
