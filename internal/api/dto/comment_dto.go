package dto

import "time"

// CommentForm 评论表单
type CommentForm struct {
	Comment string `form:"comment"`
}

// CommentInfo 评论（含评论者用户名）
type CommentInfo struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
