package kafka

import "time"

const (
	EventVideoCreated = "video.created"
	EventVideoDeleted = "video.deleted"
)

// VideoEvent 视频变更事件消息体，供搜索索引 worker 消费
type VideoEvent struct {
	Type       string    `json:"type"`
	VideoID    int64     `json:"video_id"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
