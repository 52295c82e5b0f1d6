package model

import "time"

// Subscription 订阅关系，ChannelID 为被订阅的上传者，(subscriber_id, channel_id) 唯一
type Subscription struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;comment:订阅记录ID" json:"id"`
	SubscriberID int64     `gorm:"not null;uniqueIndex:uq_subscriptions_pair;comment:订阅者ID" json:"subscriber_id"`
	ChannelID    int64     `gorm:"not null;uniqueIndex:uq_subscriptions_pair;index:idx_subscriptions_channel_id;comment:频道(用户)ID" json:"channel_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime;comment:订阅时间" json:"created_at"`

	Subscriber User `gorm:"foreignKey:SubscriberID" json:"-"`
	Channel    User `gorm:"foreignKey:ChannelID" json:"-"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
