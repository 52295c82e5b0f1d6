package dto

// SubscribeForm 订阅表单
type SubscribeForm struct {
	ChannelID int64 `form:"channel_id" binding:"required,gt=0"`
}

// LikeResult 点赞切换结果
type LikeResult struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

// SubscribeResult 订阅切换结果
type SubscribeResult struct {
	Subscribed  bool  `json:"subscribed"`
	Subscribers int64 `json:"subscribers"`
}
