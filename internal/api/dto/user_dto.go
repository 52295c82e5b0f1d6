package dto

// ProfilePage 个人主页数据
type ProfilePage struct {
	UserID      int64       `json:"user_id"`
	Username    string      `json:"username"`
	Subscribers int64       `json:"subscribers"`
	Videos      []VideoCard `json:"videos"`
}
