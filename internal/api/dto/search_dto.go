package dto

// SearchRequest 搜索请求参数
type SearchRequest struct {
	Q string `form:"q"`
}

// SearchResult 搜索结果中的视频信息，thumbnail 为可访问地址
type SearchResult struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Username  string `json:"username"`
	Views     int64  `json:"views"`
}
