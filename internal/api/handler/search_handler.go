package handler

import (
	"net/http"

	"vidshare/internal/api/dto"
	"vidshare/internal/api/response"
	"vidshare/internal/service"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SearchHandler struct {
	searchService *service.SearchService
}

func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search 搜索视频
// @Summary 搜索视频
// @Description 按标题或描述模糊匹配（不区分大小写），按播放量倒序；q 为空时返回空数组
// @Tags 搜索
// @Produce json
// @Param q query string false "关键字"
// @Success 200 {array} dto.SearchResult "搜索结果"
// @Failure 400 {object} response.ErrorResponse "参数无效"
// @Failure 500 {object} response.ErrorResponse "搜索失败"
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		logger.Warn("Bind search query failed", zap.Error(err))
		response.BadRequest(c, "Invalid search query.")
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), req.Q)
	if err != nil {
		logger.Error("Search videos failed", zap.String("q", req.Q), zap.Error(err))
		response.InternalError(c, service.MsgTryAgainLater)
		return
	}

	c.JSON(http.StatusOK, results)
}
