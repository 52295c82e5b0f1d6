package handler

import (
	"errors"

	"vidshare/internal/api/dto"
	"vidshare/internal/api/middleware"
	"vidshare/internal/api/response"
	"vidshare/internal/service"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InteractionHandler struct {
	interactionService *service.InteractionService
}

func NewInteractionHandler(interactionService *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactionService: interactionService}
}

// Like 切换点赞
// @Summary 点赞/取消点赞
// @Description 对视频切换点赞状态，返回切换后的状态与点赞总数
// @Tags 互动
// @Accept x-www-form-urlencoded
// @Produce json
// @Param video_id formData int true "视频ID"
// @Success 200 {object} response.Response{data=dto.LikeResult} "操作成功"
// @Failure 400 {object} response.ErrorResponse "参数无效"
// @Failure 401 {object} response.ErrorResponse "未登录"
// @Failure 404 {object} response.ErrorResponse "视频不存在"
// @Router /like [post]
func (h *InteractionHandler) Like(c *gin.Context) {
	var form dto.VideoIDForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Invalid video ID.")
		return
	}

	result, err := h.interactionService.ToggleLike(c.Request.Context(), middleware.GetCurrentUserID(c), form.VideoID)
	if err != nil {
		handleInteractionError(c, err)
		return
	}

	response.OK(c, "ok", result)
}

// Subscribe 切换订阅
// @Summary 订阅/取消订阅
// @Description 对频道（上传者）切换订阅状态，返回切换后的状态与订阅者总数
// @Tags 互动
// @Accept x-www-form-urlencoded
// @Produce json
// @Param channel_id formData int true "频道用户ID"
// @Success 200 {object} response.Response{data=dto.SubscribeResult} "操作成功"
// @Failure 400 {object} response.ErrorResponse "参数无效或订阅自己"
// @Failure 401 {object} response.ErrorResponse "未登录"
// @Failure 404 {object} response.ErrorResponse "频道不存在"
// @Router /subscribe [post]
func (h *InteractionHandler) Subscribe(c *gin.Context) {
	var form dto.SubscribeForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Invalid channel ID.")
		return
	}

	result, err := h.interactionService.ToggleSubscription(c.Request.Context(), middleware.GetCurrentUserID(c), form.ChannelID)
	if err != nil {
		handleInteractionError(c, err)
		return
	}

	response.OK(c, "ok", result)
}

func handleInteractionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVideoNotFound),
		errors.Is(err, service.ErrChannelNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrCannotSubscribeSelf):
		response.BadRequest(c, err.Error())
	default:
		logger.Error("Interaction failed", zap.Error(err))
		response.InternalError(c, service.MsgTryAgainLater)
	}
}
