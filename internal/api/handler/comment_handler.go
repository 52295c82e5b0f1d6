package handler

import (
	"errors"
	"net/http"
	"strconv"

	"vidshare/internal/api/dto"
	"vidshare/internal/api/middleware"
	"vidshare/internal/service"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
	videoHandler   *VideoHandler
}

// NewCommentHandler 评论失败时借助 videoHandler 重新渲染播放页
func NewCommentHandler(commentService *service.CommentService, videoHandler *VideoHandler) *CommentHandler {
	return &CommentHandler{commentService: commentService, videoHandler: videoHandler}
}

// Create POST /watch?id=
func (h *CommentHandler) Create(c *gin.Context) {
	videoID, ok := parseID(c.Query("id"))
	if !ok {
		redirectHome(c)
		return
	}

	userID := middleware.GetCurrentUserID(c)

	var form dto.CommentForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warn("Bind comment form failed", zap.Int64("video_id", videoID), zap.Error(err))
		h.videoHandler.renderWatch(c, http.StatusBadRequest, videoID, false, service.MsgTryAgainLater)
		return
	}

	if _, err := h.commentService.Create(c.Request.Context(), userID, videoID, &form); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentEmpty):
			h.videoHandler.renderWatch(c, http.StatusBadRequest, videoID, false, err.Error())
		case errors.Is(err, service.ErrVideoNotFound):
			redirectHome(c)
		default:
			logger.Error("Create comment failed", zap.Int64("video_id", videoID), zap.Int64("user_id", userID), zap.Error(err))
			h.videoHandler.renderWatch(c, http.StatusInternalServerError, videoID, false, service.MsgTryAgainLater)
		}
		return
	}

	c.Redirect(http.StatusSeeOther, "/watch?id="+strconv.FormatInt(videoID, 10))
}
