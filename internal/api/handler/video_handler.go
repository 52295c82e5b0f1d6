package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"vidshare/internal/api/dto"
	"vidshare/internal/api/middleware"
	"vidshare/internal/api/response"
	"vidshare/internal/service"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgNoVideos       = "No videos found. Upload some videos to get started!"
	msgFetchVideosErr = "Error fetching videos. Please try again later."
)

// UploadPageLimits 上传页展示的大小上限（MB）
type UploadPageLimits struct {
	MaxVideoMB     int64
	MaxThumbnailMB int64
}

type VideoHandler struct {
	videoService *service.VideoService
	limits       UploadPageLimits
}

func NewVideoHandler(videoService *service.VideoService, limits UploadPageLimits) *VideoHandler {
	return &VideoHandler{videoService: videoService, limits: limits}
}

// Index GET /
func (h *VideoHandler) Index(c *gin.Context) {
	data := page(c, "")

	videos, err := h.videoService.ListTop(c.Request.Context())
	if err != nil {
		logger.Error("List top videos failed", zap.Error(err))
		data["Videos"] = []dto.VideoCard{}
		data["Message"] = msgFetchVideosErr
		c.HTML(http.StatusInternalServerError, "index.html", data)
		return
	}

	data["Videos"] = videos
	if len(videos) == 0 {
		data["Message"] = msgNoVideos
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// Watch GET /watch?id=
func (h *VideoHandler) Watch(c *gin.Context) {
	videoID, ok := parseID(c.Query("id"))
	if !ok {
		redirectHome(c)
		return
	}
	h.renderWatch(c, http.StatusOK, videoID, true, "")
}

// renderWatch 渲染播放页；countView 为 false 时不计播放量
func (h *VideoHandler) renderWatch(c *gin.Context, status int, videoID int64, countView bool, errMsg string) {
	viewerID := middleware.GetCurrentUserID(c)

	watch, err := h.videoService.Watch(c.Request.Context(), videoID, viewerID, countView)
	if err != nil {
		if errors.Is(err, service.ErrVideoNotFound) {
			redirectHome(c)
			return
		}
		logger.Error("Load watch page failed", zap.Int64("video_id", videoID), zap.Error(err))
		renderError(c, http.StatusInternalServerError, msgFetchVideosErr)
		return
	}

	data := page(c, watch.Video.Title)
	data["Page"] = watch
	data["Error"] = errMsg
	c.HTML(status, "watch.html", data)
}

// ShowUpload GET /upload
func (h *VideoHandler) ShowUpload(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.html", h.uploadPage(c, &dto.UploadForm{}, ""))
}

// Upload POST /upload
func (h *VideoHandler) Upload(c *gin.Context) {
	var form dto.UploadForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderUploadError(c, &form, uploadTransportError(err))
		return
	}

	video, err := formFile(c, "video")
	if err != nil {
		h.renderUploadError(c, &form, err)
		return
	}
	thumbnail, err := formFile(c, "thumbnail")
	if err != nil {
		h.renderUploadError(c, &form, err)
		return
	}

	userID := middleware.GetCurrentUserID(c)
	if _, err := h.videoService.Upload(c.Request.Context(), userID, &form, video, thumbnail); err != nil {
		h.renderUploadError(c, &form, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/profile")
}

func (h *VideoHandler) uploadPage(c *gin.Context, form *dto.UploadForm, errMsg string) gin.H {
	data := page(c, "Upload Video")
	data["Form"] = form
	data["Error"] = errMsg
	data["MaxVideoMB"] = h.limits.MaxVideoMB
	data["MaxThumbnailMB"] = h.limits.MaxThumbnailMB
	return data
}

func (h *VideoHandler) renderUploadError(c *gin.Context, form *dto.UploadForm, err error) {
	switch {
	case errors.Is(err, service.ErrFieldsRequired),
		errors.Is(err, service.ErrInvalidVideoFormat),
		errors.Is(err, service.ErrInvalidThumbnailFormat),
		errors.Is(err, service.ErrVideoTooLarge),
		errors.Is(err, service.ErrThumbnailTooLarge),
		errors.Is(err, service.ErrFileUpload):
		c.HTML(http.StatusBadRequest, "upload.html", h.uploadPage(c, form, err.Error()))
	case errors.Is(err, service.ErrUploadFailed):
		c.HTML(http.StatusInternalServerError, "upload.html", h.uploadPage(c, form, err.Error()))
	default:
		logger.Error("Upload video failed", zap.Error(err))
		c.HTML(http.StatusInternalServerError, "upload.html", h.uploadPage(c, form, service.ErrUploadFailed.Error()))
	}
}

// formFile 读取 multipart 文件字段；字段缺失返回 nil
func formFile(c *gin.Context, name string) (*service.UploadFile, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		// 非 multipart 请求按缺少文件处理
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, uploadTransportError(err)
	}
	return &service.UploadFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}, nil
}

// uploadTransportError 包装 multipart 传输层错误（超出请求体上限等）
func uploadTransportError(err error) error {
	return fmt.Errorf("%w: %v", service.ErrFileUpload, err)
}

// Delete 删除自己的视频
// @Summary 删除视频
// @Description 删除当前用户上传的视频，同时删除其评论、点赞与媒体文件
// @Tags 视频
// @Accept x-www-form-urlencoded
// @Produce json
// @Param video_id formData int true "视频ID"
// @Success 200 {object} response.Response "删除成功"
// @Failure 400 {object} response.ErrorResponse "参数无效"
// @Failure 401 {object} response.ErrorResponse "未登录"
// @Failure 403 {object} response.ErrorResponse "无权限"
// @Router /delete [post]
func (h *VideoHandler) Delete(c *gin.Context) {
	var form dto.VideoIDForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "Invalid video ID.")
		return
	}

	userID := middleware.GetCurrentUserID(c)
	if err := h.videoService.Delete(c.Request.Context(), userID, form.VideoID); err != nil {
		handleVideoError(c, err)
		return
	}

	response.OK(c, "Video deleted successfully.", nil)
}

func handleVideoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVideoNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrVideoNoPermission):
		response.Forbidden(c, err.Error())
	default:
		logger.Error("Video operation failed", zap.Error(err))
		response.InternalError(c, service.MsgTryAgainLater)
	}
}
