package handler

import (
	"errors"
	"net/http"

	"vidshare/internal/api/middleware"
	"vidshare/internal/service"
	"vidshare/internal/session"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgNoOwnVideos = "You haven't uploaded any videos yet."

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
	sessions    *session.Manager
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService, sessions *session.Manager) *UserHandler {
	return &UserHandler{userService: userService, authService: authService, sessions: sessions}
}

// Profile GET /profile
func (h *UserHandler) Profile(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	profile, err := h.userService.Profile(c.Request.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			// 账号已不存在：吊销会话后重新登录
			if err := h.authService.Logout(c.Request.Context(), sess); err != nil {
				logger.Warn("Revoke stale session failed", zap.Int64("user_id", sess.UserID), zap.Error(err))
			}
			middleware.ClearSessionCookie(c, h.sessions)
			c.Redirect(http.StatusFound, "/login")
			return
		}
		logger.Error("Load profile failed", zap.Int64("user_id", sess.UserID), zap.Error(err))
		renderError(c, http.StatusInternalServerError, msgFetchVideosErr)
		return
	}

	data := page(c, profile.Username)
	data["Profile"] = profile
	if len(profile.Videos) == 0 {
		data["Message"] = msgNoOwnVideos
	}
	c.HTML(http.StatusOK, "profile.html", data)
}
