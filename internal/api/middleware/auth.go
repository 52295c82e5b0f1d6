package middleware

import (
	"errors"
	"net/http"

	"vidshare/internal/api/response"
	"vidshare/internal/session"
	"vidshare/pkg/logger"
	"vidshare/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ContextKeySession = "currentSession"

// LoadSession 解析会话 Cookie，有效时把 *session.Session 存入上下文；不拦截请求
func LoadSession(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(manager.CookieName())
		if err != nil || token == "" {
			c.Next()
			return
		}

		sess, err := manager.Parse(c.Request.Context(), token)
		if err != nil {
			// 过期、被吊销或伪造的 Cookie 直接清除
			if errors.Is(err, utils.ErrInvalidToken) || errors.Is(err, utils.ErrExpiredToken) || errors.Is(err, session.ErrRevoked) {
				ClearSessionCookie(c, manager)
			} else {
				logger.Warn("Session check failed", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(ContextKeySession, sess)
		c.Next()
	}
}

// LoginRequired 页面路由：未登录跳转到登录页
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRequiredJSON 接口路由：未登录返回 401
func LoginRequiredJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentSession(c); !ok {
			response.Unauthorized(c, "Please log in first.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentSession 从 Gin Context 中获取当前会话
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	val, exists := c.Get(ContextKeySession)
	if !exists {
		return nil, false
	}
	sess, ok := val.(*session.Session)
	return sess, ok && sess != nil
}

// GetCurrentUserID 当前登录用户 ID，未登录返回 0
func GetCurrentUserID(c *gin.Context) int64 {
	if sess, ok := CurrentSession(c); ok {
		return sess.UserID
	}
	return 0
}

// SetSessionCookie 写入会话 Cookie（HttpOnly, SameSite=Lax）
func SetSessionCookie(c *gin.Context, manager *session.Manager, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(manager.CookieName(), token, int(manager.TTL().Seconds()), "/", "", manager.Secure(), true)
}

// ClearSessionCookie 删除会话 Cookie
func ClearSessionCookie(c *gin.Context, manager *session.Manager) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(manager.CookieName(), "", -1, "/", "", manager.Secure(), true)
}
