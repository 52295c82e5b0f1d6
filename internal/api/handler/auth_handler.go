package handler

import (
	"errors"
	"net/http"

	"vidshare/internal/api/dto"
	"vidshare/internal/api/middleware"
	"vidshare/internal/service"
	"vidshare/internal/session"
	"vidshare/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const msgRegistered = "Account created successfully! Please log in."

type AuthHandler struct {
	authService *service.AuthService
	sessions    *session.Manager
}

func NewAuthHandler(authService *service.AuthService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions}
}

// ShowLogin GET /login
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	data := loginPage(c, "")
	if c.Query("registered") == "1" {
		data["Success"] = msgRegistered
	}
	c.HTML(http.StatusOK, "login.html", data)
}

// Login POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warn("Bind login form failed", zap.Error(err))
		data := loginPage(c, "")
		data["Error"] = service.MsgTryAgainLater
		c.HTML(http.StatusBadRequest, "login.html", data)
		return
	}

	token, sess, err := h.authService.Login(c.Request.Context(), &form)
	if err != nil {
		data := loginPage(c, form.Username)
		if errors.Is(err, service.ErrInvalidCredential) {
			data["Error"] = err.Error()
			c.HTML(http.StatusUnauthorized, "login.html", data)
			return
		}
		logger.Error("Login failed", zap.String("username", form.Username), zap.Error(err))
		data["Error"] = service.MsgTryAgainLater
		c.HTML(http.StatusInternalServerError, "login.html", data)
		return
	}

	middleware.SetSessionCookie(c, h.sessions, token)
	logger.Info("User logged in", zap.Int64("user_id", sess.UserID))
	c.Redirect(http.StatusSeeOther, "/")
}

// ShowSignup GET /signup
func (h *AuthHandler) ShowSignup(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", signupPage(c, &dto.SignupForm{}))
}

// Signup POST /signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var form dto.SignupForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warn("Bind signup form failed", zap.Error(err))
		data := signupPage(c, &dto.SignupForm{})
		data["Error"] = service.MsgTryAgainLater
		c.HTML(http.StatusBadRequest, "signup.html", data)
		return
	}

	if _, err := h.authService.Signup(c.Request.Context(), &form); err != nil {
		handleSignupError(c, &form, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

// Logout GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess, ok := middleware.CurrentSession(c); ok {
		if err := h.authService.Logout(c.Request.Context(), sess); err != nil {
			logger.Error("Revoke session failed", zap.Int64("user_id", sess.UserID), zap.Error(err))
		}
	}
	middleware.ClearSessionCookie(c, h.sessions)
	redirectHome(c)
}

func loginPage(c *gin.Context, username string) gin.H {
	data := page(c, "Login")
	data["Username"] = username
	return data
}

func signupPage(c *gin.Context, form *dto.SignupForm) gin.H {
	data := page(c, "Sign Up")
	data["Username"] = form.Username
	data["Email"] = form.Email
	return data
}

func handleSignupError(c *gin.Context, form *dto.SignupForm, err error) {
	data := signupPage(c, form)
	switch {
	case errors.Is(err, service.ErrFieldsRequired),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrPasswordTooShort):
		data["Error"] = err.Error()
		c.HTML(http.StatusBadRequest, "signup.html", data)
	case errors.Is(err, service.ErrUserExists):
		data["Error"] = err.Error()
		c.HTML(http.StatusConflict, "signup.html", data)
	default:
		logger.Error("Signup failed", zap.String("username", form.Username), zap.Error(err))
		data["Error"] = service.MsgTryAgainLater
		c.HTML(http.StatusInternalServerError, "signup.html", data)
	}
}
