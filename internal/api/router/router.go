package router

import (
	"vidshare/internal/api/handler"
	"vidshare/internal/api/middleware"
	"vidshare/internal/session"
	"vidshare/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 各业务模块的 handler
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Video       *handler.VideoHandler
	Comment     *handler.CommentHandler
	Interaction *handler.InteractionHandler
	Search      *handler.SearchHandler
	Health      *handler.HealthHandler
}

// Options 路由配置
type Options struct {
	Sessions *session.Manager
	// Registry 为 nil 时不采集指标，也不暴露 /metrics
	Registry *prometheus.Registry
	// MediaPrefix/MediaRoot 本地存储时对外提供媒体文件，如 /Uploads -> ./Uploads
	MediaPrefix string
	MediaRoot   string
	// MaxMultipartMemory 解析 multipart 时的内存上限，超出部分写临时文件
	MaxMultipartMemory int64
	// MaxUploadBytes 上传请求体上限
	MaxUploadBytes int64
	// Swagger 是否开放 /swagger 文档
	Swagger bool
}

// New 创建 Gin 引擎并注册中间件与所有路由
func New(opts Options, h Handlers) (*gin.Engine, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	if opts.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartMemory
	}

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	if opts.Registry != nil {
		r.Use(middleware.NewMetrics(opts.Registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}
	r.Use(middleware.LoadSession(opts.Sessions))

	r.GET("/healthz", h.Health.Healthz)
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if opts.MediaRoot != "" {
		r.Static(opts.MediaPrefix, opts.MediaRoot)
	}

	Setup(r, h, opts.MaxUploadBytes)
	return r, nil
}

// Setup 注册所有业务路由，maxUploadBytes 限制上传请求体
func Setup(r *gin.Engine, h Handlers, maxUploadBytes int64) {
	// --- 公开页面 ---
	r.GET("/", h.Video.Index)
	r.GET("/search", h.Search.Search)
	r.GET("/watch", h.Video.Watch)

	// --- 认证模块 ---
	r.GET("/login", h.Auth.ShowLogin)
	r.POST("/login", h.Auth.Login)
	r.GET("/signup", h.Auth.ShowSignup)
	r.POST("/signup", h.Auth.Signup)
	r.GET("/logout", h.Auth.Logout)

	// --- 需要登录的页面 ---
	pages := r.Group("", middleware.LoginRequired())
	{
		pages.GET("/profile", h.User.Profile)
		pages.GET("/upload", h.Video.ShowUpload)
		pages.POST("/upload", middleware.BodyLimit(maxUploadBytes), h.Video.Upload)
		pages.POST("/watch", h.Comment.Create)
	}

	// --- 需要登录的接口 ---
	api := r.Group("", middleware.LoginRequiredJSON())
	{
		api.POST("/delete", h.Video.Delete)
		api.POST("/like", h.Interaction.Like)
		api.POST("/subscribe", h.Interaction.Subscribe)
	}
}
