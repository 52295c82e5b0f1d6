package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler 存活检查
type HealthHandler struct {
	name    string
	version string
	mode    string
}

func NewHealthHandler(name, version, mode string) *HealthHandler {
	return &HealthHandler{name: name, version: version, mode: mode}
}

// Healthz 健康检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} map[string]string "服务正常"
// @Router /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   h.name,
		"version":   h.version,
		"mode":      h.mode,
	})
}
