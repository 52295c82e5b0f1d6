package handler

import (
	"net/http"
	"strconv"

	"vidshare/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// page 页面模板的公共数据；模板中引用的键都需预先存在
func page(c *gin.Context, title string) gin.H {
	sess, _ := middleware.CurrentSession(c)
	return gin.H{
		"Viewer":  sess,
		"Title":   title,
		"Error":   "",
		"Success": "",
		"Message": "",
	}
}

// renderError 渲染通用错误页
func renderError(c *gin.Context, status int, message string) {
	data := page(c, "Error")
	data["Message"] = message
	c.HTML(status, "error.html", data)
}

// parseID 解析正整数 ID
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}
