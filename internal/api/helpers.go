package api

import (
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"

	"joblisting/internal/api/middleware"
)

// textPolicy 去掉自由文本中的全部标记，只保留纯文本。
var textPolicy = bluemonday.StrictPolicy()

// sanitizeText 清洗用户输入的自由文本。StrictPolicy 会转义实体，这里再还原为原始字符。
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func loggerFromContext(c *gin.Context) *slog.Logger {
	return middleware.LoggerFromContext(c)
}

// parseID 解析路径中的正整数 id，失败时已经写好 400 响应。
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// currentUsername 返回已认证用户名，缺失时已经写好 401 响应。
func currentUsername(c *gin.Context) (string, bool) {
	username, ok := middleware.Username(c)
	if !ok {
		middleware.AbortUnauthorized(c)
		return "", false
	}
	return username, true
}
