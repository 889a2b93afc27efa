package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"joblisting/internal/errcode"
)

func Error(c *gin.Context, status int, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, errcode.InvalidInput, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, errcode.ResourceMissing, msg) }
func Internal(c *gin.Context)               { Error(c, http.StatusInternalServerError, errcode.SystemError, "internal error") }

// respondError 将服务层错误映射为 HTTP 响应。存储错误只记日志，不向客户端暴露细节。
func respondError(c *gin.Context, err error) {
	var e *errcode.Error
	if !errors.As(err, &e) {
		loggerFromContext(c).Error("unclassified error", slog.Any("error", err))
		Internal(c)
		return
	}

	switch e.Kind {
	case errcode.KindValidation:
		status := http.StatusBadRequest
		if e.Code == errcode.InvalidCredentials {
			status = http.StatusUnauthorized
		}
		Error(c, status, e.Code, e.Message)
	case errcode.KindNotFound:
		Error(c, http.StatusNotFound, e.Code, e.Message)
	case errcode.KindConflict:
		status := http.StatusConflict
		if e.Code == errcode.CannotDeleteAdmin {
			status = http.StatusForbidden
		}
		Error(c, status, e.Code, e.Message)
	default:
		loggerFromContext(c).Error("store operation failed", slog.String("op", e.Message), slog.Any("error", e.Err))
		Internal(c)
	}
}
