package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"joblisting/internal/auth"
	"joblisting/internal/errcode"
)

const (
	usernameKey = "username"
	roleKey     = "role"
)

// TokenValidator 校验访问令牌。
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.TokenClaims, error)
}

// SessionChecker 判断令牌所属会话是否仍然有效。
type SessionChecker interface {
	IsSessionActive(ctx context.Context, username string, sessionID uint) (bool, error)
}

// AbortUnauthorized 中止请求并返回 401。
func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "code": errcode.InvalidCredentials})
}

// AuthMiddleware 校验访问令牌与其会话，并将用户名、角色注入上下文。登出或重新登录后旧令牌随即失效。
func AuthMiddleware(tokens TokenValidator, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			AbortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			AbortUnauthorized(c)
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			AbortUnauthorized(c)
			return
		}

		active, err := sessions.IsSessionActive(c.Request.Context(), claims.Username, claims.SessionID)
		if err != nil {
			LoggerFromContext(c).Error("session lookup failed", slog.String("username", claims.Username), slog.Any("error", err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": errcode.SystemError})
			return
		}
		if !active {
			AbortUnauthorized(c)
			return
		}

		c.Set(usernameKey, claims.Username)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireRole 只放行指定角色，须挂在 AuthMiddleware 之后。
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(roleKey) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "code": errcode.InvalidCredentials})
			return
		}
		c.Next()
	}
}

// Username 返回已认证的用户名。
func Username(c *gin.Context) (string, bool) {
	username := c.GetString(usernameKey)
	return username, username != ""
}
