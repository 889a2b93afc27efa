package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"joblisting/internal/account"
	"joblisting/internal/auth"
	"joblisting/internal/database"
	"joblisting/internal/errcode"
)

// AuthHandler 处理注册、登录与退出。
type AuthHandler struct {
	accounts              *account.Service
	authService           *auth.AuthService
	rateCounter           redisRateCounter
	loginRateLimitPerHour int
}

// NewAuthHandler 构造认证处理器。rateCounter 为 nil 时不做登录限流。
func NewAuthHandler(accounts *account.Service, authService *auth.AuthService, rateCounter redisRateCounter, loginRateLimitPerHour int) *AuthHandler {
	return &AuthHandler{
		accounts:              accounts,
		authService:           authService,
		rateCounter:           rateCounter,
		loginRateLimitPerHour: loginRateLimitPerHour,
	}
}

type registerRequest struct {
	Username        string  `json:"username" binding:"required,max=64"`
	Password        string  `json:"password" binding:"required,max=72"`
	ConfirmPassword string  `json:"confirm_password" binding:"required"`
	Email           *string `json:"email" binding:"omitempty,email"`
}

// Register 创建顾客账号。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.Password != req.ConfirmPassword {
		BadRequest(c, "password confirmation does not match")
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password, req.Email, database.RoleCustomer)
	if err != nil {
		loggerFromContext(c).Info("register failed", slog.String("username", req.Username), slog.Any("error", err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "username": user.Username, "role": user.Role})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// Login 校验口令、开启会话并返回访问令牌。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	ctx := c.Request.Context()
	logger := loggerFromContext(c).With(slog.String("username", req.Username))

	if h.rateCounter != nil && h.loginRateLimitPerHour > 0 {
		count, err := incrWithTTL(ctx, h.rateCounter, loginRateKey(c.ClientIP(), req.Username, time.Now()), time.Hour)
		if err != nil {
			logger.Warn("login rate counter unavailable", slog.Any("error", err))
			count = 0
		}
		if count > int64(h.loginRateLimitPerHour) {
			Error(c, http.StatusTooManyRequests, errcode.InvalidInput, "rate limit exceeded")
			return
		}
	}

	role, session, err := h.accounts.ValidateLogin(ctx, req.Username, req.Password)
	if err != nil {
		logger.Info("login failed", slog.Any("error", err))
		respondError(c, err)
		return
	}

	token, err := h.authService.GenerateAccessToken(req.Username, string(role), session.ID)
	if err != nil {
		logger.Error("generate access token failed", slog.Any("error", err))
		Internal(c)
		return
	}

	logger.Info("login succeeded", slog.String("role", string(role)))
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.authService.AccessTokenTTL().Seconds()),
		Username:    req.Username,
		Role:        string(role),
	})
}

// Logout 结束当前用户的会话，之后旧令牌不再被接受。
func (h *AuthHandler) Logout(c *gin.Context) {
	username, ok := currentUsername(c)
	if !ok {
		return
	}
	if err := h.accounts.EndSession(c.Request.Context(), username); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
