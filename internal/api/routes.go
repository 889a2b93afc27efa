package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"joblisting/internal/account"
	"joblisting/internal/api/middleware"
	"joblisting/internal/application"
	"joblisting/internal/auth"
	"joblisting/internal/contact"
	"joblisting/internal/database"
	"joblisting/internal/job"
	"joblisting/internal/notification"
	"joblisting/internal/resume"
)

// Deps 汇总路由需要的服务。RedisClient 为 nil 时不做登录限流，也不注册 /v1/ws。
type Deps struct {
	Accounts      *account.Service
	Jobs          *job.Service
	Applications  *application.Service
	Notifications *notification.Service
	Resumes       *resume.Service
	Contact       *contact.Service
	Auth          *auth.AuthService

	RedisClient           *redis.Client
	LoginRateLimitPerHour int
	AllowedOrigins        []string
	Logger                *slog.Logger
}

// RegisterRoutes 注册 /v1 下的业务路由。
func RegisterRoutes(router *gin.Engine, deps Deps) {
	var rateCounter redisRateCounter
	if deps.RedisClient != nil {
		rateCounter = deps.RedisClient
	}

	authHandler := NewAuthHandler(deps.Accounts, deps.Auth, rateCounter, deps.LoginRateLimitPerHour)
	jobHandler := NewJobHandler(deps.Jobs)
	applicationHandler := NewApplicationHandler(deps.Applications, deps.Jobs, deps.Resumes)
	notificationHandler := NewNotificationHandler(deps.Notifications)
	resumeHandler := NewResumeHandler(deps.Resumes)
	contactHandler := NewContactHandler(deps.Contact)
	adminHandler := NewAdminHandler(deps.Accounts, deps.Jobs, deps.Applications, deps.Contact)

	authMiddleware := middleware.AuthMiddleware(deps.Auth, deps.Accounts)
	adminOnly := middleware.RequireRole(string(database.RoleAdmin))

	v1 := router.Group("/v1")
	{
		if deps.RedisClient != nil {
			wsHandler := NewWsHandler(deps.RedisClient, deps.Auth, deps.Accounts, deps.Logger, deps.AllowedOrigins)
			v1.GET("/ws", wsHandler.HandleConnection)
		}

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}

		jobGroup := v1.Group("/jobs")
		{
			jobGroup.GET("", jobHandler.List)
			jobGroup.GET("/:id", jobHandler.Get)
			jobGroup.POST("", authMiddleware, adminOnly, jobHandler.Create)
			jobGroup.PUT("/:id", authMiddleware, adminOnly, jobHandler.Update)
			jobGroup.DELETE("/:id", authMiddleware, adminOnly, jobHandler.Delete)
		}

		applicationGroup := v1.Group("/applications")
		applicationGroup.Use(authMiddleware)
		{
			applicationGroup.POST("", applicationHandler.Submit)
			applicationGroup.GET("/mine", applicationHandler.ListMine)
			applicationGroup.GET("", adminOnly, applicationHandler.ListAll)
			applicationGroup.PUT("/:id/status", adminOnly, applicationHandler.SetStatus)
			applicationGroup.POST("/:id/approve", adminOnly, applicationHandler.Approve)
			applicationGroup.POST("/:id/reject", adminOnly, applicationHandler.Reject)
		}

		notificationGroup := v1.Group("/notifications")
		notificationGroup.Use(authMiddleware)
		{
			notificationGroup.GET("", notificationHandler.List)
			notificationGroup.GET("/unread-count", notificationHandler.UnreadCount)
			notificationGroup.POST("/:id/read", notificationHandler.MarkRead)
			notificationGroup.POST("/read-all", notificationHandler.MarkAllRead)
		}

		resumeGroup := v1.Group("/resume")
		resumeGroup.Use(authMiddleware)
		{
			resumeGroup.GET("", resumeHandler.Get)
			resumeGroup.PUT("", resumeHandler.Put)
			resumeGroup.GET("/status", resumeHandler.Status)
		}

		contactGroup := v1.Group("/contact")
		contactGroup.Use(authMiddleware)
		{
			contactGroup.POST("", contactHandler.Submit)
			contactGroup.GET("/mine", contactHandler.ListMine)
		}

		adminGroup := v1.Group("/admin")
		adminGroup.Use(authMiddleware, adminOnly)
		{
			adminGroup.GET("/users", adminHandler.ListUsers)
			adminGroup.GET("/users/active", adminHandler.ListActiveUsers)
			adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)
			adminGroup.DELETE("/users", adminHandler.BulkDeleteUsers)
			adminGroup.GET("/stats", adminHandler.Stats)
			adminGroup.GET("/contact", contactHandler.ListAll)
			adminGroup.GET("/contact/unread-count", contactHandler.UnreadCount)
			adminGroup.POST("/contact/:id/read", contactHandler.MarkRead)
			adminGroup.POST("/contact/:id/respond", contactHandler.Respond)
		}
	}
}
