package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"joblisting/internal/auth"
	"joblisting/internal/database"
	"joblisting/internal/errcode"
	"joblisting/internal/metrics"
)

// Service 负责注册、登录校验与会话记录。
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewService 构造账号服务。
func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, logger: logger}
}

// IsAdmin 判断用户名是否为受保护的管理员账号（不区分大小写）。
func IsAdmin(username string) bool {
	return strings.EqualFold(strings.TrimSpace(username), database.AdminUsername)
}

// Register 创建账号。用户名唯一性由唯一索引保证，重复时返回 ErrUsernameTaken。
func (s *Service) Register(ctx context.Context, username, password string, email *string, role database.Role) (database.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return database.User{}, errcode.Validation("username is required")
	}
	if password == "" {
		return database.User{}, errcode.Validation("password is required")
	}
	if role == "" {
		role = database.RoleCustomer
	}
	if !role.Valid() {
		return database.User{}, errcode.Validation("unknown role %q", role)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return database.User{}, errcode.Validation("password is too long")
		}
		return database.User{}, errcode.Store("hash password", err)
	}

	user := database.User{
		Username:     username,
		PasswordHash: hash,
		Email:        normalizeEmail(email),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return database.User{}, errcode.ErrUsernameTaken
		}
		return database.User{}, errcode.Store("create user", err)
	}

	s.logger.Info("user registered", slog.String("username", username), slog.String("role", string(role)))
	return user, nil
}

// ValidateLogin 校验凭据并返回角色；成功时开启新会话，返回的会话用于绑定访问令牌。
func (s *Service) ValidateLogin(ctx context.Context, username, password string) (database.Role, database.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", database.Session{}, errcode.ErrInvalidCredentials
	}

	var user database.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", database.Session{}, errcode.ErrInvalidCredentials
		}
		return "", database.Session{}, errcode.Store("find user", err)
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return "", database.Session{}, errcode.ErrInvalidCredentials
	}

	session, err := s.StartSession(ctx, user.Username)
	if err != nil {
		return "", database.Session{}, err
	}
	metrics.RecordWorkflowEvent(metrics.EventLogin)
	return user.Role, session, nil
}

// GetUser 按用户名读取账号。
func (s *Service) GetUser(ctx context.Context, username string) (database.User, error) {
	var user database.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.User{}, errcode.NotFound("user")
		}
		return database.User{}, errcode.Store("get user", err)
	}
	return user, nil
}

// ResetPassword 覆盖用户密码哈希。
func (s *Service) ResetPassword(ctx context.Context, username, password string) error {
	if password == "" {
		return errcode.Validation("password is required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return errcode.Validation("password is too long")
		}
		return errcode.Store("hash password", err)
	}
	result := s.db.WithContext(ctx).
		Model(&database.User{}).
		Where("username = ?", username).
		Update("password_hash", hash)
	if result.Error != nil {
		return errcode.Store("reset password", result.Error)
	}
	if result.RowsAffected == 0 {
		return errcode.NotFound("user")
	}
	return nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*email)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
