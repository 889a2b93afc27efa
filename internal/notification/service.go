package notification

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"joblisting/internal/database"
	"joblisting/internal/errcode"
	"joblisting/internal/metrics"
)

// Service 维护按用户名追加的通知记录及其已读状态。
type Service struct {
	db        *gorm.DB
	publisher Publisher
	logger    *slog.Logger
}

// NewService 构造通知服务。publisher 可以为 nil，此时不做实时推送。
func NewService(db *gorm.DB, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, publisher: publisher, logger: logger}
}

// Record 在调用方的事务内写入一条通知，供需要与业务写入原子提交的流程使用。
func Record(tx *gorm.DB, username, jobTitle, message, status string) (database.Notification, error) {
	n := database.Notification{
		Username: strings.TrimSpace(username),
		JobTitle: jobTitle,
		Message:  message,
		Status:   status,
	}
	if n.Username == "" {
		return database.Notification{}, errcode.Validation("notification username is required")
	}
	if err := tx.Create(&n).Error; err != nil {
		return database.Notification{}, errcode.Store("create notification", err)
	}
	return n, nil
}

// Create 写入一条通知并在提交后推送。
func (s *Service) Create(ctx context.Context, username, jobTitle, message, status string) (database.Notification, error) {
	n, err := Record(s.db.WithContext(ctx), username, jobTitle, message, status)
	if err != nil {
		return database.Notification{}, err
	}
	s.Publish(ctx, n)
	return n, nil
}

// Publish 推送一条已提交的通知。失败只记录日志。
func (s *Service) Publish(ctx context.Context, n database.Notification) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, EventFrom(n))
	metrics.RecordNotificationPublish(err)
	if err != nil {
		s.logger.Warn("publish notification failed",
			slog.Uint64("notification_id", uint64(n.ID)),
			slog.String("username", n.Username),
			slog.Any("error", err),
		)
	}
}

// UnreadCount 返回用户的未读通知数。
func (s *Service) UnreadCount(ctx context.Context, username string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("username = ? AND is_read = ?", username, false).
		Count(&count).Error
	if err != nil {
		return 0, errcode.Store("count unread notifications", err)
	}
	return count, nil
}

// ListUnread 按时间倒序返回未读通知。
func (s *Service) ListUnread(ctx context.Context, username string) ([]database.Notification, error) {
	var items []database.Notification
	err := s.db.WithContext(ctx).
		Where("username = ? AND is_read = ?", username, false).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, errcode.Store("list unread notifications", err)
	}
	return items, nil
}

// ListAll 按时间倒序返回全部通知，包含已读状态。
func (s *Service) ListAll(ctx context.Context, username string) ([]database.Notification, error) {
	var items []database.Notification
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC").Order("id DESC").
		Find(&items).Error
	if err != nil {
		return nil, errcode.Store("list notifications", err)
	}
	return items, nil
}

// Get 按 id 读取通知。
func (s *Service) Get(ctx context.Context, id uint) (database.Notification, error) {
	var n database.Notification
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.Notification{}, errcode.NotFound("notification")
		}
		return database.Notification{}, errcode.Store("get notification", err)
	}
	return n, nil
}

// MarkRead 将单条通知标记为已读。
func (s *Service) MarkRead(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return errcode.Store("mark notification read", result.Error)
	}
	if result.RowsAffected == 0 {
		return errcode.NotFound("notification")
	}
	return nil
}

// MarkAllRead 将用户的全部通知标记为已读，重复调用不会报错。
func (s *Service) MarkAllRead(ctx context.Context, username string) error {
	err := s.db.WithContext(ctx).
		Model(&database.Notification{}).
		Where("username = ?", username).
		Update("is_read", true).Error
	if err != nil {
		return errcode.Store("mark all notifications read", err)
	}
	return nil
}
