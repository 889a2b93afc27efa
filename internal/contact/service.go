package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"joblisting/internal/database"
	"joblisting/internal/errcode"
	"joblisting/internal/metrics"
	"joblisting/internal/notification"
)

// notificationSubject 是留言通知的主题字段。
const notificationSubject = "Contact Us"

// Submission 是用户提交的一条留言。
type Submission struct {
	Username string
	Subject  string
	Message  string
	Email    string
	Phone    string
}

// Summary 是用户视角的留言列表行。
type Summary struct {
	ID            uint      `json:"id"`
	Subject       string    `json:"subject"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	AdminResponse *string   `json:"admin_response"`
	CreatedAt     time.Time `json:"created_at"`
}

// Notifier 推送已落库的通知。
type Notifier interface {
	Publish(ctx context.Context, n database.Notification)
}

// Service 维护管理员的留言收件箱。
type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
}

// NewService 构造留言服务。
func NewService(db *gorm.DB, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, notifier: notifier, logger: logger}
}

// Submit 在一个事务内写入留言与发给管理员的通知。
func (s *Service) Submit(ctx context.Context, sub Submission) (database.ContactMessage, error) {
	sub.Username = strings.TrimSpace(sub.Username)
	if sub.Username == "" {
		return database.ContactMessage{}, errcode.Validation("username is required")
	}
	if strings.TrimSpace(sub.Subject) == "" {
		return database.ContactMessage{}, errcode.Validation("subject is required")
	}
	if strings.TrimSpace(sub.Message) == "" {
		return database.ContactMessage{}, errcode.Validation("message is required")
	}

	msg := database.ContactMessage{
		Username: sub.Username,
		Subject:  sub.Subject,
		Message:  sub.Message,
		Email:    sub.Email,
		Phone:    sub.Phone,
		Status:   database.ContactNew,
	}
	var note database.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return errcode.Store("create contact message", err)
		}
		text := fmt.Sprintf("New contact message from %s: %s", sub.Username, sub.Subject)
		var err error
		note, err = notification.Record(tx, database.AdminUsername, notificationSubject, text, database.ContactNew)
		return err
	})
	if err != nil {
		return database.ContactMessage{}, err
	}

	metrics.RecordWorkflowEvent(metrics.EventContactSubmitted)
	s.logger.Info("contact message submitted", slog.Uint64("contact_id", uint64(msg.ID)), slog.String("username", msg.Username))
	s.publish(ctx, note)
	return msg, nil
}

// ListAll 按时间倒序返回全部留言。
func (s *Service) ListAll(ctx context.Context) ([]database.ContactMessage, error) {
	var items []database.ContactMessage
	if err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&items).Error; err != nil {
		return nil, errcode.Store("list contact messages", err)
	}
	return items, nil
}

// ListForUser 按时间倒序返回某用户的留言摘要。
func (s *Service) ListForUser(ctx context.Context, username string) ([]Summary, error) {
	var rows []Summary
	err := s.db.WithContext(ctx).
		Model(&database.ContactMessage{}).
		Select("id", "subject", "message", "status", "admin_response", "created_at").
		Where("username = ?", username).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errcode.Store("list user contact messages", err)
	}
	return rows, nil
}

// UnreadCount 返回收件箱里的未读留言数（全局）。
func (s *Service) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.ContactMessage{}).
		Where("is_read = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, errcode.Store("count unread contact messages", err)
	}
	return count, nil
}

// Get 按 id 读取留言。
func (s *Service) Get(ctx context.Context, id uint) (database.ContactMessage, error) {
	var msg database.ContactMessage
	if err := s.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.ContactMessage{}, errcode.NotFound("contact message")
		}
		return database.ContactMessage{}, errcode.Store("get contact message", err)
	}
	return msg, nil
}

// MarkRead 将留言标记为已读。
func (s *Service) MarkRead(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).
		Model(&database.ContactMessage{}).
		Where("id = ?", id).
		Update("is_read", true)
	if result.Error != nil {
		return errcode.Store("mark contact message read", result.Error)
	}
	if result.RowsAffected == 0 {
		return errcode.NotFound("contact message")
	}
	return nil
}

// Respond 同时写入状态、回复内容与已读标记；回复非空时在同一事务内通知留言人。
func (s *Service) Respond(ctx context.Context, id uint, status, response string) (database.ContactMessage, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		status = database.ContactResolved
	}
	if status != database.ContactNew && status != database.ContactResolved {
		return database.ContactMessage{}, errcode.Validation("unknown contact status %q", status)
	}

	var stored *string
	if trimmed := strings.TrimSpace(response); trimmed != "" {
		stored = &response
	}

	var (
		msg  database.ContactMessage
		note *database.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&msg, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errcode.NotFound("contact message")
			}
			return errcode.Store("get contact message", err)
		}
		err := tx.Model(&msg).Updates(map[string]any{
			"status":         status,
			"admin_response": stored,
			"is_read":        true,
		}).Error
		if err != nil {
			return errcode.Store("respond to contact message", err)
		}
		msg.Status = status
		msg.AdminResponse = stored
		msg.IsRead = true

		if stored == nil {
			return nil
		}
		text := fmt.Sprintf("Admin responded to your contact message: %s", msg.Subject)
		n, err := notification.Record(tx, msg.Username, notificationSubject, text, status)
		if err != nil {
			return err
		}
		note = &n
		return nil
	})
	if err != nil {
		return database.ContactMessage{}, err
	}

	metrics.RecordWorkflowEvent(metrics.EventContactResponded)
	s.logger.Info("contact message responded",
		slog.Uint64("contact_id", uint64(msg.ID)),
		slog.String("status", status),
		slog.Bool("notified", note != nil),
	)
	if note != nil {
		s.publish(ctx, *note)
	}
	return msg, nil
}

func (s *Service) publish(ctx context.Context, n database.Notification) {
	if s.notifier != nil {
		s.notifier.Publish(ctx, n)
	}
}
