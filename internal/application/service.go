package application

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

// Submission 是一次投递提交的内容。JobTitle/Company 作为快照写入。
type Submission struct {
	Username      string
	JobTitle      string
	Company       string
	ApplicantName string
	Email         string
	Phone         string
	CoverLetter   string
}

// Summary 是用户视角的投递列表行，不含求职信。
type Summary struct {
	ID        uint      `json:"id"`
	JobTitle  string    `json:"job_title"`
	Company   string    `json:"company"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`
}

// Notifier 是投递流程对通知服务的依赖：提交后推送已落库的通知。
type Notifier interface {
	Publish(ctx context.Context, n database.Notification)
}

// Service 负责投递的提交、查询与状态流转，并产生相应通知。
type Service struct {
	db       *gorm.DB
	notifier Notifier
	logger   *slog.Logger
}

// NewService 构造投递服务。
func NewService(db *gorm.DB, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, notifier: notifier, logger: logger}
}

// Submit 在一个事务内写入投递和发给管理员的通知。
func (s *Service) Submit(ctx context.Context, sub Submission) (database.Application, error) {
	sub.Username = strings.TrimSpace(sub.Username)
	if sub.Username == "" {
		return database.Application{}, errcode.Validation("username is required")
	}
	if strings.TrimSpace(sub.JobTitle) == "" {
		return database.Application{}, errcode.Validation("job title is required")
	}

	app := database.Application{
		Username:      sub.Username,
		JobTitle:      sub.JobTitle,
		Company:       sub.Company,
		ApplicantName: sub.ApplicantName,
		Email:         sub.Email,
		Phone:         sub.Phone,
		CoverLetter:   sub.CoverLetter,
		Status:        database.ApplicationPending,
	}
	var note database.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&app).Error; err != nil {
			return errcode.Store("create application", err)
		}
		message := fmt.Sprintf("New application from %s (%s) for job: %s", sub.ApplicantName, sub.Username, sub.JobTitle)
		var err error
		note, err = notification.Record(tx, database.AdminUsername, sub.JobTitle, message, database.ApplicationPending)
		return err
	})
	if err != nil {
		return database.Application{}, err
	}

	metrics.RecordWorkflowEvent(metrics.EventApplicationSubmitted)
	s.logger.Info("application submitted",
		slog.Uint64("application_id", uint64(app.ID)),
		slog.String("username", app.Username),
		slog.String("job_title", app.JobTitle),
	)
	s.publish(ctx, note)
	return app, nil
}

// ListAll 按投递时间倒序返回全部投递。
func (s *Service) ListAll(ctx context.Context) ([]database.Application, error) {
	var apps []database.Application
	if err := s.db.WithContext(ctx).Order("applied_at DESC").Order("id DESC").Find(&apps).Error; err != nil {
		return nil, errcode.Store("list applications", err)
	}
	return apps, nil
}

// ListForUser 按投递时间倒序返回某用户的投递摘要。
func (s *Service) ListForUser(ctx context.Context, username string) ([]Summary, error) {
	var rows []Summary
	err := s.db.WithContext(ctx).
		Model(&database.Application{}).
		Select("id", "job_title", "company", "status", "applied_at").
		Where("username = ?", username).
		Order("applied_at DESC").Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errcode.Store("list user applications", err)
	}
	return rows, nil
}

// Get 按 id 读取投递。
func (s *Service) Get(ctx context.Context, id uint) (database.Application, error) {
	var app database.Application
	if err := s.db.WithContext(ctx).First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.Application{}, errcode.NotFound("application")
		}
		return database.Application{}, errcode.Store("get application", err)
	}
	return app, nil
}

// SetStatus 覆盖投递状态，不做流转校验，也不产生通知。
func (s *Service) SetStatus(ctx context.Context, id uint, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return errcode.Validation("status is required")
	}
	result := s.db.WithContext(ctx).
		Model(&database.Application{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return errcode.Store("update application status", result.Error)
	}
	if result.RowsAffected == 0 {
		return errcode.NotFound("application")
	}
	return nil
}

// Decide 在一个事务内更新状态并通知投递人。
func (s *Service) Decide(ctx context.Context, id uint, status string) (database.Application, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return database.Application{}, errcode.Validation("status is required")
	}

	var (
		app  database.Application
		note database.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&app, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errcode.NotFound("application")
			}
			return errcode.Store("get application", err)
		}
		if err := tx.Model(&app).Update("status", status).Error; err != nil {
			return errcode.Store("update application status", err)
		}
		app.Status = status
		message := fmt.Sprintf("Your application for '%s' has been %s.", app.JobTitle, strings.ToLower(status))
		var err error
		note, err = notification.Record(tx, app.Username, app.JobTitle, message, status)
		return err
	})
	if err != nil {
		return database.Application{}, err
	}

	metrics.RecordWorkflowEvent(metrics.EventApplicationDecided)
	s.logger.Info("application status changed",
		slog.Uint64("application_id", uint64(app.ID)),
		slog.String("username", app.Username),
		slog.String("status", status),
	)
	s.publish(ctx, note)
	return app, nil
}

// Approve 通过投递并通知投递人。
func (s *Service) Approve(ctx context.Context, id uint) (database.Application, error) {
	return s.Decide(ctx, id, database.ApplicationApproved)
}

// Reject 拒绝投递并通知投递人。
func (s *Service) Reject(ctx context.Context, id uint) (database.Application, error) {
	return s.Decide(ctx, id, database.ApplicationRejected)
}

// PendingCount 返回待处理的投递数。
func (s *Service) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.Application{}).
		Where("status = ?", database.ApplicationPending).
		Count(&count).Error
	if err != nil {
		return 0, errcode.Store("count pending applications", err)
	}
	return count, nil
}

// Count 返回投递总数。
func (s *Service) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.Application{}).Count(&count).Error; err != nil {
		return 0, errcode.Store("count applications", err)
	}
	return count, nil
}

func (s *Service) publish(ctx context.Context, n database.Notification) {
	if s.notifier != nil {
		s.notifier.Publish(ctx, n)
	}
}
