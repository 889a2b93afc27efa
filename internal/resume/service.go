package resume

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"joblisting/internal/database"
	"joblisting/internal/errcode"
)

// upsertColumns 是用户名冲突时覆盖的列。
var upsertColumns = []string{
	"full_name", "email", "phone", "address",
	"education", "experience", "skills", "summary", "updated_at",
}

// Service 维护每个用户唯一的一份简历。
type Service struct {
	db *gorm.DB
}

// NewService 构造简历服务。
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Exists 判断用户是否已有简历。
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.Resume{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, errcode.Store("check resume", err)
	}
	return count > 0, nil
}

// Get 读取用户简历，不存在时返回 NotFound。
func (s *Service) Get(ctx context.Context, username string) (database.Resume, error) {
	var r database.Resume
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.Resume{}, errcode.NotFound("resume")
		}
		return database.Resume{}, errcode.Store("get resume", err)
	}
	return r, nil
}

// Upsert 以单条 INSERT ... ON CONFLICT (username) DO UPDATE 写入简历并刷新 updated_at。
func (s *Service) Upsert(ctx context.Context, username string, c Content) (database.Resume, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return database.Resume{}, errcode.Validation("username is required")
	}

	row := database.Resume{
		Username:   username,
		FullName:   c.FullName,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		Education:  c.Education,
		Experience: c.Experience,
		Skills:     c.Skills,
		Summary:    c.Summary,
		UpdatedAt:  time.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(&row).Error
	if err != nil {
		return database.Resume{}, errcode.Store("upsert resume", err)
	}
	return s.Get(ctx, username)
}

// Filled 判断用户简历是否存在且已填好姓名与邮箱。
func (s *Service) Filled(ctx context.Context, username string) (bool, error) {
	r, err := s.Get(ctx, username)
	if err != nil {
		if errcode.KindOf(err) == errcode.KindNotFound {
			return false, nil
		}
		return false, err
	}
	return IsFilled(r), nil
}
