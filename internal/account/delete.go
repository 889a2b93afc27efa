package account

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"joblisting/internal/database"
	"joblisting/internal/errcode"
	"joblisting/internal/metrics"
)

// cascadeModels 是删除用户时依次清理的从属表，用户行最后删除。
var cascadeModels = []struct {
	name  string
	model func() any
}{
	{"sessions", func() any { return &database.Session{} }},
	{"applications", func() any { return &database.Application{} }},
	{"notifications", func() any { return &database.Notification{} }},
	{"resume", func() any { return &database.Resume{} }},
	{"contact messages", func() any { return &database.ContactMessage{} }},
}

// FailedDeletion 记录批量删除中失败的用户。
type FailedDeletion struct {
	Username string `json:"username"`
	Err      error  `json:"-"`
}

// BulkDeleteResult 是批量删除的部分成功结果。
type BulkDeleteResult struct {
	Deleted []string         `json:"deleted"`
	Failed  []FailedDeletion `json:"failed"`
}

// Count 返回完整删除成功的用户数。
func (r BulkDeleteResult) Count() int { return len(r.Deleted) }

// DeleteUser 在一个事务内级联删除用户及其全部记录。id 与用户名必须指向同一行。
func (s *Service) DeleteUser(ctx context.Context, id uint, username string) error {
	if IsAdmin(username) {
		return errcode.ErrCannotDeleteAdmin
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user database.User
		if err := tx.First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errcode.NotFound("user")
			}
			return errcode.Store("find user", err)
		}
		if IsAdmin(user.Username) {
			return errcode.ErrCannotDeleteAdmin
		}
		if user.Username != username {
			return errcode.NotFound("user")
		}
		return deleteCascade(tx, user)
	})
	if err != nil {
		if errcode.KindOf(err) == errcode.KindStore {
			metrics.RecordUserDeletion(err)
		}
		return err
	}
	metrics.RecordUserDeletion(nil)

	s.logger.Info("user deleted", slog.Uint64("user_id", uint64(id)), slog.String("username", username))
	return nil
}

// BulkDeleteAllExceptAdmin 逐个删除除管理员外的全部用户，每个用户独立事务；单个失败不影响其余用户。
func (s *Service) BulkDeleteAllExceptAdmin(ctx context.Context) (BulkDeleteResult, error) {
	var users []database.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) <> ?", database.AdminUsername).
		Order("username ASC").
		Find(&users).Error
	if err != nil {
		return BulkDeleteResult{}, errcode.Store("list users", err)
	}

	result := BulkDeleteResult{Deleted: []string{}, Failed: []FailedDeletion{}}
	for _, user := range users {
		u := user
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return deleteCascade(tx, u)
		})
		metrics.RecordUserDeletion(err)
		if err != nil {
			s.logger.Error("bulk delete user failed", slog.String("username", u.Username), slog.Any("error", err))
			result.Failed = append(result.Failed, FailedDeletion{Username: u.Username, Err: err})
			continue
		}
		result.Deleted = append(result.Deleted, u.Username)
	}

	s.logger.Info("bulk delete finished", slog.Int("deleted", len(result.Deleted)), slog.Int("failed", len(result.Failed)))
	return result, nil
}

func deleteCascade(tx *gorm.DB, user database.User) error {
	for _, step := range cascadeModels {
		if err := tx.Where("username = ?", user.Username).Delete(step.model()).Error; err != nil {
			return errcode.Store("delete "+step.name, err)
		}
	}
	if err := tx.Delete(&database.User{}, user.ID).Error; err != nil {
		return errcode.Store("delete user", err)
	}
	return nil
}
