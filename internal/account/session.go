package account

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"joblisting/internal/database"
	"joblisting/internal/errcode"
)

// 并发登录时败者事务撞上部分唯一索引后的重试次数。
const startSessionAttempts = 3

// Status 表示用户当前是否在线。
type Status string

const (
	StatusOnline  Status = "Online"
	StatusOffline Status = "Offline"
)

// UserStatus 是用户列表中的一行。LastLogin/LastLogout 为 nil 表示从未发生。
type UserStatus struct {
	ID         uint          `json:"id"`
	Username   string        `json:"username"`
	Email      *string       `json:"email,omitempty"`
	Role       database.Role `json:"role"`
	Status     Status        `json:"status"`
	LastLogin  *time.Time    `json:"last_login"`
	LastLogout *time.Time    `json:"last_logout"`
}

// ActiveUser 是一个当前活跃会话。
type ActiveUser struct {
	Username  string        `json:"username"`
	Role      database.Role `json:"role"`
	LoginTime time.Time     `json:"login_time"`
}

// StartSession 关闭用户名下所有活跃会话并插入新的活跃会话。
func (s *Service) StartSession(ctx context.Context, username string) (database.Session, error) {
	var (
		session database.Session
		err     error
	)
	for attempt := 1; attempt <= startSessionAttempts; attempt++ {
		session, err = s.startSessionOnce(ctx, username)
		if err == nil {
			s.logger.Info("session started", slog.String("username", username), slog.Uint64("session_id", uint64(session.ID)))
			return session, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
		s.logger.Warn("concurrent login detected, retrying", slog.String("username", username), slog.Int("attempt", attempt))
	}
	return database.Session{}, errcode.Store("start session", err)
}

func (s *Service) startSessionOnce(ctx context.Context, username string) (database.Session, error) {
	var session database.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := closeActiveSessions(tx, username, now); err != nil {
			return err
		}
		session = database.Session{Username: username, LoginTime: now, IsActive: true}
		return tx.Create(&session).Error
	})
	return session, err
}

// EndSession 关闭用户名下的活跃会话。没有活跃会话不算错误。
func (s *Service) EndSession(ctx context.Context, username string) error {
	if err := closeActiveSessions(s.db.WithContext(ctx), username, time.Now()); err != nil {
		return errcode.Store("end session", err)
	}
	s.logger.Info("session ended", slog.String("username", username))
	return nil
}

func closeActiveSessions(tx *gorm.DB, username string, at time.Time) error {
	return tx.Model(&database.Session{}).
		Where("username = ? AND is_active = ?", username, true).
		Updates(map[string]any{"logout_time": at, "is_active": false}).Error
}

// IsSessionActive 判断指定会话是否属于该用户且仍然活跃。
func (s *Service) IsSessionActive(ctx context.Context, username string, sessionID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.Session{}).
		Where("id = ? AND username = ? AND is_active = ?", sessionID, username, true).
		Count(&count).Error
	if err != nil {
		return false, errcode.Store("check active session", err)
	}
	return count > 0, nil
}

// ActiveUserCount 返回拥有活跃会话的不同用户名数量。
func (s *Service) ActiveUserCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&database.Session{}).
		Where("is_active = ?", true).
		Distinct("username").
		Count(&count).Error
	if err != nil {
		return 0, errcode.Store("count active users", err)
	}
	return count, nil
}

// ListActiveUsers 按登录时间倒序返回活跃会话及其角色。
func (s *Service) ListActiveUsers(ctx context.Context) ([]ActiveUser, error) {
	db := s.db.WithContext(ctx)

	var sessions []database.Session
	if err := db.Where("is_active = ?", true).Order("login_time DESC").Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, errcode.Store("list active sessions", err)
	}
	if len(sessions) == 0 {
		return []ActiveUser{}, nil
	}

	names := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		names = append(names, sess.Username)
	}
	var users []database.User
	if err := db.Where("username IN ?", names).Find(&users).Error; err != nil {
		return nil, errcode.Store("list active users", err)
	}
	roles := make(map[string]database.Role, len(users))
	for _, u := range users {
		roles[u.Username] = u.Role
	}

	out := make([]ActiveUser, 0, len(sessions))
	for _, sess := range sessions {
		role, ok := roles[sess.Username]
		if !ok {
			continue
		}
		out = append(out, ActiveUser{Username: sess.Username, Role: role, LoginTime: sess.LoginTime})
	}
	return out, nil
}

// ListUsersWithSessionStatus 按用户名排序返回全部用户及其在线状态、最近登录/登出时间。
func (s *Service) ListUsersWithSessionStatus(ctx context.Context) ([]UserStatus, error) {
	db := s.db.WithContext(ctx)

	var users []database.User
	if err := db.Order("username ASC").Find(&users).Error; err != nil {
		return nil, errcode.Store("list users", err)
	}
	var sessions []database.Session
	if err := db.Find(&sessions).Error; err != nil {
		return nil, errcode.Store("list sessions", err)
	}

	type summary struct {
		online     bool
		lastLogin  *time.Time
		lastLogout *time.Time
	}
	byUser := make(map[string]*summary)
	for i := range sessions {
		sess := sessions[i]
		sum, ok := byUser[sess.Username]
		if !ok {
			sum = &summary{}
			byUser[sess.Username] = sum
		}
		if sess.IsActive {
			sum.online = true
		}
		if sum.lastLogin == nil || sess.LoginTime.After(*sum.lastLogin) {
			login := sess.LoginTime
			sum.lastLogin = &login
		}
		if sess.LogoutTime != nil && (sum.lastLogout == nil || sess.LogoutTime.After(*sum.lastLogout)) {
			logout := *sess.LogoutTime
			sum.lastLogout = &logout
		}
	}

	out := make([]UserStatus, 0, len(users))
	for _, u := range users {
		row := UserStatus{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role, Status: StatusOffline}
		if sum, ok := byUser[u.Username]; ok {
			if sum.online {
				row.Status = StatusOnline
			}
			row.LastLogin = sum.lastLogin
			row.LastLogout = sum.lastLogout
		}
		out = append(out, row)
	}
	return out, nil
}
