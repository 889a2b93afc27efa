package database

import "time"

// AdminUsername 是种子管理员账号，不可删除；发给管理员的通知也以它为收件人。
const AdminUsername = "admin"

// Role 表示账号角色。
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
)

// Valid 判断角色是否为已知取值。
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// 投递状态。状态之间没有强制的流转约束。
const (
	ApplicationPending  = "Pending"
	ApplicationApproved = "Approved"
	ApplicationRejected = "Rejected"
)

// 留言状态：New -> Resolved。
const (
	ContactNew      = "New"
	ContactResolved = "Resolved"
)

// User 表示系统中的账号信息。
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Email        *string   `gorm:"size:255" json:"email"`
	Role         Role      `gorm:"size:50;not null;default:'Customer'" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session 记录一次登录到登出的区间。同一用户名最多只有一条活跃记录，由部分唯一索引保证。
type Session struct {
	ID         uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string     `gorm:"size:255;not null;index;uniqueIndex:idx_user_sessions_one_active,where:is_active = true" json:"username"`
	LoginTime  time.Time  `gorm:"not null" json:"login_time"`
	LogoutTime *time.Time `json:"logout_time"`
	IsActive   bool       `gorm:"not null;index" json:"is_active"`
}

// TableName 沿用 user_sessions 表名。
func (Session) TableName() string { return "user_sessions" }

// Job 表示一条由管理员维护的职位。
type Job struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Company     string    `gorm:"size:255;not null" json:"company"`
	Location    string    `gorm:"size:255;not null" json:"location"`
	Salary      string    `gorm:"size:100;not null" json:"salary"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Application 是一次职位投递。JobTitle/Company 为投递时的快照，职位之后被修改或删除都不影响它。
type Application struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string    `gorm:"size:255;not null;index" json:"username"`
	JobTitle      string    `gorm:"size:255;not null" json:"job_title"`
	Company       string    `gorm:"size:255" json:"company"`
	ApplicantName string    `gorm:"size:255" json:"applicant_name"`
	Email         string    `gorm:"size:255" json:"email"`
	Phone         string    `gorm:"size:50" json:"phone"`
	CoverLetter   string    `gorm:"type:text" json:"cover_letter"`
	Status        string    `gorm:"size:50;not null;default:'Pending';index" json:"status"`
	AppliedAt     time.Time `gorm:"autoCreateTime;index" json:"applied_at"`
}

// Notification 是按用户名追加的消息。JobTitle 兼作主题字段。
type Notification struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:255;not null;index" json:"username"`
	JobTitle  string    `gorm:"size:255;not null" json:"job_title"`
	Message   string    `gorm:"type:text" json:"message"`
	Status    string    `gorm:"size:50" json:"status"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Resume 与用户名一一对应。
type Resume struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	FullName   string    `gorm:"size:255" json:"full_name"`
	Email      string    `gorm:"size:255" json:"email"`
	Phone      string    `gorm:"size:50" json:"phone"`
	Address    string    `gorm:"type:text" json:"address"`
	Education  string    `gorm:"type:text" json:"education"`
	Experience string    `gorm:"type:text" json:"experience"`
	Skills     string    `gorm:"type:text" json:"skills"`
	Summary    string    `gorm:"type:text" json:"summary"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ContactMessage 是用户发给管理员的支持留言。
type ContactMessage struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username      string    `gorm:"size:255;not null;index" json:"username"`
	Subject       string    `gorm:"size:255;not null" json:"subject"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	Email         string    `gorm:"size:255" json:"email"`
	Phone         string    `gorm:"size:50" json:"phone"`
	Status        string    `gorm:"size:50;not null;default:'New'" json:"status"`
	IsRead        bool      `gorm:"not null;default:false" json:"is_read"`
	AdminResponse *string   `gorm:"type:text" json:"admin_response"`
	CreatedAt     time.Time `json:"created_at"`
}

// Models 按迁移顺序列出全部表。
func Models() []any {
	return []any{
		&User{},
		&Session{},
		&Job{},
		&Application{},
		&Notification{},
		&Resume{},
		&ContactMessage{},
	}
}
