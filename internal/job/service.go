package job

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"joblisting/internal/database"
	"joblisting/internal/errcode"
)

// Input 是创建或修改职位时的字段集合。
type Input struct {
	Title       string
	Company     string
	Location    string
	Salary      string
	Description string
}

func (in Input) columns() map[string]any {
	return map[string]any{
		"title":       in.Title,
		"company":     in.Company,
		"location":    in.Location,
		"salary":      in.Salary,
		"description": in.Description,
	}
}

// Service 维护职位目录。删除职位不会影响已有投递，投递里保存的是快照。
type Service struct {
	db *gorm.DB
}

// NewService 构造职位服务。
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List 按 id 倒序返回全部职位。
func (s *Service) List(ctx context.Context) ([]database.Job, error) {
	var jobs []database.Job
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&jobs).Error; err != nil {
		return nil, errcode.Store("list jobs", err)
	}
	return jobs, nil
}

// Get 按 id 读取职位。
func (s *Service) Get(ctx context.Context, id uint) (database.Job, error) {
	var j database.Job
	if err := s.db.WithContext(ctx).First(&j, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return database.Job{}, errcode.NotFound("job")
		}
		return database.Job{}, errcode.Store("get job", err)
	}
	return j, nil
}

// Create 新建职位并返回其 id。
func (s *Service) Create(ctx context.Context, in Input) (uint, error) {
	j := database.Job{
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		Salary:      in.Salary,
		Description: in.Description,
	}
	if err := s.db.WithContext(ctx).Create(&j).Error; err != nil {
		return 0, errcode.Store("create job", err)
	}
	return j.ID, nil
}

// Update 覆盖职位的全部字段。
func (s *Service) Update(ctx context.Context, id uint, in Input) error {
	result := s.db.WithContext(ctx).
		Model(&database.Job{}).
		Where("id = ?", id).
		Updates(in.columns())
	if result.Error != nil {
		return errcode.Store("update job", result.Error)
	}
	if result.RowsAffected == 0 {
		return errcode.NotFound("job")
	}
	return nil
}

// Delete 删除职位。
func (s *Service) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&database.Job{}, id)
	if result.Error != nil {
		return errcode.Store("delete job", result.Error)
	}
	if result.RowsAffected == 0 {
		return errcode.NotFound("job")
	}
	return nil
}

// Count 返回职位总数。
func (s *Service) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&database.Job{}).Count(&count).Error; err != nil {
		return 0, errcode.Store("count jobs", err)
	}
	return count, nil
}

// SeedSampleJobs 在职位表为空时写入示例职位。
func (s *Service) SeedSampleJobs(ctx context.Context) (int, error) {
	n, err := database.SeedSampleJobs(ctx, s.db)
	if err != nil {
		return 0, errcode.Store("seed sample jobs", err)
	}
	return n, nil
}
