package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureAdmin 确保种子管理员存在。已存在时不覆盖其密码。
func EnsureAdmin(ctx context.Context, db *gorm.DB, passwordHash string) (bool, error) {
	admin := User{
		Username:     AdminUsername,
		PasswordHash: passwordHash,
		Role:         RoleAdmin,
	}
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(&admin)
	if result.Error != nil {
		return false, fmt.Errorf("seed admin: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SampleJobs 是空库首次启动时写入的示例职位。
func SampleJobs() []Job {
	return []Job{
		{Title: "Software Engineer", Company: "Tech Corp", Location: "Manila", Salary: "80,000 PHP", Description: "Develop and maintain software applications"},
		{Title: "Data Analyst", Company: "Data Inc", Location: "Makati", Salary: "60,000 PHP", Description: "Analyze business data and create reports"},
		{Title: "Project Manager", Company: "Global Solutions", Location: "BGC", Salary: "100,000 PHP", Description: "Lead and manage project teams"},
		{Title: "UI/UX Designer", Company: "Creative Agency", Location: "Cebu", Salary: "55,000 PHP", Description: "Design user interfaces and experiences"},
		{Title: "Network Administrator", Company: "IT Services", Location: "Quezon City", Salary: "50,000 PHP", Description: "Manage and maintain network infrastructure"},
	}
}

// SeedSampleJobs 仅在 jobs 表为空时写入示例职位，返回写入条数。
func SeedSampleJobs(ctx context.Context, db *gorm.DB) (int, error) {
	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Job{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		jobs := SampleJobs()
		if err := tx.Create(&jobs).Error; err != nil {
			return err
		}
		inserted = len(jobs)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed sample jobs: %w", err)
	}
	return inserted, nil
}
