package resume

import (
	"strings"

	"joblisting/internal/database"
)

// Content 表示一份简历的可编辑字段。任何字段都允许为空。
type Content struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Education  string `json:"education"`
	Experience string `json:"experience"`
	Skills     string `json:"skills"`
	Summary    string `json:"summary"`
}

// ContentOf 取出简历行中的可编辑字段。
func ContentOf(r database.Resume) Content {
	return Content{
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		Education:  r.Education,
		Experience: r.Experience,
		Skills:     r.Skills,
		Summary:    r.Summary,
	}
}

// IsFilled 判断简历是否已填好姓名与邮箱，投递快捷入口依赖这一判断。
func IsFilled(r database.Resume) bool {
	return strings.TrimSpace(r.FullName) != "" && strings.TrimSpace(r.Email) != ""
}
