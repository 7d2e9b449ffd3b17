package model

import (
	"strings"

	"gorm.io/gorm"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title       string   `gorm:"size:255;not null" json:"title"`
	TitleKey    string   `gorm:"size:255;index" json:"-"`
	Slug        string   `gorm:"size:255;index" json:"slug"`
	Description string   `gorm:"type:text" json:"description"`
	CoverURL    string   `gorm:"size:255" json:"coverUrl"`
	IsPublic    bool     `gorm:"default:false;index" json:"isPublic"`
	TeacherID   uint     `gorm:"index;not null" json:"teacherId"`
	Teacher     *Teacher `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Modules     []Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// TitleKey is the lowercased title used by search. SQLite's LOWER only folds
// ASCII, so folding happens here for every driver.
func TitleKey(title string) string {
	return strings.ToLower(title)
}

func (c *Course) BeforeCreate(*gorm.DB) error {
	c.TitleKey = TitleKey(c.Title)
	return nil
}

type Module struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Order    int    `gorm:"column:sort_order;default:0" json:"order"`
	Quizzes  []Quiz `gorm:"foreignKey:ModuleID" json:"quizzes,omitempty"`
}

func (Module) TableName() string {
	return "course_modules"
}
