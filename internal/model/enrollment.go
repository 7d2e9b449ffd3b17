package model

import "time"

// Enrollment is keyed by (student, course); the composite primary key is what
// keeps a student from being enrolled twice.
type Enrollment struct {
	StudentID   uint       `gorm:"primaryKey;autoIncrement:false" json:"studentId"`
	CourseID    uint       `gorm:"primaryKey;autoIncrement:false" json:"courseId"`
	Student     *Student   `gorm:"foreignKey:StudentID" json:"-"`
	Course      *Course    `gorm:"foreignKey:CourseID" json:"-"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// MarkCompleted latches the enrollment as completed. It never goes back to false
// and reports whether this call flipped it.
func (e *Enrollment) MarkCompleted(at time.Time) bool {
	if e.Completed {
		return false
	}
	e.Completed = true
	e.CompletedAt = &at
	return true
}
