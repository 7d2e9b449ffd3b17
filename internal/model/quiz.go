package model

type Quiz struct {
	BaseModel
	ModuleID     uint    `gorm:"index;not null" json:"moduleId"`
	Module       *Module `gorm:"foreignKey:ModuleID" json:"-"`
	Title        string  `gorm:"size:255;not null" json:"title"`
	PassingScore float64 `gorm:"not null" json:"passingScore"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// QuizAttempt is one scored submission. AttemptNumber grows per (student, quiz);
// the attempt with the highest number is the latest one.
type QuizAttempt struct {
	BaseModel
	StudentID     uint    `gorm:"uniqueIndex:idx_attempt_student_quiz_number;not null" json:"studentId"`
	QuizID        uint    `gorm:"uniqueIndex:idx_attempt_student_quiz_number;not null" json:"quizId"`
	AttemptNumber int     `gorm:"uniqueIndex:idx_attempt_student_quiz_number;not null" json:"attemptNumber"`
	Score         float64 `gorm:"not null" json:"score"`
	Passed        bool    `gorm:"default:false" json:"passed"`
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}
