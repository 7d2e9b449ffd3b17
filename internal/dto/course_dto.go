package dto

// CourseDto is the full course view. Enrolled, Creator and module progress
// depend on who is asking.
type CourseDto struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	CoverURL    string      `json:"coverUrl,omitempty"`
	IsPublic    bool        `json:"isPublic"`
	TeacherID   uint        `json:"teacherId"`
	TeacherName string      `json:"teacherName,omitempty"`
	Enrolled    bool        `json:"enrolled"`
	Creator     bool        `json:"creator"`
	Modules     []ModuleDto `json:"modules"`
}

type ModuleDto struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	Order     int     `json:"order"`
	QuizCount int     `json:"quizCount"`
	Progress  float64 `json:"progress"`
}

type CourseSummaryDto struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	CoverURL    string  `json:"coverUrl,omitempty"`
	IsPublic    bool    `json:"isPublic"`
	TeacherName string  `json:"teacherName,omitempty"`
	Progress    float64 `json:"progress"`
}

type StudentDto struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	StudyGroup string `json:"studyGroup,omitempty"`
}

type QuizDto struct {
	ID           uint    `json:"id"`
	ModuleID     uint    `json:"moduleId"`
	Title        string  `json:"title"`
	PassingScore float64 `json:"passingScore"`
}

type AttemptDto struct {
	QuizID          uint    `json:"quizId"`
	AttemptNumber   int     `json:"attemptNumber"`
	Score           float64 `json:"score"`
	Passed          bool    `json:"passed"`
	CourseCompleted bool    `json:"courseCompleted"`
}
