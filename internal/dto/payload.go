package dto

// CoursePayload is accepted by create and edit.
type CoursePayload struct {
	Title       string `json:"title" binding:"required,notblank,max=255"`
	Description string `json:"description" binding:"max=10000"`
}

type ModulePayload struct {
	Title string `json:"title" binding:"required,notblank,max=255"`
	Order *int   `json:"order" binding:"omitempty,min=0"`
}

type QuizPayload struct {
	Title        string   `json:"title" binding:"required,notblank,max=255"`
	PassingScore *float64 `json:"passingScore" binding:"omitempty,min=0,max=100"`
}

type AttemptPayload struct {
	Score *float64 `json:"score" binding:"required,min=0,max=100"`
}
