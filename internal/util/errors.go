package util

import "errors"

// Lookups that found nothing. Controllers answer these with 404.
var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrModuleNotFound     = errors.New("module not found")
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// Requests that are well formed but not allowed.
var (
	ErrNotStudent         = errors.New("user is not a student")
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
	ErrNotCourseOwner     = errors.New("course belongs to another teacher")
	ErrEmailRegistered    = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidScore       = errors.New("score must be between 0 and 100")
	ErrInvalidFileType    = errors.New("invalid file type")
	ErrFileTooLarge       = errors.New("file is too large")
)

var notFoundErrors = []error{
	ErrStudentNotFound,
	ErrTeacherNotFound,
	ErrCourseNotFound,
	ErrModuleNotFound,
	ErrQuizNotFound,
	ErrEnrollmentNotFound,
}

// IsNotFound reports whether err wraps one of the lookup errors.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
