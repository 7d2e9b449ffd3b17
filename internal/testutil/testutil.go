// Package testutil opens throwaway databases and seeds fixtures for tests.
package testutil

import (
	"fmt"
	"testing"

	"unilearn_backend/internal/model"
	"unilearn_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a migrated in-memory SQLite database private to t.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := database.Open(sqlite.Open(dsn), "test")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@example.com", name, uuid.New().String()[:8]),
		Password: "x",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateStudent(t *testing.T, db *gorm.DB, name string) *model.Student {
	t.Helper()
	user := CreateUser(t, db, name, model.RoleStudent)
	student := &model.Student{ID: user.ID, StudyGroup: "G1"}
	require.NoError(t, db.Omit("User").Create(student).Error)
	student.User = *user
	return student
}

func CreateTeacher(t *testing.T, db *gorm.DB, name string) *model.Teacher {
	t.Helper()
	user := CreateUser(t, db, name, model.RoleTeacher)
	teacher := &model.Teacher{ID: user.ID, Department: "CS"}
	require.NoError(t, db.Omit("User").Create(teacher).Error)
	teacher.User = *user
	return teacher
}

func CreateCourse(t *testing.T, db *gorm.DB, teacher *model.Teacher, title string, public bool) *model.Course {
	t.Helper()
	course := &model.Course{Title: title, TeacherID: teacher.ID}
	require.NoError(t, db.Omit("Teacher", "Modules").Create(course).Error)
	if public {
		require.NoError(t, db.Model(course).Update("is_public", true).Error)
		course.IsPublic = true
	}
	return course
}

func CreateModule(t *testing.T, db *gorm.DB, course *model.Course, title string, order int) *model.Module {
	t.Helper()
	module := &model.Module{CourseID: course.ID, Title: title, Order: order}
	require.NoError(t, db.Omit("Quizzes").Create(module).Error)
	return module
}

func CreateQuiz(t *testing.T, db *gorm.DB, module *model.Module, title string) *model.Quiz {
	t.Helper()
	quiz := &model.Quiz{ModuleID: module.ID, Title: title, PassingScore: 50}
	require.NoError(t, db.Omit("Module").Create(quiz).Error)
	return quiz
}

// RecordAttempt stores the next attempt for (student, quiz).
func RecordAttempt(t *testing.T, db *gorm.DB, student *model.Student, quiz *model.Quiz, score float64, passed bool) *model.QuizAttempt {
	t.Helper()
	var max int
	require.NoError(t, db.Unscoped().Model(&model.QuizAttempt{}).
		Where("student_id = ? AND quiz_id = ?", student.ID, quiz.ID).
		Select("COALESCE(MAX(attempt_number), 0)").Scan(&max).Error)

	attempt := &model.QuizAttempt{
		StudentID:     student.ID,
		QuizID:        quiz.ID,
		AttemptNumber: max + 1,
		Score:         score,
		Passed:        passed,
	}
	require.NoError(t, db.Create(attempt).Error)
	return attempt
}

func Enroll(t *testing.T, db *gorm.DB, student *model.Student, course *model.Course) *model.Enrollment {
	t.Helper()
	enrollment := &model.Enrollment{StudentID: student.ID, CourseID: course.ID}
	require.NoError(t, db.Omit("Student", "Course").Create(enrollment).Error)
	return enrollment
}

func LoadEnrollment(t *testing.T, db *gorm.DB, student *model.Student, course *model.Course) *model.Enrollment {
	t.Helper()
	var enrollment model.Enrollment
	require.NoError(t, db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error)
	return &enrollment
}
