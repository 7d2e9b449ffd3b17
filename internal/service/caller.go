package service

import (
	"errors"

	"unilearn_backend/internal/model"
	"unilearn_backend/internal/repository"
	"unilearn_backend/internal/util"

	"gorm.io/gorm"
)

type CallerKind int

const (
	CallerAnonymous CallerKind = iota
	CallerStudent
	CallerTeacher
)

// Caller is who issued a request. Course views branch on exactly these three
// kinds; admins and unknown roles see the anonymous view.
type Caller struct {
	Kind   CallerKind
	UserID uint
	Email  string
}

func Anonymous() Caller {
	return Caller{Kind: CallerAnonymous}
}

func StudentCaller(userID uint) Caller {
	return Caller{Kind: CallerStudent, UserID: userID}
}

func TeacherCaller(userID uint) Caller {
	return Caller{Kind: CallerTeacher, UserID: userID}
}

func CallerFromClaims(claims *util.Claims) Caller {
	if claims == nil {
		return Anonymous()
	}
	switch claims.Role {
	case model.RoleStudent:
		return Caller{Kind: CallerStudent, UserID: claims.UserID, Email: claims.Email}
	case model.RoleTeacher:
		return Caller{Kind: CallerTeacher, UserID: claims.UserID, Email: claims.Email}
	default:
		return Anonymous()
	}
}

// resolveStudent loads the Student behind caller. Non-student callers get ErrNotStudent.
func resolveStudent(tx *repository.Store, caller Caller) (*model.Student, error) {
	if caller.Kind != CallerStudent {
		return nil, util.ErrNotStudent
	}
	return findStudent(tx, caller.UserID)
}

// resolveTeacher loads the Teacher behind caller.
func resolveTeacher(tx *repository.Store, caller Caller) (*model.Teacher, error) {
	if caller.Kind != CallerTeacher {
		return nil, util.ErrTeacherNotFound
	}
	teacher, err := tx.Users.FindTeacherByID(caller.UserID)
	if err != nil {
		return nil, notFound(err, util.ErrTeacherNotFound)
	}
	return teacher, nil
}

func findStudent(tx *repository.Store, id uint) (*model.Student, error) {
	student, err := tx.Users.FindStudentByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrStudentNotFound)
	}
	return student, nil
}

func findCourse(tx *repository.Store, id uint) (*model.Course, error) {
	course, err := tx.Courses.FindPlainByID(id)
	if err != nil {
		return nil, notFound(err, util.ErrCourseNotFound)
	}
	return course, nil
}

// notFound swaps gorm's missing-record error for the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
