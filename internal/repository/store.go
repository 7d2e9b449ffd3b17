package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store bundles the repositories that share one *gorm.DB, so a service can run
// a whole operation against the same transaction.
type Store struct {
	DB          *gorm.DB
	Users       *UserRepository
	Courses     *CourseRepository
	Modules     *ModuleRepository
	Quizzes     *QuizRepository
	Attempts    *QuizAttemptRepository
	Enrollments *EnrollmentRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		DB:          db,
		Users:       NewUserRepository(db),
		Courses:     NewCourseRepository(db),
		Modules:     NewModuleRepository(db),
		Quizzes:     NewQuizRepository(db),
		Attempts:    NewQuizAttemptRepository(db),
		Enrollments: NewEnrollmentRepository(db),
	}
}

// WithContext binds the repositories to ctx outside of a transaction.
func (s *Store) WithContext(ctx context.Context) *Store {
	return NewStore(s.DB.WithContext(ctx))
}

// Transaction runs fn with a Store bound to a single transaction. Returning an
// error from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
