package service

import (
	"context"
	"time"

	"unilearn_backend/internal/model"
	"unilearn_backend/internal/repository"
	"unilearn_backend/internal/util"
	"unilearn_backend/pkg/logger"
	"unilearn_backend/pkg/monitoring"
	"unilearn_backend/pkg/tracing"

	"go.uber.org/zap"
)

// progressCalculator derives progress and completion from attempt history.
// It works on whatever Store it is given, so callers decide the transaction.
type progressCalculator struct {
	store *repository.Store
}

func newProgressCalculator(store *repository.Store) progressCalculator {
	return progressCalculator{store: store}
}

// moduleProgress averages the latest passed score over every quiz of the module.
// Quizzes without a passed latest attempt count as 0. A module without quizzes is 100.
func (p progressCalculator) moduleProgress(studentID, moduleID uint) (float64, error) {
	quizzes, err := p.store.Quizzes.FindByModuleID(moduleID)
	if err != nil {
		return 0, err
	}
	if len(quizzes) == 0 {
		return 100.0, nil
	}

	if _, err := findStudent(p.store, studentID); err != nil {
		return 0, err
	}

	var totalScore float64
	for _, quiz := range quizzes {
		latest, err := p.store.Attempts.FindLatest(studentID, quiz.ID)
		if err != nil {
			return 0, err
		}
		if latest != nil && latest.Passed {
			totalScore += latest.Score
		}
	}

	return totalScore / float64(len(quizzes)), nil
}

// courseProgress is the plain mean of module progress. A course without modules is 0.
func (p progressCalculator) courseProgress(studentID, courseID uint) (float64, error) {
	modules, err := p.store.Modules.FindByCourseID(courseID)
	if err != nil {
		return 0, err
	}
	if len(modules) == 0 {
		return 0, nil
	}

	var total float64
	for _, module := range modules {
		progress, err := p.moduleProgress(studentID, module.ID)
		if err != nil {
			return 0, err
		}
		total += progress
	}

	return total / float64(len(modules)), nil
}

// isCourseCompleted requires a passed latest attempt on every quiz of every
// module. A course without modules counts as completed.
func (p progressCalculator) isCourseCompleted(studentID, courseID uint) (bool, error) {
	modules, err := p.store.Modules.FindByCourseID(courseID)
	if err != nil {
		return false, err
	}

	if _, err := findStudent(p.store, studentID); err != nil {
		return false, err
	}

	for _, module := range modules {
		quizzes, err := p.store.Quizzes.FindByModuleID(module.ID)
		if err != nil {
			return false, err
		}
		for _, quiz := range quizzes {
			latest, err := p.store.Attempts.FindLatest(studentID, quiz.ID)
			if err != nil {
				return false, err
			}
			if latest == nil || !latest.Passed {
				return false, nil
			}
		}
	}

	return true, nil
}

// refreshCompletion latches the enrollment once the course is completed.
// It never writes completed=false.
func (p progressCalculator) refreshCompletion(studentID, courseID uint) (*model.Enrollment, bool, error) {
	enrollment, err := p.store.Enrollments.FindByID(studentID, courseID)
	if err != nil {
		return nil, false, notFound(err, util.ErrEnrollmentNotFound)
	}

	completed, err := p.isCourseCompleted(studentID, courseID)
	if err != nil {
		return nil, false, err
	}
	if !completed || !enrollment.MarkCompleted(time.Now()) {
		return enrollment, false, nil
	}

	if err := p.store.Enrollments.Save(enrollment); err != nil {
		return nil, false, err
	}
	return enrollment, true, nil
}

// courseProgressAndRefresh computes course progress and then refreshes the
// completion latch, the order listing endpoints have always used.
func (p progressCalculator) courseProgressAndRefresh(studentID, courseID uint) (float64, bool, error) {
	progress, err := p.courseProgress(studentID, courseID)
	if err != nil {
		return 0, false, err
	}
	_, flipped, err := p.refreshCompletion(studentID, courseID)
	if err != nil {
		return 0, false, err
	}
	return progress, flipped, nil
}

// completion is an enrollment that was just latched; it is announced after commit.
type completion struct {
	student *model.Student
	course  *model.Course
}

type ProgressService struct {
	store    *repository.Store
	notifier *NotificationService
}

func NewProgressService(store *repository.Store, notifier *NotificationService) *ProgressService {
	return &ProgressService{store: store, notifier: notifier}
}

func (s *ProgressService) ModuleProgress(ctx context.Context, studentID, moduleID uint) (progress float64, err error) {
	ctx, span := tracing.Start(ctx, "ProgressService.ModuleProgress")
	defer func() { tracing.End(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		progress, err = newProgressCalculator(tx).moduleProgress(studentID, moduleID)
		return err
	})
	return progress, err
}

// CourseProgress is read-only: it does not touch the completion latch.
func (s *ProgressService) CourseProgress(ctx context.Context, studentID, courseID uint) (progress float64, err error) {
	ctx, span := tracing.Start(ctx, "ProgressService.CourseProgress")
	defer func() { tracing.End(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		progress, err = newProgressCalculator(tx).courseProgress(studentID, courseID)
		return err
	})
	return progress, err
}

func (s *ProgressService) IsCourseCompleted(ctx context.Context, studentID, courseID uint) (completed bool, err error) {
	ctx, span := tracing.Start(ctx, "ProgressService.IsCourseCompleted")
	defer func() { tracing.End(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		completed, err = newProgressCalculator(tx).isCourseCompleted(studentID, courseID)
		return err
	})
	return completed, err
}

// RefreshCompletion latches the enrollment if the course is completed and
// reports whether this call flipped it.
func (s *ProgressService) RefreshCompletion(ctx context.Context, studentID, courseID uint) (flipped bool, err error) {
	ctx, span := tracing.Start(ctx, "ProgressService.RefreshCompletion")
	defer func() { tracing.End(span, err) }()

	var done []completion
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		done = nil
		_, flipped, err = newProgressCalculator(tx).refreshCompletion(studentID, courseID)
		if err != nil || !flipped {
			return err
		}
		c, err := loadCompletion(tx, studentID, courseID)
		if err != nil {
			return err
		}
		done = append(done, c)
		return nil
	})
	if err != nil {
		return false, err
	}

	announceCompletions(ctx, s.notifier, done)
	return flipped, nil
}

// SweepCompletions refreshes every open enrollment and returns how many were
// latched. A failing enrollment is logged and skipped.
func (s *ProgressService) SweepCompletions(ctx context.Context) (int, error) {
	enrollments, err := s.store.WithContext(ctx).Enrollments.FindIncomplete()
	if err != nil {
		return 0, err
	}

	latched := 0
	for _, e := range enrollments {
		if ctx.Err() != nil {
			return latched, ctx.Err()
		}
		flipped, err := s.RefreshCompletion(ctx, e.StudentID, e.CourseID)
		if err != nil {
			logger.Log.Warn("completion sweep: refresh failed",
				zap.Uint("studentId", e.StudentID),
				zap.Uint("courseId", e.CourseID),
				zap.Error(err),
			)
			continue
		}
		if flipped {
			latched++
		}
	}

	logger.Log.Info("completion sweep finished",
		zap.Int("checked", len(enrollments)),
		zap.Int("latched", latched),
	)
	return latched, nil
}

func loadCompletion(tx *repository.Store, studentID, courseID uint) (completion, error) {
	student, err := findStudent(tx, studentID)
	if err != nil {
		return completion{}, err
	}
	course, err := findCourse(tx, courseID)
	if err != nil {
		return completion{}, err
	}
	return completion{student: student, course: course}, nil
}

// announceCompletions runs after commit so a rolled back latch is never reported.
func announceCompletions(ctx context.Context, notifier *NotificationService, done []completion) {
	for _, c := range done {
		monitoring.CompletionsTotal.Inc()
		logger.Log.Info("course completed",
			zap.Uint("studentId", c.student.ID),
			zap.Uint("courseId", c.course.ID),
		)
		notifier.CourseCompleted(ctx, c.student, c.course)
	}
}
