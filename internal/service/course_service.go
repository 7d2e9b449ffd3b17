package service

import (
	"context"
	"errors"
	"strings"

	"unilearn_backend/internal/dto"
	"unilearn_backend/internal/model"
	"unilearn_backend/internal/repository"
	"unilearn_backend/internal/util"
	"unilearn_backend/pkg/logger"
	"unilearn_backend/pkg/monitoring"
	"unilearn_backend/pkg/tracing"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseService owns the course lifecycle, enrollment and moderation. Every
// operation runs in a single transaction.
type CourseService struct {
	store    *repository.Store
	cache    repository.CourseListCache
	notifier *NotificationService
}

func NewCourseService(store *repository.Store, cache repository.CourseListCache, notifier *NotificationService) *CourseService {
	if cache == nil {
		cache = repository.NoopCourseListCache{}
	}
	return &CourseService{
		store:    store,
		cache:    cache,
		notifier: notifier,
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, payload dto.CoursePayload, caller Caller) (view *dto.CourseDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseService.CreateCourse")
	defer func() { tracing.End(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		teacher, err := resolveTeacher(tx, caller)
		if err != nil {
			return err
		}

		course := &model.Course{
			Title:       payload.Title,
			Slug:        slug.Make(payload.Title),
			Description: payload.Description,
			TeacherID:   teacher.ID,
		}
		if err := tx.Courses.Create(course); err != nil {
			return err
		}
		course.Teacher = teacher

		d := dto.ToCourseDto(course)
		view = &d
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("course created", zap.Uint("courseId", view.ID), zap.Uint("teacherId", view.TeacherID))
	return view, nil
}

// FindCourseByID builds the course view for caller. Students get their
// enrollment flag and per-module progress, teachers get the creator flag and
// everyone else gets zero progress.
func (s *CourseService) FindCourseByID(ctx context.Context, id uint, caller Caller) (view *dto.CourseDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseService.FindCourseByID")
	defer func() { tracing.End(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		course, err := tx.Courses.FindByID(id)
		if err != nil {
			return notFound(err, util.ErrCourseNotFound)
		}

		d := dto.ToCourseDto(course)

		switch caller.Kind {
		case CallerStudent:
			student, err := findStudent(tx, caller.UserID)
			if err != nil {
				return err
			}
			d.Enrolled, err = tx.Enrollments.Exists(student.ID, course.ID)
			if err != nil {
				return err
			}
			calc := newProgressCalculator(tx)
			for i := range d.Modules {
				d.Modules[i].Progress, err = calc.moduleProgress(student.ID, d.Modules[i].ID)
				if err != nil {
					return err
				}
			}
		case CallerTeacher:
			teacher, err := resolveTeacher(tx, caller)
			if err != nil {
				return err
			}
			d.Creator = course.TeacherID == teacher.ID
		case CallerAnonymous:
			// flags and progress keep their zero values
		}

		view = &d
		return nil
	})
	return view, err
}

func (s *CourseService) EnrollCourse(ctx context.Context, courseID uint, caller Caller) (err error) {
	ctx, span := tracing.Start(ctx, "CourseService.EnrollCourse")
	defer func() { tracing.End(span, err) }()

	var studentID uint
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		student, err := resolveStudent(tx, caller)
		if err != nil {
			return err
		}
		studentID = student.ID

		course, err := findCourse(tx, courseID)
		if err != nil {
			return err
		}

		exists, err := tx.Enrollments.Exists(student.ID, course.ID)
		if err != nil {
			return err
		}
		if exists {
			return util.ErrAlreadyEnrolled
		}

		err = tx.Enrollments.Create(&model.Enrollment{
			StudentID: student.ID,
			CourseID:  course.ID,
			Completed: false,
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return util.ErrAlreadyEnrolled
		}
		return err
	})
	if err != nil {
		return err
	}

	monitoring.EnrollmentsTotal.Inc()
	logger.Log.Info("student enrolled", zap.Uint("studentId", studentID), zap.Uint("courseId", courseID))
	return nil
}

// GetAllCourses lists every course regardless of visibility.
func (s *CourseService) GetAllCourses(ctx context.Context) (list []dto.CourseSummaryDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseService.GetAllCourses")
	defer func() { tracing.End(span, err) }()

	courses, err := s.store.WithContext(ctx).Courses.FindAll()
	if err != nil {
		return nil, err
	}
	return dto.ToCourseSummaryDtoList(courses), nil
}

func (s *CourseService) GetStudentsForCourse(ctx context.Context, courseID uint) (list []dto.StudentDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseService.GetStudentsForCourse")
	defer func() { tracing.End(span, err) }()

	students, err := s.store.WithContext(ctx).Enrollments.FindStudentsByCourseID(courseID)
	if err != nil {
		return nil, err
	}
	return dto.ToStudentDtoList(students), nil
}

// GetMyCourses lists the caller's enrolled courses that are public and not yet
// completed, each with its current progress.
func (s *CourseService) GetMyCourses(ctx context.Context, caller Caller) (list []dto.CourseSummaryDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseService.GetMyCourses")
	defer func() { tracing.End(span, err) }()

	var done []completion
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		list, done = nil, nil

		student, err := resolveStudent(tx, caller)
		if err != nil {
			return err
		}

		courses, err := tx.Enrollments.FindCoursesByStudentID(student.ID)
		if err != nil {
			return err
		}

		calc := newProgressCalculator(tx)
		list = make([]dto.CourseSummaryDto, 0, len(courses))
		for i := range courses {
			course := &courses[i]
			if !course.IsPublic {
				continue
			}
			completed, err := calc.isCourseCompleted(student.ID, course.ID)
			if err != nil {
				return err
			}
			if completed {
				continue
			}

			summary, flipped, err := summaryWithProgress(calc, student.ID, course)
			if err != nil {
				return err
			}
			if flipped {
				done = append(done, completion{student: student, course: course})
			}
			list = append(list, summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	announceCompletions(ctx, s.notifier, done)
	return list, nil
}

// GetCompletedCourses lists the caller's enrolled courses that are completed.
// The caller is resolved by user id like every other operation; callers that do
// not resolve to a student get ErrStudentNotFound.
func (s *CourseService) GetCompletedCourses(ctx context.Context, caller Caller) (list []dto.CourseSummaryDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseService.GetCompletedCourses")
	defer func() { tracing.End(span, err) }()

	var done []completion
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		list, done = nil, nil

		if caller.Kind != CallerStudent {
			return util.ErrStudentNotFound
		}
		student, err := findStudent(tx, caller.UserID)
		if err != nil {
			return err
		}

		courses, err := tx.Enrollments.FindCoursesByStudentID(student.ID)
		if err != nil {
			return err
		}

		calc := newProgressCalculator(tx)
		list = make([]dto.CourseSummaryDto, 0, len(courses))
		for i := range courses {
			course := &courses[i]
			completed, err := calc.isCourseCompleted(student.ID, course.ID)
			if err != nil {
				return err
			}
			if !completed {
				continue
			}

			summary, flipped, err := summaryWithProgress(calc, student.ID, course)
			if err != nil {
				return err
			}
			if flipped {
				done = append(done, completion{student: student, course: course})
			}
			list = append(list, summary)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	announceCompletions(ctx, s.notifier, done)
	return list, nil
}

// GetCourses lists public courses. A blank search returns all of them (served
// from the cache when possible); otherwise titles are matched case-insensitively.
func (s *CourseService) GetCourses(ctx context.Context, search string) (list []dto.CourseSummaryDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseService.GetCourses")
	defer func() { tracing.End(span, err) }()

	search = strings.TrimSpace(search)
	if search != "" {
		courses, err := s.store.WithContext(ctx).Courses.SearchPublicByTitle(search)
		if err != nil {
			return nil, err
		}
		return dto.ToCourseSummaryDtoList(courses), nil
	}

	if cached, ok, err := s.cache.GetPublic(ctx); err != nil {
		logger.Log.Warn("course cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	courses, err := s.store.WithContext(ctx).Courses.FindByPublic(true)
	if err != nil {
		return nil, err
	}
	list = dto.ToCourseSummaryDtoList(courses)

	if err := s.cache.SetPublic(ctx, list); err != nil {
		logger.Log.Warn("course cache write failed", zap.Error(err))
	}
	return list, nil
}

func (s *CourseService) GetPrivateCourses(ctx context.Context) (list []dto.CourseSummaryDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseService.GetPrivateCourses")
	defer func() { tracing.End(span, err) }()

	courses, err := s.store.WithContext(ctx).Courses.FindByPublic(false)
	if err != nil {
		return nil, err
	}
	return dto.ToCourseSummaryDtoList(courses), nil
}

// Approve makes the course public.
func (s *CourseService) Approve(ctx context.Context, id uint) error {
	return s.setVisibility(ctx, id, true)
}

// Disallow hides the course from the public catalogue.
func (s *CourseService) Disallow(ctx context.Context, id uint) error {
	return s.setVisibility(ctx, id, false)
}

func (s *CourseService) setVisibility(ctx context.Context, id uint, public bool) (err error) {
	action := "disallow"
	if public {
		action = "approve"
	}
	ctx, span := tracing.Start(ctx, "CourseService."+action)
	defer func() { tracing.End(span, err) }()

	var course *model.Course
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		course, err = tx.Courses.FindByID(id)
		if err != nil {
			return notFound(err, util.ErrCourseNotFound)
		}
		return tx.Courses.SetPublic(course, public)
	})
	if err != nil {
		return err
	}

	s.invalidatePublic(ctx)
	monitoring.ModerationTotal.WithLabelValues(action).Inc()
	logger.Log.Info("course visibility changed", zap.Uint("courseId", id), zap.String("action", action))

	if public {
		s.notifier.CourseApproved(ctx, course)
	} else {
		s.notifier.CourseDisallowed(ctx, course)
	}
	return nil
}

// EditCourse overwrites title and description.
func (s *CourseService) EditCourse(ctx context.Context, payload dto.CoursePayload, id uint) (err error) {
	ctx, span := tracing.Start(ctx, "CourseService.EditCourse")
	defer func() { tracing.End(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		course, err := findCourse(tx, id)
		if err != nil {
			return err
		}
		return tx.Courses.UpdateFields(course, map[string]interface{}{
			"title":       payload.Title,
			"title_key":   model.TitleKey(payload.Title),
			"slug":        slug.Make(payload.Title),
			"description": payload.Description,
		})
	})
	if err != nil {
		return err
	}

	s.invalidatePublic(ctx)
	return nil
}

// DeleteCourse removes the course and everything hanging off it. Deleting an
// unknown id is a no-op.
func (s *CourseService) DeleteCourse(ctx context.Context, id uint) (err error) {
	ctx, span := tracing.Start(ctx, "CourseService.DeleteCourse")
	defer func() { tracing.End(span, err) }()

	var removed bool
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		removed, err = tx.Courses.Delete(id)
		return err
	})
	if err != nil {
		return err
	}

	if removed {
		s.invalidatePublic(ctx)
		logger.Log.Info("course deleted", zap.Uint("courseId", id))
	}
	return nil
}

func (s *CourseService) invalidatePublic(ctx context.Context) {
	invalidatePublicList(ctx, s.cache)
}

func invalidatePublicList(ctx context.Context, cache repository.CourseListCache) {
	if err := cache.InvalidatePublic(ctx); err != nil {
		logger.Log.Warn("course cache invalidation failed", zap.Error(err))
	}
}

func summaryWithProgress(calc progressCalculator, studentID uint, course *model.Course) (dto.CourseSummaryDto, bool, error) {
	summary := dto.ToCourseSummaryDto(course)
	progress, flipped, err := calc.courseProgressAndRefresh(studentID, course.ID)
	if err != nil {
		return summary, false, err
	}
	summary.Progress = progress
	return summary, flipped, nil
}
