package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"unilearn_backend/internal/dto"
	"unilearn_backend/internal/model"
	"unilearn_backend/internal/repository"
	"unilearn_backend/internal/util"
	"unilearn_backend/pkg/logger"
	"unilearn_backend/pkg/tracing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CourseContentService lets teachers fill their courses and students submit
// quiz attempts.
type CourseContentService struct {
	store    *repository.Store
	storage  ObjectStore
	cache    repository.CourseListCache
	notifier *NotificationService
}

func NewCourseContentService(store *repository.Store, storage ObjectStore, cache repository.CourseListCache, notifier *NotificationService) *CourseContentService {
	if cache == nil {
		cache = repository.NoopCourseListCache{}
	}
	return &CourseContentService{
		store:    store,
		storage:  storage,
		cache:    cache,
		notifier: notifier,
	}
}

// UploadCover stores an image and makes it the cover of a course owned by caller.
func (s *CourseContentService) UploadCover(ctx context.Context, courseID uint, caller Caller, filename string, reader io.Reader, size int64) (url string, err error) {
	ctx, span := tracing.Start(ctx, "CourseContentService.UploadCover")
	defer func() { tracing.End(span, err) }()

	if size > util.MaxCoverSize {
		return "", util.ErrFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !util.HasImageExtension(filename) {
		return "", util.ErrInvalidFileType
	}

	head := make([]byte, util.SniffLen)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	head = head[:n]
	contentType, err := util.DetectImageType(head)
	if err != nil {
		return "", err
	}

	if _, err := s.ownedCourse(s.store.WithContext(ctx), courseID, caller); err != nil {
		return "", err
	}

	object := "covers/" + uuid.New().String() + ext
	url, err = s.storage.Put(ctx, object, io.MultiReader(bytes.NewReader(head), reader), size, contentType)
	if err != nil {
		return "", err
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		course, err := s.ownedCourse(tx, courseID, caller)
		if err != nil {
			return err
		}
		return tx.Courses.UpdateFields(course, map[string]interface{}{"cover_url": url})
	})
	if err != nil {
		if delErr := s.storage.Remove(ctx, object); delErr != nil {
			logger.Log.Warn("orphaned cover not removed", zap.String("object", object), zap.Error(delErr))
		}
		return "", err
	}

	// the public listing carries coverUrl
	invalidatePublicList(ctx, s.cache)

	logger.Log.Info("course cover uploaded", zap.Uint("courseId", courseID), zap.String("object", object))
	return url, nil
}

// AddModule appends a module to a course owned by caller. Without an explicit
// order the module goes last.
func (s *CourseContentService) AddModule(ctx context.Context, courseID uint, caller Caller, payload dto.ModulePayload) (view *dto.ModuleDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseContentService.AddModule")
	defer func() { tracing.End(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		course, err := s.ownedCourse(tx, courseID, caller)
		if err != nil {
			return err
		}

		order := 0
		if payload.Order != nil {
			order = *payload.Order
		} else {
			count, err := tx.Modules.CountByCourseID(course.ID)
			if err != nil {
				return err
			}
			order = int(count) + 1
		}

		module := &model.Module{
			CourseID: course.ID,
			Title:    payload.Title,
			Order:    order,
		}
		if err := tx.Modules.Create(module); err != nil {
			return err
		}

		d := dto.ToModuleDto(module)
		view = &d
		return nil
	})
	return view, err
}

func (s *CourseContentService) AddQuiz(ctx context.Context, moduleID uint, caller Caller, payload dto.QuizPayload) (view *dto.QuizDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseContentService.AddQuiz")
	defer func() { tracing.End(span, err) }()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		module, err := tx.Modules.FindByID(moduleID)
		if err != nil {
			return notFound(err, util.ErrModuleNotFound)
		}
		if _, err := s.ownedCourse(tx, module.CourseID, caller); err != nil {
			return err
		}

		quiz := &model.Quiz{
			ModuleID:     module.ID,
			Title:        payload.Title,
			PassingScore: util.DefaultPassingScore,
		}
		if payload.PassingScore != nil {
			quiz.PassingScore = *payload.PassingScore
		}
		if err := tx.Quizzes.Create(quiz); err != nil {
			return err
		}

		d := dto.ToQuizDto(quiz)
		view = &d
		return nil
	})
	return view, err
}

// SubmitAttempt records a scored attempt for the calling student. When the
// student is enrolled in the quiz's course the completion latch is refreshed.
func (s *CourseContentService) SubmitAttempt(ctx context.Context, quizID uint, caller Caller, score float64) (view *dto.AttemptDto, err error) {
	ctx, span := tracing.Start(ctx, "CourseContentService.SubmitAttempt")
	defer func() { tracing.End(span, err) }()

	if score < 0 || score > 100 {
		return nil, util.ErrInvalidScore
	}

	var done []completion
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		view, done = nil, nil

		student, err := resolveStudent(tx, caller)
		if err != nil {
			return err
		}

		quiz, err := tx.Quizzes.FindByID(quizID)
		if err != nil {
			return notFound(err, util.ErrQuizNotFound)
		}
		if quiz.Module == nil {
			return util.ErrModuleNotFound
		}

		number, err := tx.Attempts.NextAttemptNumber(student.ID, quiz.ID)
		if err != nil {
			return err
		}
		attempt := &model.QuizAttempt{
			StudentID:     student.ID,
			QuizID:        quiz.ID,
			AttemptNumber: number,
			Score:         score,
			Passed:        score >= quiz.PassingScore,
		}
		if err := tx.Attempts.Create(attempt); err != nil {
			return err
		}

		view = &dto.AttemptDto{
			QuizID:        quiz.ID,
			AttemptNumber: attempt.AttemptNumber,
			Score:         attempt.Score,
			Passed:        attempt.Passed,
		}

		enrollment, flipped, err := newProgressCalculator(tx).refreshCompletion(student.ID, quiz.Module.CourseID)
		if errors.Is(err, util.ErrEnrollmentNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		view.CourseCompleted = enrollment.Completed

		if flipped {
			course, err := findCourse(tx, quiz.Module.CourseID)
			if err != nil {
				return err
			}
			done = append(done, completion{student: student, course: course})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("quiz attempt recorded",
		zap.Uint("quizId", view.QuizID),
		zap.Int("attempt", view.AttemptNumber),
		zap.Bool("passed", view.Passed),
	)
	announceCompletions(ctx, s.notifier, done)
	return view, nil
}

func (s *CourseContentService) ownedCourse(tx *repository.Store, courseID uint, caller Caller) (*model.Course, error) {
	teacher, err := resolveTeacher(tx, caller)
	if err != nil {
		return nil, err
	}
	course, err := tx.Courses.FindPlainByID(courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	if course.TeacherID != teacher.ID {
		return nil, util.ErrNotCourseOwner
	}
	return course, nil
}
