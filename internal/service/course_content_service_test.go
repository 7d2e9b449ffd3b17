package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"unilearn_backend/internal/dto"
	"unilearn_backend/internal/testutil"
	"unilearn_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestCourseContentService_AddModule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := testutil.CreateTeacher(t, f.db, "alice")
	other := testutil.CreateTeacher(t, f.db, "dave")
	course := testutil.CreateCourse(t, f.db, owner, "Go", false)

	first, err := f.content.AddModule(ctx, course.ID, TeacherCaller(owner.ID), dto.ModulePayload{Title: "Basics"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Order)

	second, err := f.content.AddModule(ctx, course.ID, TeacherCaller(owner.ID), dto.ModulePayload{Title: "Types"})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Order)

	explicit, err := f.content.AddModule(ctx, course.ID, TeacherCaller(owner.ID), dto.ModulePayload{Title: "Preface", Order: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 0, explicit.Order)

	view, err := f.courses.FindCourseByID(ctx, course.ID, Anonymous())
	require.NoError(t, err)
	require.Len(t, view.Modules, 3)
	assert.Equal(t, "Preface", view.Modules[0].Title)
	assert.Equal(t, "Basics", view.Modules[1].Title)

	_, err = f.content.AddModule(ctx, course.ID, TeacherCaller(other.ID), dto.ModulePayload{Title: "Hijack"})
	assert.ErrorIs(t, err, util.ErrNotCourseOwner)

	_, err = f.content.AddModule(ctx, 9999, TeacherCaller(owner.ID), dto.ModulePayload{Title: "Nowhere"})
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestCourseContentService_AddQuiz(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := testutil.CreateTeacher(t, f.db, "alice")
	other := testutil.CreateTeacher(t, f.db, "dave")
	course := testutil.CreateCourse(t, f.db, owner, "Go", false)
	module := testutil.CreateModule(t, f.db, course, "Basics", 1)

	quiz, err := f.content.AddQuiz(ctx, module.ID, TeacherCaller(owner.ID), dto.QuizPayload{Title: "Q1"})
	require.NoError(t, err)
	assert.Equal(t, util.DefaultPassingScore, quiz.PassingScore)
	assert.Equal(t, module.ID, quiz.ModuleID)

	strict, err := f.content.AddQuiz(ctx, module.ID, TeacherCaller(owner.ID), dto.QuizPayload{Title: "Q2", PassingScore: floatPtr(90)})
	require.NoError(t, err)
	assert.Equal(t, 90.0, strict.PassingScore)

	_, err = f.content.AddQuiz(ctx, module.ID, TeacherCaller(other.ID), dto.QuizPayload{Title: "Q3"})
	assert.ErrorIs(t, err, util.ErrNotCourseOwner)

	_, err = f.content.AddQuiz(ctx, 9999, TeacherCaller(owner.ID), dto.QuizPayload{Title: "Q3"})
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
}

func TestCourseContentService_SubmitAttempt(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateTeacher(t, f.db, "alice")
	student := testutil.CreateStudent(t, f.db, "bob")
	course := testutil.CreateCourse(t, f.db, teacher, "Go", true)
	module := testutil.CreateModule(t, f.db, course, "Basics", 1)
	q1 := testutil.CreateQuiz(t, f.db, module, "Q1")
	q2 := testutil.CreateQuiz(t, f.db, module, "Q2")
	require.NoError(t, f.courses.EnrollCourse(ctx, course.ID, StudentCaller(student.ID)))

	caller := StudentCaller(student.ID)

	attempt, err := f.content.SubmitAttempt(ctx, q1.ID, caller, 40)
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.AttemptNumber)
	assert.False(t, attempt.Passed)
	assert.False(t, attempt.CourseCompleted)

	attempt, err = f.content.SubmitAttempt(ctx, q1.ID, caller, 80)
	require.NoError(t, err)
	assert.Equal(t, 2, attempt.AttemptNumber)
	assert.True(t, attempt.Passed)
	assert.False(t, attempt.CourseCompleted)

	attempt, err = f.content.SubmitAttempt(ctx, q2.ID, caller, 50)
	require.NoError(t, err)
	assert.True(t, attempt.Passed)
	assert.True(t, attempt.CourseCompleted)
	require.Len(t, f.mailer.messages(), 1)

	// the latch holds after a failing retry
	attempt, err = f.content.SubmitAttempt(ctx, q2.ID, caller, 10)
	require.NoError(t, err)
	assert.False(t, attempt.Passed)
	assert.True(t, attempt.CourseCompleted)
	assert.Len(t, f.mailer.messages(), 1)
	assert.True(t, testutil.LoadEnrollment(t, f.db, student, course).Completed)
}

func TestCourseContentService_SubmitAttemptRejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateTeacher(t, f.db, "alice")
	student := testutil.CreateStudent(t, f.db, "bob")
	course := testutil.CreateCourse(t, f.db, teacher, "Go", true)
	quiz := testutil.CreateQuiz(t, f.db, testutil.CreateModule(t, f.db, course, "M1", 1), "Q1")

	tests := []struct {
		name    string
		quizID  uint
		caller  Caller
		score   float64
		wantErr error
	}{
		{name: "negative score", quizID: quiz.ID, caller: StudentCaller(student.ID), score: -1, wantErr: util.ErrInvalidScore},
		{name: "score above 100", quizID: quiz.ID, caller: StudentCaller(student.ID), score: 101, wantErr: util.ErrInvalidScore},
		{name: "teacher", quizID: quiz.ID, caller: TeacherCaller(teacher.ID), score: 50, wantErr: util.ErrNotStudent},
		{name: "missing quiz", quizID: 9999, caller: StudentCaller(student.ID), score: 50, wantErr: util.ErrQuizNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.content.SubmitAttempt(ctx, tt.quizID, tt.caller, tt.score)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// not enrolled: the attempt is recorded but no latch exists
	attempt, err := f.content.SubmitAttempt(ctx, quiz.ID, StudentCaller(student.ID), 100)
	require.NoError(t, err)
	assert.True(t, attempt.Passed)
	assert.False(t, attempt.CourseCompleted)
}

func TestCourseContentService_UploadCover(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	owner := testutil.CreateTeacher(t, f.db, "alice")
	other := testutil.CreateTeacher(t, f.db, "dave")
	course := testutil.CreateCourse(t, f.db, owner, "Go", false)

	url, err := f.content.UploadCover(ctx, course.ID, TeacherCaller(owner.ID), "cover.PNG", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/covers/"))
	assert.True(t, strings.HasSuffix(url, ".png"))
	require.Len(t, f.storage.objects, 1)
	for _, data := range f.storage.objects {
		assert.Equal(t, pngHeader, data)
	}

	view, err := f.courses.FindCourseByID(ctx, course.ID, Anonymous())
	require.NoError(t, err)
	assert.Equal(t, url, view.CoverURL)

	tests := []struct {
		name     string
		courseID uint
		caller   Caller
		filename string
		body     []byte
		wantErr  error
	}{
		{name: "not an image", courseID: course.ID, caller: TeacherCaller(owner.ID), filename: "cover.png", body: []byte("plain text, not an image"), wantErr: util.ErrInvalidFileType},
		{name: "wrong extension", courseID: course.ID, caller: TeacherCaller(owner.ID), filename: "cover.exe", body: pngHeader, wantErr: util.ErrInvalidFileType},
		{name: "not the owner", courseID: course.ID, caller: TeacherCaller(other.ID), filename: "cover.png", body: pngHeader, wantErr: util.ErrNotCourseOwner},
		{name: "missing course", courseID: 9999, caller: TeacherCaller(owner.ID), filename: "cover.png", body: pngHeader, wantErr: util.ErrCourseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.content.UploadCover(ctx, tt.courseID, tt.caller, tt.filename, bytes.NewReader(tt.body), int64(len(tt.body)))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Len(t, f.storage.objects, 1)

	_, err = f.content.UploadCover(ctx, course.ID, TeacherCaller(owner.ID), "huge.png", bytes.NewReader(pngHeader), util.MaxCoverSize+1)
	assert.ErrorIs(t, err, util.ErrFileTooLarge)
}

func TestCourseContentService_UploadCoverRefreshesPublicListing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	cache := &countingCache{}
	notifier := NewNotificationService(f.mailer)
	courses := NewCourseService(f.store, cache, notifier)
	content := NewCourseContentService(f.store, f.storage, cache, notifier)

	owner := testutil.CreateTeacher(t, f.db, "alice")
	course := testutil.CreateCourse(t, f.db, owner, "Go", true)

	before, err := courses.GetCourses(ctx, "")
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Empty(t, before[0].CoverURL)

	url, err := content.UploadCover(ctx, course.ID, TeacherCaller(owner.ID), "cover.png", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	after, err := courses.GetCourses(ctx, "")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, url, after[0].CoverURL)

	_, err = content.UploadCover(ctx, course.ID, TeacherCaller(owner.ID), "cover.exe", bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.ErrorIs(t, err, util.ErrInvalidFileType)
	assert.Equal(t, 1, cache.invalidated, "rejected uploads leave the cache alone")
}
