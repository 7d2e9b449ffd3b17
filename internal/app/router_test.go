package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"unilearn_backend/internal/config"
	"unilearn_backend/internal/model"
	"unilearn_backend/internal/repository"
	"unilearn_backend/internal/testutil"
	"unilearn_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret-router-test-secret"

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, util.RegisterValidators())

	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: testSecret, ExpireTime: time.Hour},
		Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		Mail:    config.MailConfig{Provider: util.MailProviderLog},
	}
	db := testutil.NewDB(t)

	a := &App{Config: cfg, DB: db}
	services := a.initServices(repository.NewStore(db), cfg, nil)
	router := gin.New()
	a.registerRoutes(router, a.initControllers(services), cfg)

	return &testServer{db: db, router: router}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, util.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp util.Response
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func tokenFor(t *testing.T, user model.User) string {
	t.Helper()
	tok, err := util.GenerateJWT(&user, testSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, data interface{}, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestRouter_CourseLifecycle(t *testing.T) {
	s := newTestServer(t)

	teacher := testutil.CreateTeacher(t, s.db, "alice")
	student := testutil.CreateStudent(t, s.db, "bob")
	admin := testutil.CreateUser(t, s.db, "root", model.RoleAdmin)
	teacherToken := tokenFor(t, teacher.User)
	studentToken := tokenFor(t, student.User)
	adminToken := tokenFor(t, *admin)

	rec, resp := s.do(t, http.MethodPost, "/api/courses", teacherToken, gin.H{"title": "Intro to Go", "description": "basics"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var course struct {
		ID       uint `json:"id"`
		IsPublic bool `json:"isPublic"`
	}
	decode(t, resp.Data, &course)
	assert.False(t, course.IsPublic)
	coursePath := fmt.Sprintf("/api/courses/%d", course.ID)
	adminPath := fmt.Sprintf("/api/admin/courses/%d", course.ID)

	rec, resp = s.do(t, http.MethodPost, coursePath+"/modules", teacherToken, gin.H{"title": "Basics"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var module struct {
		ID uint `json:"id"`
	}
	decode(t, resp.Data, &module)

	rec, resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/modules/%d/quizzes", module.ID), teacherToken, gin.H{"title": "Q1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var quiz struct {
		ID uint `json:"id"`
	}
	decode(t, resp.Data, &quiz)

	// private until approved
	rec, resp = s.do(t, http.MethodGet, "/api/courses", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)

	rec, _ = s.do(t, http.MethodPatch, adminPath+"/approve", teacherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = s.do(t, http.MethodPatch, adminPath+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, resp = s.do(t, http.MethodGet, "/api/courses?search=GO", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []struct {
		ID uint `json:"id"`
	}
	decode(t, resp.Data, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, course.ID, listed[0].ID)

	rec, _ = s.do(t, http.MethodPost, coursePath+"/enroll", studentToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = s.do(t, http.MethodPost, coursePath+"/enroll", studentToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = s.do(t, http.MethodPost, coursePath+"/enroll", teacherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = s.do(t, http.MethodGet, "/api/student/courses", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []struct {
		ID       uint    `json:"id"`
		Progress float64 `json:"progress"`
	}
	decode(t, resp.Data, &mine)
	require.Len(t, mine, 1)
	assert.Zero(t, mine[0].Progress)

	rec, resp = s.do(t, http.MethodPost, fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), studentToken, gin.H{"score": 75})
	require.Equal(t, http.StatusCreated, rec.Code)
	var attempt struct {
		Passed          bool `json:"passed"`
		CourseCompleted bool `json:"courseCompleted"`
	}
	decode(t, resp.Data, &attempt)
	assert.True(t, attempt.Passed)
	assert.True(t, attempt.CourseCompleted)

	rec, resp = s.do(t, http.MethodGet, "/api/student/courses/completed", studentToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var completed []struct {
		ID       uint    `json:"id"`
		Progress float64 `json:"progress"`
	}
	decode(t, resp.Data, &completed)
	require.Len(t, completed, 1)
	assert.Equal(t, 75.0, completed[0].Progress)

	rec, resp = s.do(t, http.MethodGet, coursePath, teacherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Creator  bool `json:"creator"`
		Enrolled bool `json:"enrolled"`
	}
	decode(t, resp.Data, &view)
	assert.True(t, view.Creator)
	assert.False(t, view.Enrolled)

	rec, resp = s.do(t, http.MethodGet, coursePath+"/students", teacherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var students []struct {
		ID uint `json:"id"`
	}
	decode(t, resp.Data, &students)
	require.Len(t, students, 1)
	assert.Equal(t, student.ID, students[0].ID)

	rec, _ = s.do(t, http.MethodDelete, adminPath, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = s.do(t, http.MethodGet, coursePath, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_RejectsBadInput(t *testing.T) {
	s := newTestServer(t)
	teacher := testutil.CreateTeacher(t, s.db, "alice")
	student := testutil.CreateStudent(t, s.db, "bob")
	course := testutil.CreateCourse(t, s.db, teacher, "Go", true)
	quiz := testutil.CreateQuiz(t, s.db, testutil.CreateModule(t, s.db, course, "M1", 1), "Q1")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{name: "blank title", method: http.MethodPost, path: "/api/courses", token: tokenFor(t, teacher.User), body: gin.H{"title": "   "}, want: http.StatusBadRequest},
		{name: "missing title", method: http.MethodPost, path: "/api/courses", token: tokenFor(t, teacher.User), body: gin.H{}, want: http.StatusBadRequest},
		{name: "no token", method: http.MethodPost, path: "/api/courses", body: gin.H{"title": "Go"}, want: http.StatusUnauthorized},
		{name: "student creating", method: http.MethodPost, path: "/api/courses", token: tokenFor(t, student.User), body: gin.H{"title": "Go"}, want: http.StatusForbidden},
		{name: "non numeric id", method: http.MethodGet, path: "/api/courses/abc", want: http.StatusBadRequest},
		{name: "missing course", method: http.MethodGet, path: "/api/courses/9999", want: http.StatusNotFound},
		{name: "score out of range", method: http.MethodPost, path: fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), token: tokenFor(t, student.User), body: gin.H{"score": 120}, want: http.StatusBadRequest},
		{name: "score missing", method: http.MethodPost, path: fmt.Sprintf("/api/quizzes/%d/attempts", quiz.ID), token: tokenFor(t, student.User), body: gin.H{}, want: http.StatusBadRequest},
		{name: "admin listing as student", method: http.MethodGet, path: "/api/admin/courses", token: tokenFor(t, student.User), want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := s.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name": "bob", "email": "bob@example.com", "password": "password1", "role": "student",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name": "bob", "email": "bob@example.com", "password": "password1", "role": "student",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/register", "", gin.H{
		"name": "eve", "email": "eve@example.com", "password": "password1", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "bob@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, resp := s.do(t, http.MethodPost, "/api/login", "", gin.H{"email": "bob@example.com", "password": "password1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	decode(t, resp.Data, &login)
	require.NotEmpty(t, login.Token)

	rec, resp = s.do(t, http.MethodGet, "/api/student/courses", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Data)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	rec, resp := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Message)
}

func TestCloseStopsMiddlewareGoroutines(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{RateLimit: config.RateLimitConfig{MaxRequests: 10, WindowMinutes: 1}}
	a := &App{Config: cfg, DB: testutil.NewDB(t)}

	a.setupMiddlewares(gin.New(), cfg)
	require.NotNil(t, a.background)
	assert.NoError(t, a.background.Err())

	a.Close()
	assert.ErrorIs(t, a.background.Err(), context.Canceled)
}
