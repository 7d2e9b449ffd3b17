package controller

import (
	"net/http"

	"unilearn_backend/internal/dto"
	"unilearn_backend/internal/service"
	"unilearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService  *service.CourseService
	ContentService *service.CourseContentService
}

func NewCourseController(courseService *service.CourseService, contentService *service.CourseContentService) *CourseController {
	return &CourseController{
		CourseService:  courseService,
		ContentService: contentService,
	}
}

func callerOf(ctx *gin.Context) service.Caller {
	return service.CallerFromClaims(util.GetUserFromContext(ctx))
}

// GetCourses godoc
// @Summary List public courses
// @Description Returns every public course, or only those whose title contains the search term
// @Tags courses
// @Produce json
// @Param search query string false "case-insensitive title filter"
// @Success 200 {object} util.Response{data=[]dto.CourseSummaryDto}
// @Router /courses [get]
func (c *CourseController) GetCourses(ctx *gin.Context) {
	courses, err := c.CourseService.GetCourses(ctx.Request.Context(), ctx.Query("search"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCourse godoc
// @Summary Course details
// @Description Students see their enrollment and module progress, teachers see whether they own the course
// @Tags courses
// @Produce json
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=dto.CourseDto}
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CourseService.FindCourseByID(ctx.Request.Context(), id, callerOf(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// CreateCourse godoc
// @Summary Create a course
// @Description The calling teacher becomes the owner. New courses are private until approved.
// @Tags courses
// @Accept json
// @Produce json
// @Param body body dto.CoursePayload true "course"
// @Success 201 {object} util.Response{data=dto.CourseDto}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response "teacher not found"
// @Security ApiKeyAuth
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var payload dto.CoursePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.CourseService.CreateCourse(ctx.Request.Context(), payload, callerOf(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// EditCourse godoc
// @Summary Edit a course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "course id"
// @Param body body dto.CoursePayload true "course"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /courses/{id} [put]
func (c *CourseController) EditCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var payload dto.CoursePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if err := c.CourseService.EditCourse(ctx.Request.Context(), payload, id); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadCover godoc
// @Summary Upload a course cover
// @Tags courses
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "course id"
// @Param file formData file true "image"
// @Success 200 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Security ApiKeyAuth
// @Router /courses/{id}/cover [post]
func (c *CourseController) UploadCover(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, util.MaxCoverSize+1<<20)
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	url, err := c.ContentService.UploadCover(ctx.Request.Context(), id, callerOf(ctx), fileHeader.Filename, file, fileHeader.Size)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"coverUrl": url})
}

// AddModule godoc
// @Summary Add a module to a course
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "course id"
// @Param body body dto.ModulePayload true "module"
// @Success 201 {object} util.Response{data=dto.ModuleDto}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /courses/{id}/modules [post]
func (c *CourseController) AddModule(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var payload dto.ModulePayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	module, err := c.ContentService.AddModule(ctx.Request.Context(), id, callerOf(ctx), payload)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, module)
}

// AddQuiz godoc
// @Summary Add a quiz to a module
// @Tags courses
// @Accept json
// @Produce json
// @Param id path int true "module id"
// @Param body body dto.QuizPayload true "quiz"
// @Success 201 {object} util.Response{data=dto.QuizDto}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /modules/{id}/quizzes [post]
func (c *CourseController) AddQuiz(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var payload dto.QuizPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quiz, err := c.ContentService.AddQuiz(ctx.Request.Context(), id, callerOf(ctx), payload)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, quiz)
}

// GetStudentsForCourse godoc
// @Summary Students enrolled in a course
// @Tags courses
// @Produce json
// @Param id path int true "course id"
// @Success 200 {object} util.Response{data=[]dto.StudentDto}
// @Security ApiKeyAuth
// @Router /courses/{id}/students [get]
func (c *CourseController) GetStudentsForCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	students, err := c.CourseService.GetStudentsForCourse(ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, students)
}

// EnrollCourse godoc
// @Summary Enroll in a course
// @Tags students
// @Produce json
// @Param id path int true "course id"
// @Success 201 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "already enrolled"
// @Security ApiKeyAuth
// @Router /courses/{id}/enroll [post]
func (c *CourseController) EnrollCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.CourseService.EnrollCourse(ctx.Request.Context(), id, callerOf(ctx)); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, nil)
}

// GetMyCourses godoc
// @Summary Courses in progress
// @Description Public enrolled courses the caller has not completed yet, with progress
// @Tags students
// @Produce json
// @Success 200 {object} util.Response{data=[]dto.CourseSummaryDto}
// @Security ApiKeyAuth
// @Router /student/courses [get]
func (c *CourseController) GetMyCourses(ctx *gin.Context) {
	courses, err := c.CourseService.GetMyCourses(ctx.Request.Context(), callerOf(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetCompletedCourses godoc
// @Summary Completed courses
// @Tags students
// @Produce json
// @Success 200 {object} util.Response{data=[]dto.CourseSummaryDto}
// @Security ApiKeyAuth
// @Router /student/courses/completed [get]
func (c *CourseController) GetCompletedCourses(ctx *gin.Context) {
	courses, err := c.CourseService.GetCompletedCourses(ctx.Request.Context(), callerOf(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// SubmitAttempt godoc
// @Summary Submit a quiz attempt
// @Tags students
// @Accept json
// @Produce json
// @Param id path int true "quiz id"
// @Param body body dto.AttemptPayload true "score"
// @Success 201 {object} util.Response{data=dto.AttemptDto}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /quizzes/{id}/attempts [post]
func (c *CourseController) SubmitAttempt(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var payload dto.AttemptPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.ContentService.SubmitAttempt(ctx.Request.Context(), id, callerOf(ctx), *payload.Score)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Created(ctx, attempt)
}

// GetAllCourses godoc
// @Summary Every course
// @Tags admin
// @Produce json
// @Success 200 {object} util.Response{data=[]dto.CourseSummaryDto}
// @Security ApiKeyAuth
// @Router /admin/courses [get]
func (c *CourseController) GetAllCourses(ctx *gin.Context) {
	courses, err := c.CourseService.GetAllCourses(ctx.Request.Context())
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// GetPrivateCourses godoc
// @Summary Courses awaiting approval
// @Tags admin
// @Produce json
// @Success 200 {object} util.Response{data=[]dto.CourseSummaryDto}
// @Security ApiKeyAuth
// @Router /admin/courses/private [get]
func (c *CourseController) GetPrivateCourses(ctx *gin.Context) {
	courses, err := c.CourseService.GetPrivateCourses(ctx.Request.Context())
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// Approve godoc
// @Summary Make a course public
// @Tags admin
// @Produce json
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/approve [patch]
func (c *CourseController) Approve(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.Approve(ctx.Request.Context(), id); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// Disallow godoc
// @Summary Make a course private
// @Tags admin
// @Produce json
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response
// @Security ApiKeyAuth
// @Router /admin/courses/{id}/disallow [patch]
func (c *CourseController) Disallow(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.Disallow(ctx.Request.Context(), id); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// DeleteCourse godoc
// @Summary Delete a course
// @Description Removes the course with its modules, quizzes, attempts and enrollments
// @Tags admin
// @Produce json
// @Param id path int true "course id"
// @Success 200 {object} util.Response
// @Security ApiKeyAuth
// @Router /admin/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := c.CourseService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		handleServiceError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
