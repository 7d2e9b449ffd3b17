package app

import (
	"unilearn_backend/docs"
	"unilearn_backend/internal/config"
	"unilearn_backend/internal/middleware"
	"unilearn_backend/internal/model"
	"unilearn_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, cfg)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerTeacherRoutes(authGroup, c)
		a.registerStudentRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		public.GET("/courses", c.course.GetCourses)
		public.GET("/courses/:id", middleware.TryAuthMiddleware(cfg), c.course.GetCourse)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("")
	teacher.Use(middleware.RoleMiddleware(model.RoleTeacher))
	{
		teacher.POST("/courses", c.course.CreateCourse)
		teacher.PUT("/courses/:id", c.course.EditCourse)
		teacher.POST("/courses/:id/cover", c.course.UploadCover)
		teacher.POST("/courses/:id/modules", c.course.AddModule)
		teacher.POST("/modules/:id/quizzes", c.course.AddQuiz)
		teacher.GET("/courses/:id/students", c.course.GetStudentsForCourse)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("")
	student.Use(middleware.RoleMiddleware(model.RoleStudent))
	{
		student.POST("/courses/:id/enroll", c.course.EnrollCourse)
		student.GET("/student/courses", c.course.GetMyCourses)
		student.GET("/student/courses/completed", c.course.GetCompletedCourses)
		student.POST("/quizzes/:id/attempts", c.course.SubmitAttempt)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.RoleAdmin))
	{
		admin.GET("/courses", c.course.GetAllCourses)
		admin.GET("/courses/private", c.course.GetPrivateCourses)
		admin.PATCH("/courses/:id/approve", c.course.Approve)
		admin.PATCH("/courses/:id/disallow", c.course.Disallow)
		admin.DELETE("/courses/:id", c.course.DeleteCourse)
	}
}
