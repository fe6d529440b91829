package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unistud/internal/app/controllers"
	"github.com/yigit/unistud/internal/middleware"
)

// PublicPaths bypass the access gate.
var PublicPaths = []string{
	"/api/v1/auth/",
	"/api/v1/health",
	"/metrics",
	"/swagger/",
}

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Auth        *controllers.AuthController
	Students    *controllers.StudentController
	Courses     *controllers.CourseController
	Enrollments *controllers.EnrollmentController
	Health      *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter gin.HandlerFunc,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", ctrl.Health.Health)

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	if authLimiter != nil {
		auth.Use(authLimiter)
	}
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/me", ctrl.Auth.Me)

		students := authenticated.Group("/students")
		{
			students.GET("", ctrl.Students.List)
			students.GET("/with-courses", ctrl.Students.ListWithCourses)
			students.GET("/:id", ctrl.Students.GetByID)
			students.PUT("/:id", ctrl.Students.Update)
			students.DELETE("/:id", ctrl.Students.Delete)

			students.POST("/enroll", ctrl.Enrollments.Enroll)
			students.POST("/unenroll", ctrl.Enrollments.Unenroll)
		}

		courses := authenticated.Group("/courses")
		{
			courses.POST("", ctrl.Courses.Create)
			courses.GET("", ctrl.Courses.List)
			courses.GET("/with-students", ctrl.Courses.ListWithStudents)
			courses.GET("/search", ctrl.Courses.Search)
			courses.GET("/:id", ctrl.Courses.GetByID)
			courses.PUT("/:id", ctrl.Courses.Update)
			courses.DELETE("/:id", ctrl.Courses.Delete)
		}
	}
}
