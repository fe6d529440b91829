package services

import (
	"github.com/rs/zerolog"
	"github.com/yigit/unistud/internal/app/repositories"
	"github.com/yigit/unistud/internal/pkg/auth"
	"github.com/yigit/unistud/internal/pkg/metrics"
)

// Services groups the business services handed to the controllers.
type Services struct {
	Auth        *AuthService
	Students    *StudentService
	Courses     *CourseService
	Enrollments *EnrollmentService
}

// Dependencies are the collaborators shared by the services.
type Dependencies struct {
	Repos           *repositories.Repositories
	JWT             *auth.JWTService
	Hasher          *auth.PasswordHasher
	Metrics         *metrics.Metrics
	DefaultCapacity int
	Logger          zerolog.Logger
}

// New wires every service from deps.
func New(deps Dependencies) *Services {
	repos := deps.Repos
	return &Services{
		Auth: NewAuthService(repos.Students, deps.JWT, deps.Hasher, deps.Metrics,
			deps.Logger.With().Str("service", "auth").Logger()),
		Students: NewStudentService(repos.Students, repos.Enrollments,
			deps.Logger.With().Str("service", "students").Logger()),
		Courses: NewCourseService(repos.Courses, repos.Enrollments, deps.DefaultCapacity,
			deps.Logger.With().Str("service", "courses").Logger()),
		Enrollments: NewEnrollmentService(repos.Students, repos.Enrollments, deps.Metrics,
			deps.Logger.With().Str("service", "enrollments").Logger()),
	}
}
