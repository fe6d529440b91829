package repositories

import (
	"fmt"

	"github.com/yigit/unistud/internal/pkg/apperrors"
)

// Constraint names from migrations/001_init.sql
const (
	ConstraintStudentEmail   = "students_email_key"
	ConstraintCourseTitle    = "courses_title_key"
	ConstraintEnrollmentPair = "student_courses_pair_key"
	ConstraintEnrollStudent  = "student_courses_student_fkey"
	ConstraintEnrollCourse   = "student_courses_course_fkey"
)

// The helpers below build the user-facing errors shared by every store.

func StudentNotFoundError(id int64) error {
	return apperrors.NewCustomError(apperrors.ErrStudentNotFound, fmt.Sprintf("student not found with id: %d", id))
}

func StudentEmailNotFoundError() error {
	return apperrors.NewCustomError(apperrors.ErrStudentNotFound, "student not found")
}

func CourseNotFoundError(id int64) error {
	return apperrors.NewCustomError(apperrors.ErrCourseNotFound, fmt.Sprintf("course not found with id: %d", id))
}

func EmailInUseError(email string) error {
	return apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, fmt.Sprintf("email already in use: %s", email))
}

func TitleInUseError(title string) error {
	return apperrors.NewCustomError(apperrors.ErrCourseTitleExists, fmt.Sprintf("a course titled '%s' already exists", title))
}

func AlreadyEnrolledError() error {
	return apperrors.NewCustomError(apperrors.ErrAlreadyEnrolled, "student is already enrolled in this course")
}

func NotEnrolledError() error {
	return apperrors.NewCustomError(apperrors.ErrNotEnrolled, "student is not enrolled in this course")
}

func CourseFullError(title string, capacity int) error {
	return apperrors.NewCustomError(apperrors.ErrCourseFull,
		fmt.Sprintf("course '%s' has reached its maximum capacity of %d students", title, capacity)).
		WithDetails(map[string]interface{}{"maxCapacity": capacity})
}

func CapacityBelowEnrollmentError(capacity, current int) error {
	return apperrors.NewCustomError(apperrors.ErrCapacityBelowEnrollment,
		fmt.Sprintf("maxCapacity %d is lower than the current enrollment of %d students", capacity, current))
}
