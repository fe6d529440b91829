package dto

import "time"

// CreateCourseRequest creates a course. A missing maxCapacity uses the
// configured default; 0 means unlimited.
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200" example:"Algorithms"`
	MaxCapacity *int   `json:"maxCapacity" binding:"omitempty,capacity" example:"30"`
}

// UpdateCourseRequest replaces a course's title and capacity.
type UpdateCourseRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=200" example:"Advanced Algorithms"`
	MaxCapacity *int   `json:"maxCapacity" binding:"omitempty,capacity" example:"40"`
}

// CourseResponse is a course with its live enrollment figures.
// AvailableSpots is -1 for unlimited courses.
type CourseResponse struct {
	ID                int64            `json:"id" example:"1"`
	Title             string           `json:"title" example:"Algorithms"`
	MaxCapacity       int              `json:"maxCapacity" example:"2"`
	CurrentEnrollment int              `json:"currentEnrollment" example:"1"`
	AvailableSpots    int              `json:"availableSpots" example:"1"`
	IsFull            bool             `json:"isFull" example:"false"`
	Students          []StudentSummary `json:"students,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// CourseListResponse is one page of courses.
type CourseListResponse struct {
	Courses    []CourseResponse `json:"courses"`
	Pagination PaginationInfo   `json:"pagination"`
}

// EnrollmentRequest identifies the student and course of an enroll or unenroll.
type EnrollmentRequest struct {
	StudentID int64 `json:"studentId" binding:"required,gt=0" example:"1"`
	CourseID  int64 `json:"courseId" binding:"required,gt=0" example:"1"`
}
