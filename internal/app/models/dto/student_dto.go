package dto

import "time"

// UpdateStudentRequest replaces a student's profile fields.
type UpdateStudentRequest struct {
	FirstName string `json:"firstName" binding:"required,personname" example:"Ada"`
	LastName  string `json:"lastName" binding:"required,personname" example:"Lovelace"`
	Email     string `json:"email" binding:"required,email,mailbox,max=255" example:"ada@uni.example.org"`
}

// StudentSummary is a student as listed inside a course.
type StudentSummary struct {
	ID        int64  `json:"id" example:"1"`
	FirstName string `json:"firstName" example:"Ada"`
	LastName  string `json:"lastName" example:"Lovelace"`
	Email     string `json:"email" example:"ada@uni.example.org"`
}

// StudentResponse is a student together with the courses they attend.
type StudentResponse struct {
	ID        int64            `json:"id" example:"1"`
	FirstName string           `json:"firstName" example:"Ada"`
	LastName  string           `json:"lastName" example:"Lovelace"`
	Email     string           `json:"email" example:"ada@uni.example.org"`
	Courses   []CourseResponse `json:"courses"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// StudentListResponse is one page of students.
type StudentListResponse struct {
	Students   []StudentResponse `json:"students"`
	Pagination PaginationInfo    `json:"pagination"`
}
