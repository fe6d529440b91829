package models

import "time"

// Enrollment is one row of the 'student_courses' join table.
type Enrollment struct {
	StudentID  int64     `json:"studentId" db:"student_id"`
	CourseID   int64     `json:"courseId" db:"course_id"`
	EnrolledAt time.Time `json:"enrolledAt" db:"enrolled_at"`
}
