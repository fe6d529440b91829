package models

import (
	"strings"
	"time"
)

// Student defines the student model based on the 'students' table
type Student struct {
	ID           int64     `json:"id" db:"id" example:"1"`
	FirstName    string    `json:"firstName" db:"first_name" example:"Ada"`
	LastName     string    `json:"lastName" db:"last_name" example:"Lovelace"`
	Email        string    `json:"email" db:"email" example:"ada@uni.example.org"`
	PasswordHash *string   `json:"-" db:"password_hash"` // NULL for students created without credentials
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name.
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// HasPassword reports whether the student can log in.
func (s *Student) HasPassword() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}
