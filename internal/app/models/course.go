package models

import "time"

// UnlimitedSpots is reported as available spots for courses without a ceiling.
const UnlimitedSpots = -1

// Course defines the course model based on the 'courses' table.
// MaxCapacity 0 means the course has no enrollment ceiling.
type Course struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Title       string    `json:"title" db:"title" example:"Algorithms"`
	MaxCapacity int       `json:"maxCapacity" db:"max_capacity" example:"50"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// IsUnlimited reports whether the course accepts any number of students.
func (c *Course) IsUnlimited() bool {
	return c.MaxCapacity <= 0
}

// HasAvailableSpots reports whether one more student fits given the current count.
func (c *Course) HasAvailableSpots(current int) bool {
	return c.IsUnlimited() || current < c.MaxCapacity
}

// AvailableSpots returns the remaining seats, or UnlimitedSpots.
func (c *Course) AvailableSpots(current int) int {
	if c.IsUnlimited() {
		return UnlimitedSpots
	}
	if left := c.MaxCapacity - current; left > 0 {
		return left
	}
	return 0
}

// IsFull reports whether no further enrollment is possible.
func (c *Course) IsFull(current int) bool {
	return !c.HasAvailableSpots(current)
}
