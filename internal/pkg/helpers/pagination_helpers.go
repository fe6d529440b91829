package helpers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unistud/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1
)

// PageRequest is a parsed, clamped pagination request.
type PageRequest struct {
	Page      int
	Size      int
	SortBy    string
	Direction string
}

// Offset returns the SQL offset for the 1-based page.
func (p PageRequest) Offset() uint64 {
	offset, _ := CalculateOffsetLimit(p.Page, p.Size)
	return offset
}

// Limit returns the SQL limit.
func (p PageRequest) Limit() uint64 {
	_, limit := CalculateOffsetLimit(p.Page, p.Size)
	return uint64(limit)
}

// Descending reports whether the sort direction is descending.
func (p PageRequest) Descending() bool {
	return strings.EqualFold(p.Direction, "desc")
}

// CalculateOffsetLimit calculates the offset and limit for SQL queries based on 1-based page index.
func CalculateOffsetLimit(page, size int) (offset uint64, limit int) {
	if size <= 0 || size > MaxPageSize {
		limit = DefaultPageSize
	} else {
		limit = size
	}

	if page < 1 {
		page = DefaultPage
	}

	offset = uint64((page - 1) * limit)
	return offset, limit
}

// NewPaginationInfo creates a standard PaginationInfo DTO.
// page should be the 1-based page number.
func NewPaginationInfo(totalItems int64, page, size int) dto.PaginationInfo {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = int(math.Ceil(float64(totalItems) / float64(size)))
	} else if page == 1 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: page,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
		HasNext:     page < totalPages,
	}
}

// ParsePaginationParams extracts page, size, sort and direction from the query string.
// Invalid values fall back to defaults instead of failing the request.
func ParsePaginationParams(c *gin.Context, defaultSort string) PageRequest {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	direction := strings.ToLower(c.DefaultQuery("direction", "asc"))
	if direction != "asc" && direction != "desc" {
		direction = "asc"
	}

	return PageRequest{
		Page:      page,
		Size:      size,
		SortBy:    c.DefaultQuery("sort", defaultSort),
		Direction: direction,
	}
}
