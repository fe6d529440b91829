package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unistud/internal/app/models/dto"
	"github.com/yigit/unistud/internal/app/services"
	"github.com/yigit/unistud/internal/middleware"
)

// EnrollmentController moves students in and out of courses
type EnrollmentController struct {
	enrollmentService *services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

// Enroll adds a student to a course
// @Summary Enroll a student in a course
// @Description Fails when the student or course is missing, the student is already enrolled, or the course is full
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollmentRequest true "Student and course"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student enrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or already enrolled"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 409 {object} dto.ErrorResponse "Course is full"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/enroll [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.enrollmentService.Enroll(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Unenroll removes a student from a course
// @Summary Unenroll a student from a course
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollmentRequest true "Student and course"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student unenrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request or not enrolled"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students/unenroll [post]
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	var req dto.EnrollmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.enrollmentService.Unenroll(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}
