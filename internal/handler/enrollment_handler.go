package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/internal/service"
	"github.com/noah-isme/lms-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, caller *models.Identity, courseID string) (*models.Enrollment, error)
	ListMine(ctx context.Context, caller *models.Identity, status string) ([]models.EnrollmentDetail, error)
	Grade(ctx context.Context, caller *models.Identity, courseID string, req models.GradeEnrollmentRequest) (*models.Enrollment, error)
	Drop(ctx context.Context, caller *models.Identity, courseID string, req models.DropEnrollmentRequest) error
	Roster(ctx context.Context, caller *models.Identity, courseID string) ([]models.RosterEntry, error)
}

type gradebookExporter interface {
	Gradebook(ctx context.Context, caller *models.Identity, courseID, format string) (*service.ExportResult, error)
}

// EnrollmentHandler exposes the enrollment ledger.
type EnrollmentHandler struct {
	enrollments enrollmentService
	exporter    gradebookExporter
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, exporter gradebookExporter) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, exporter: exporter}
}

// Enroll godoc
// @Summary Enroll in a course
// @Tags Student
// @Produce json
// @Param id path string true "Course ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Mine godoc
// @Summary List the caller's enrollments
// @Tags Student
// @Produce json
// @Param status query string false "ongoing, completed or dropped"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /me/enrollments [get]
func (h *EnrollmentHandler) Mine(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	enrollments, err := h.enrollments.ListMine(c.Request.Context(), caller, strings.TrimSpace(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, nil)
}

// Grade godoc
// @Summary Record a final course grade
// @Tags Instructor
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.GradeEnrollmentRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/courses/{id}/grade [post]
func (h *EnrollmentHandler) Grade(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.GradeEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	middleware.SetAuditDetail(c, "student_id", req.StudentID)
	enrollment, err := h.enrollments.Grade(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Drop godoc
// @Summary Drop a student from a course
// @Tags Instructor
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.DropEnrollmentRequest true "Drop payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/courses/{id}/drop [post]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.DropEnrollmentRequest
	if !bindJSON(c, &req) {
		return
	}
	middleware.SetAuditDetail(c, "student_id", req.StudentID)
	if err := h.enrollments.Drop(c.Request.Context(), caller, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"course_id": c.Param("id"), "student_id": req.StudentID, "status": models.EnrollmentStatusDropped}, nil)
}

// Roster godoc
// @Summary Students of a taught course with running totals
// @Tags Instructor
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/courses/{id}/students [get]
func (h *EnrollmentHandler) Roster(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	roster, err := h.enrollments.Roster(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil, map[string]interface{}{"count": len(roster)})
}

// Export godoc
// @Summary Download the course gradebook
// @Tags Instructor
// @Produce octet-stream
// @Param id path string true "Course ID"
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/courses/{id}/students/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	result, err := h.exporter.Gradebook(c.Request.Context(), caller, c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.FileName, result.ContentType, result.Body)
}
