package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

type assignmentService interface {
	Create(ctx context.Context, caller *models.Identity, courseID string, req models.CreateAssignmentRequest) (*models.Assignment, error)
	ListForInstructor(ctx context.Context, caller *models.Identity, courseID string) ([]models.Assignment, error)
	ListForStudent(ctx context.Context, caller *models.Identity, courseID string) ([]models.StudentAssignment, error)
	Get(ctx context.Context, caller *models.Identity, id string) (*models.Assignment, error)
}

// AssignmentHandler exposes the assignment catalog.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs AssignmentHandler.
func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Create godoc
// @Summary Publish an assignment
// @Tags Instructor
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/courses/{id}/assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.CreateAssignmentRequest
	if !bindJSON(c, &req) {
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// ListForInstructor godoc
// @Summary Assignments of a taught course
// @Tags Instructor
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/courses/{id}/assignments [get]
func (h *AssignmentHandler) ListForInstructor(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	assignments, err := h.service.ListForInstructor(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// ListForStudent godoc
// @Summary Assignments of an enrolled course with the caller's submissions
// @Tags Student
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /student/courses/{id}/assignments [get]
func (h *AssignmentHandler) ListForStudent(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	assignments, err := h.service.ListForStudent(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Get godoc
// @Summary Assignment detail
// @Tags Courses
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	assignment, err := h.service.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}
