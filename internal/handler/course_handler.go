package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, caller *models.Identity, req models.CreateCourseRequest) (*models.Course, error)
	Delete(ctx context.Context, caller *models.Identity, id string) error
	AssignInstructor(ctx context.Context, caller *models.Identity, courseID string, req models.AssignInstructorRequest) error
	RemoveInstructor(ctx context.Context, caller *models.Identity, courseID, instructorID string) error
	ListInstructors(ctx context.Context, caller *models.Identity, courseID string) ([]models.CourseInstructor, error)
	TaughtCourses(ctx context.Context, caller *models.Identity) ([]models.InstructorCourse, error)
}

// CourseHandler exposes the course catalogue and instructor assignment.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Create godoc
// @Summary Create course
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.CreateCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.service.Create(c.Request.Context(), caller, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Delete godoc
// @Summary Delete course
// @Tags Admin
// @Param id path string true "Course ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignInstructor godoc
// @Summary Assign instructor to course
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.AssignInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/courses/{id}/instructors [post]
func (h *CourseHandler) AssignInstructor(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.AssignInstructorRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.service.AssignInstructor(c.Request.Context(), caller, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"course_id": c.Param("id"), "instructor_id": req.InstructorID})
}

// RemoveInstructor godoc
// @Summary Remove instructor from course
// @Tags Admin
// @Param id path string true "Course ID"
// @Param instructorId path string true "Instructor ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/courses/{id}/instructors/{instructorId} [delete]
func (h *CourseHandler) RemoveInstructor(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	if err := h.service.RemoveInstructor(c.Request.Context(), caller, c.Param("id"), c.Param("instructorId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListInstructors godoc
// @Summary List course instructors
// @Tags Admin
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/courses/{id}/instructors [get]
func (h *CourseHandler) ListInstructors(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	instructors, err := h.service.ListInstructors(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instructors, nil)
}

// Taught godoc
// @Summary Courses taught by the caller
// @Tags Instructor
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/courses [get]
func (h *CourseHandler) Taught(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	courses, err := h.service.TaughtCourses(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
