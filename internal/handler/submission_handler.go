package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

type submissionService interface {
	Submit(ctx context.Context, caller *models.Identity, assignmentID string, req models.SubmitRequest) (*models.Submission, error)
	Grade(ctx context.Context, caller *models.Identity, submissionID string, req models.GradeSubmissionRequest) (*models.Submission, error)
	List(ctx context.Context, caller *models.Identity, assignmentID string) ([]models.SubmissionDetail, error)
}

// SubmissionHandler exposes submission and grading endpoints.
type SubmissionHandler struct {
	service submissionService
}

// NewSubmissionHandler constructs SubmissionHandler.
func NewSubmissionHandler(service submissionService) *SubmissionHandler {
	return &SubmissionHandler{service: service}
}

// Submit godoc
// @Summary Submit or resubmit an assignment
// @Tags Student
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body models.SubmitRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /student/assignments/{id}/submit [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.SubmitRequest
	if !bindJSON(c, &req) {
		return
	}
	submission, err := h.service.Submit(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// Grade godoc
// @Summary Grade a submission
// @Tags Instructor
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body models.GradeSubmissionRequest true "Marks payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/submissions/{id}/grade [post]
func (h *SubmissionHandler) Grade(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.GradeSubmissionRequest
	if !bindJSON(c, &req) {
		return
	}
	submission, err := h.service.Grade(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submission, nil)
}

// List godoc
// @Summary Submissions for an assignment with student totals
// @Tags Instructor
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/assignments/{id}/submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	submissions, err := h.service.List(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, submissions, nil)
}
