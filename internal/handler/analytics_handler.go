package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

type aggregationService interface {
	MyTotals(ctx context.Context, caller *models.Identity, courseID string) (models.CourseTotals, error)
	CourseRollup(ctx context.Context, caller *models.Identity, courseID string) (*models.CourseRollup, error)
	PlatformOverview(ctx context.Context, caller *models.Identity) (*models.PlatformOverview, error)
	CourseStats(ctx context.Context, caller *models.Identity) ([]models.CourseStat, error)
	Dashboard(ctx context.Context, caller *models.Identity) (*models.Dashboard, error)
}

// AnalyticsHandler exposes totals, rollups and platform analytics.
type AnalyticsHandler struct {
	service aggregationService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(service aggregationService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// MyTotals godoc
// @Summary The caller's running totals in a course
// @Tags Student
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /student/courses/{id}/totals [get]
func (h *AnalyticsHandler) MyTotals(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	totals, err := h.service.MyTotals(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, totals, nil)
}

// Rollup godoc
// @Summary Enrollment counts and grade distribution of a course
// @Tags Analytics
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/courses/{id}/rollup [get]
func (h *AnalyticsHandler) Rollup(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	rollup, err := h.service.CourseRollup(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rollup, nil)
}

// Overview godoc
// @Summary Platform-wide totals
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	overview, err := h.service.PlatformOverview(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Courses godoc
// @Summary Per-course enrollment statistics
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/courses [get]
func (h *AnalyticsHandler) Courses(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	stats, err := h.service.CourseStats(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Dashboard godoc
// @Summary Role-specific dashboard counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	dashboard, err := h.service.Dashboard(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
