package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

type moduleService interface {
	Create(ctx context.Context, caller *models.Identity, courseID string, req models.CreateModuleRequest) (*models.Module, error)
	List(ctx context.Context, caller *models.Identity, courseID string) ([]models.Module, error)
}

// ModuleHandler exposes course modules.
type ModuleHandler struct {
	service moduleService
}

// NewModuleHandler constructs ModuleHandler.
func NewModuleHandler(service moduleService) *ModuleHandler {
	return &ModuleHandler{service: service}
}

// List godoc
// @Summary List course modules
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /courses/{id}/modules [get]
func (h *ModuleHandler) List(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	modules, err := h.service.List(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, modules, nil)
}

// Create godoc
// @Summary Add a module to a taught course
// @Tags Instructor
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.CreateModuleRequest true "Module payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /instructor/courses/{id}/modules [post]
func (h *ModuleHandler) Create(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	var req models.CreateModuleRequest
	if !bindJSON(c, &req) {
		return
	}
	module, err := h.service.Create(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, module)
}
