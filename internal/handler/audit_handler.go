package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/models"
	"github.com/noah-isme/lms-api/pkg/response"
)

type auditService interface {
	Recent(ctx context.Context, caller *models.Identity, limit int) ([]models.AuditLog, error)
}

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary Recent audit entries
// @Tags Admin
// @Produce json
// @Param limit query int false "Maximum entries (default 50)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	logs, err := h.service.Recent(c.Request.Context(), caller, queryInt(c, "limit", 50))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}
