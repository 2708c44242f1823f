package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-api/internal/middleware"
	"github.com/noah-isme/lms-api/internal/models"
	appErrors "github.com/noah-isme/lms-api/pkg/errors"
	"github.com/noah-isme/lms-api/pkg/response"
)

type identityService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Me(ctx context.Context, caller *models.Identity) (*models.User, error)
	ListUsers(ctx context.Context, caller *models.Identity, filter models.UserFilter) ([]models.User, *models.Pagination, error)
	Approve(ctx context.Context, caller *models.Identity, userID string) error
	Delete(ctx context.Context, caller *models.Identity, userID string) error
}

// IdentityHandler exposes registration and account administration.
type IdentityHandler struct {
	service identityService
}

// NewIdentityHandler constructs IdentityHandler.
func NewIdentityHandler(service identityService) *IdentityHandler {
	return &IdentityHandler{service: service}
}

// Register godoc
// @Summary Register the authenticated subject
// @Description Creates the local account for the identity-provider subject. Name and email default to the token claims.
// @Tags Identity
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /auth/register [post]
func (h *IdentityHandler) Register(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	req.UserID = claims.UserID()
	if strings.TrimSpace(req.Email) == "" {
		req.Email = claims.Email
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = claims.Name
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// Me godoc
// @Summary Current account
// @Tags Identity
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /me [get]
func (h *IdentityHandler) Me(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	user, err := h.service.Me(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user, nil)
}

// ListUsers godoc
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Param role query string false "Filter by role"
// @Param approved query bool false "Filter by approval state"
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/users [get]
func (h *IdentityHandler) ListUsers(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	filter := models.UserFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "limit", 20),
	}
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role := models.UserRole(strings.ToLower(raw))
		if !role.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid role filter"))
			return
		}
		filter.Role = &role
	}
	if raw := c.Query("approved"); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "approved must be a boolean"))
			return
		}
		filter.Approved = &approved
	}

	users, pagination, err := h.service.ListUsers(c.Request.Context(), caller, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users, pagination)
}

// Approve godoc
// @Summary Approve a pending account
// @Tags Admin
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/users/{id}/approve [post]
func (h *IdentityHandler) Approve(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Approve(c.Request.Context(), caller, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"user_id": c.Param("id"), "approved": true}, nil)
}

// Delete godoc
// @Summary Delete an account
// @Tags Admin
// @Param id path string true "User ID"
// @Success 204
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *IdentityHandler) Delete(c *gin.Context) {
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
