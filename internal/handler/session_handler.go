package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
	"github.com/noah-isme/case-dashboard-api/pkg/response"
)

type sessionService interface {
	Create(ctx context.Context) (*dto.SessionResponse, *models.Pagination, error)
	Get(ctx context.Context, id string) (*dto.SessionResponse, *models.Pagination, error)
	Apply(ctx context.Context, id string, req dto.SessionActionRequest) (*dto.SessionResponse, *models.Pagination, error)
	Delete(ctx context.Context, id string)
}

// SessionHandler exposes stateful dashboard views.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(service sessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Create godoc
// @Summary Start a dashboard session
// @Tags Sessions
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	session, pagination, err := h.service.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, session, pagination)
}

// Get godoc
// @Summary Current view and page of a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, pagination, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, pagination)
}

// Apply godoc
// @Summary Apply a user action to a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.SessionActionRequest true "Action"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/actions [post]
func (h *SessionHandler) Apply(c *gin.Context) {
	var req dto.SessionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	session, pagination, err := h.service.Apply(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, pagination)
}

// Delete godoc
// @Summary Drop a session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	h.service.Delete(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}
