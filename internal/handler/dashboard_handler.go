package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/middleware"
	"github.com/noah-isme/case-dashboard-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*dto.DashboardResponse, error)
	FilterOptions(ctx context.Context) (*dto.FilterOptionsResponse, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Dashboard header and stat tiles
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "cases_loaded", summary.CasesLoaded)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// FilterOptions godoc
// @Summary Filter bar choices
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /filters [get]
func (h *DashboardHandler) FilterOptions(c *gin.Context) {
	options, err := h.service.FilterOptions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, options, nil)
}
