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

type caseService interface {
	List(ctx context.Context, req dto.ListCasesRequest) (*dto.CaseListResponse, *models.Pagination, error)
	Get(ctx context.Context, caseID string) (*dto.CaseDetailResponse, error)
}

// CaseHandler serves the case table and the detail view.
type CaseHandler struct {
	service caseService
}

// NewCaseHandler constructs the handler.
func NewCaseHandler(service caseService) *CaseHandler {
	return &CaseHandler{service: service}
}

// List godoc
// @Summary List cases
// @Description Filters, sorts and paginates the current snapshot.
// @Tags Cases
// @Produce json
// @Param q query string false "Search over case ID, patient ID and patient name"
// @Param status query string false "approved, not_approved, onhold or pending"
// @Param resident query string false "Resident name"
// @Param faculty query string false "Faculty name"
// @Param range query string false "all, today, 7d or 30d"
// @Param sort query string false "Sort key"
// @Param dir query string false "asc or desc"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /cases [get]
func (h *CaseHandler) List(c *gin.Context) {
	var req dto.ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	result, pagination, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, pagination)
}

// Get godoc
// @Summary Case detail
// @Tags Cases
// @Produce json
// @Param caseId path string true "Case ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cases/{caseId} [get]
func (h *CaseHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("caseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}
