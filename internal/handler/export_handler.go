package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
	"github.com/noah-isme/case-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
	"github.com/noah-isme/case-dashboard-api/pkg/response"
)

type viewBuilder interface {
	ViewFromRequest(req dto.ListCasesRequest) (models.ViewState, error)
}

type exportGenerator interface {
	Generate(ctx context.Context, view models.ViewState, format service.ExportFormat) (*service.ExportResult, error)
}

// ExportHandler renders the filtered case set as a download.
type ExportHandler struct {
	views   viewBuilder
	exports exportGenerator
}

// NewExportHandler constructs the handler.
func NewExportHandler(views viewBuilder, exports exportGenerator) *ExportHandler {
	return &ExportHandler{views: views, exports: exports}
}

// Export godoc
// @Summary Export filtered cases
// @Description Every case matching the filters, in display order, not just the current page.
// @Tags Cases
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv (default) or pdf"
// @Param q query string false "Search"
// @Param status query string false "Status"
// @Param resident query string false "Resident name"
// @Param faculty query string false "Faculty name"
// @Param range query string false "all, today, 7d or 30d"
// @Param sort query string false "Sort key"
// @Param dir query string false "asc or desc"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ExportFormatCSV))))
	if format != service.ExportFormatCSV && format != service.ExportFormatPDF {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	var req dto.ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	view, err := h.views.ViewFromRequest(req)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.exports.Generate(c.Request.Context(), view, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, result.Filename, result.ContentType, result.Payload)
}
