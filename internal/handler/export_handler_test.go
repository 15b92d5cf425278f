package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
	"github.com/noah-isme/case-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
)

type fakeViewBuilder struct {
	lastReq dto.ListCasesRequest
	err     error
}

func (f *fakeViewBuilder) ViewFromRequest(req dto.ListCasesRequest) (models.ViewState, error) {
	f.lastReq = req
	if f.err != nil {
		return models.ViewState{}, f.err
	}
	view := models.DefaultViewState()
	view.Status = models.Status(req.Status)
	return view, nil
}

type fakeExporter struct {
	view   models.ViewState
	format service.ExportFormat
	err    error
}

func (f *fakeExporter) Generate(_ context.Context, view models.ViewState, format service.ExportFormat) (*service.ExportResult, error) {
	f.view = view
	f.format = format
	if f.err != nil {
		return nil, f.err
	}
	return &service.ExportResult{Filename: "cases_approved_20240310_120000.pdf", ContentType: "application/pdf", Payload: []byte("%PDF")}, nil
}

func TestExportHandlerStreamsAttachment(t *testing.T) {
	views := &fakeViewBuilder{}
	exporter := &fakeExporter{}
	handler := NewExportHandler(views, exporter)
	c, rec := newTestContext(http.MethodGet, "/export?format=PDF&status=approved")

	handler.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatPDF, exporter.format)
	assert.Equal(t, models.StatusApproved, exporter.view.Status)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cases_approved_20240310_120000.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "%PDF", rec.Body.String())
}

func TestExportHandlerDefaultsToCSV(t *testing.T) {
	exporter := &fakeExporter{}
	handler := NewExportHandler(&fakeViewBuilder{}, exporter)
	c, rec := newTestContext(http.MethodGet, "/export")

	handler.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.ExportFormatCSV, exporter.format)
}

func TestExportHandlerValidation(t *testing.T) {
	handler := NewExportHandler(&fakeViewBuilder{}, &fakeExporter{})
	c, rec := newTestContext(http.MethodGet, "/export?format=xlsx")
	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	handler = NewExportHandler(&fakeViewBuilder{err: appErrors.Clone(appErrors.ErrValidation, "invalid query parameters")}, &fakeExporter{})
	c, rec = newTestContext(http.MethodGet, "/export?sort=nope")
	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHandlerNotLoaded(t *testing.T) {
	handler := NewExportHandler(&fakeViewBuilder{}, &fakeExporter{err: appErrors.ErrNotLoaded})
	c, rec := newTestContext(http.MethodGet, "/export?format=csv")

	handler.Export(c)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
