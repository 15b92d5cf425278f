package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
	"github.com/noah-isme/case-dashboard-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type filteredCases interface {
	Filtered(view models.ViewState) ([]models.Case, error)
	Rows(cases []models.Case) []dto.CaseRow
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	ContentType() string
}

// ExportResult is a rendered export ready to be sent as an attachment.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

// ExportService renders the filtered and sorted case set as CSV or PDF.
type ExportService struct {
	cases  filteredCases
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(cases filteredCases, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{cases: cases, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

var caseExportHeaders = []string{
	"Case ID", "Patient ID", "Patient Name", "Age / Sex", "Department", "Bed No",
	"Resident", "Faculty", "Primary Diagnosis", "Status", "Review", "Submitted",
}

// Generate renders every case matching view, across all pages.
func (s *ExportService) Generate(ctx context.Context, view models.ViewState, format ExportFormat) (*ExportResult, error) {
	cases, err := s.cases.Filtered(view)
	if err != nil {
		return nil, err
	}
	dataset := buildCaseDataset(s.cases.Rows(cases))

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = s.csv.ContentType()
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, exportTitle(view, len(cases)))
		contentType = s.pdf.ContentType()
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		s.logger.Error("export render failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportResult{
		Filename:    s.buildFilename(view, format),
		ContentType: contentType,
		Payload:     payload,
		Rows:        len(cases),
	}, nil
}

func buildCaseDataset(rows []dto.CaseRow) export.Dataset {
	data := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, map[string]string{
			"Case ID":           row.CaseID,
			"Patient ID":        row.PatientID,
			"Patient Name":      row.PatientName,
			"Age / Sex":         row.AgeSex,
			"Department":        row.Department,
			"Bed No":            row.Bed,
			"Resident":          row.Resident,
			"Faculty":           row.Faculty,
			"Primary Diagnosis": row.PrimaryDiagnosis,
			"Status":            row.StatusLabel,
			"Review":            row.ReviewLabel,
			"Submitted":         row.Submitted,
		})
	}
	return export.Dataset{Headers: caseExportHeaders, Rows: data}
}

func exportTitle(view models.ViewState, total int) string {
	parts := []string{fmt.Sprintf("Cases (%d)", total)}
	if view.Status != "" {
		parts = append(parts, "status "+string(view.Status))
	}
	if view.Range != "" && view.Range != models.RangeAll {
		parts = append(parts, "range "+string(view.Range))
	}
	if view.Resident != "" {
		parts = append(parts, "resident "+view.Resident)
	}
	if view.Faculty != "" {
		parts = append(parts, "faculty "+view.Faculty)
	}
	if q := strings.TrimSpace(view.Search); q != "" {
		parts = append(parts, fmt.Sprintf("search %q", q))
	}
	return strings.Join(parts, " | ")
}

func (s *ExportService) buildFilename(view models.ViewState, format ExportFormat) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	scope := "all"
	if view.Status != "" {
		scope = string(view.Status)
	}
	if view.Range != "" && view.Range != models.RangeAll {
		scope += "_" + string(view.Range)
	}
	return fmt.Sprintf("cases_%s_%s.%s", sanitizeFilename(scope), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
