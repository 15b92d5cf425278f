package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
)

const submittedLayout = "2006-01-02 15:04"

func orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return dto.Placeholder
	}
	return v
}

func ageSex(c models.Case) string {
	return orPlaceholder(c.Get(models.FieldAge)) + " / " + orPlaceholder(c.Get(models.FieldSex))
}

func formatSubmitted(c models.Case, loc *time.Location) string {
	if c.SubmittedTS != 0 {
		return time.UnixMilli(c.SubmittedTS).In(loc).Format(submittedLayout)
	}
	return orPlaceholder(c.Get(models.FieldSubmitted))
}

// toCaseRow renders a case for the table. Blank cells carry the placeholder.
func toCaseRow(c models.Case, loc *time.Location) dto.CaseRow {
	return dto.CaseRow{
		CaseID:           orPlaceholder(c.Get(models.FieldCaseID)),
		PatientID:        orPlaceholder(c.Get(models.FieldPatientID)),
		PatientName:      orPlaceholder(c.Get(models.FieldPatientName)),
		AgeSex:           ageSex(c),
		Department:       orPlaceholder(c.Get(models.FieldDept)),
		Bed:              orPlaceholder(c.Get(models.FieldBed)),
		Resident:         orPlaceholder(c.Get(models.FieldResident)),
		Faculty:          orPlaceholder(c.Get(models.FieldFaculty)),
		PrimaryDiagnosis: orPlaceholder(c.Get(models.FieldPrimaryDx)),
		Status:           c.Status,
		StatusLabel:      c.Status.Label(),
		Review:           c.Review,
		ReviewLabel:      c.Review.Label(),
		Submitted:        formatSubmitted(c, loc),
		SubmittedTS:      c.SubmittedTS,
	}
}

func toCaseRows(cases []models.Case, loc *time.Location) []dto.CaseRow {
	rows := make([]dto.CaseRow, 0, len(cases))
	for _, c := range cases {
		rows = append(rows, toCaseRow(c, loc))
	}
	return rows
}

// toCaseDetail builds the detail view. Pairs whose value is blank are dropped.
func toCaseDetail(c models.Case, rule string) *dto.CaseDetailResponse {
	candidates := []dto.DetailPair{
		{Label: "Case ID", Value: c.Get(models.FieldCaseID)},
		{Label: "Patient ID", Value: c.Get(models.FieldPatientID)},
		{Label: "Patient Name", Value: c.Get(models.FieldPatientName)},
		{Label: "Age / Sex", Value: ageSex(c)},
		{Label: "Department", Value: c.Get(models.FieldDept)},
		{Label: "Bed No", Value: c.Get(models.FieldBed)},
		{Label: "Primary Diagnosis", Value: c.Get(models.FieldPrimaryDx)},
		{Label: "Diagnosis", Value: c.Get(models.FieldDiagnosis)},
		{Label: "Management", Value: c.Get(models.FieldManagement)},
		{Label: "Submitted", Value: c.Get(models.FieldSubmitted)},
	}
	pairs := make([]dto.DetailPair, 0, len(candidates))
	for _, p := range candidates {
		if strings.TrimSpace(p.Value) != "" {
			pairs = append(pairs, p)
		}
	}

	title := strings.Join([]string{
		orPlaceholder(c.Get(models.FieldPatientID)),
		orPlaceholder(c.Get(models.FieldPatientName)),
		c.Status.Label(),
	}, " • ")

	return &dto.CaseDetailResponse{
		Title:        title,
		Pairs:        pairs,
		Status:       c.Status,
		StatusLabel:  c.Status.Label(),
		Review:       c.Review,
		ReviewLabel:  c.Review.Label(),
		ClassifiedBy: rule,
		SubmittedTS:  c.SubmittedTS,
		Raw:          c.Record,
	}
}

// toFilterOptions sorts names and labels each with its count.
func toFilterOptions(counts map[string]int) []dto.FilterOption {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	options := make([]dto.FilterOption, 0, len(names))
	for _, name := range names {
		options = append(options, dto.FilterOption{
			Value: name,
			Label: fmt.Sprintf("%s (%d)", name, counts[name]),
			Count: counts[name],
		})
	}
	return options
}

// metaInfo is the short version banner shown next to the title.
func metaInfo(version string, meta *models.UpstreamMeta) string {
	if meta != nil && meta.Version != "" {
		return fmt.Sprintf("• %s • cache %ds", meta.Version, meta.CacheSeconds)
	}
	if version != "" {
		return "• " + version
	}
	return ""
}
