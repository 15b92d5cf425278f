package dto

import "github.com/noah-isme/case-dashboard-api/internal/models"

// Placeholder is shown for any attribute that resolves to nothing.
const Placeholder = "—"

// ListCasesRequest carries the stateless query parameters of the case list.
type ListCasesRequest struct {
	Query    string `form:"q"`
	Status   string `form:"status" validate:"omitempty,oneof=approved not_approved onhold pending"`
	Resident string `form:"resident"`
	Faculty  string `form:"faculty"`
	Range    string `form:"range" validate:"omitempty,oneof=all today 7d 30d"`
	Sort     string `form:"sort" validate:"omitempty,sort_key"`
	Dir      string `form:"dir" validate:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1"`
}

// CaseRow is one line of the case table.
type CaseRow struct {
	CaseID           string        `json:"caseId"`
	PatientID        string        `json:"patientId"`
	PatientName      string        `json:"patientName"`
	AgeSex           string        `json:"ageSex"`
	Department       string        `json:"department"`
	Bed              string        `json:"bed"`
	Resident         string        `json:"resident"`
	Faculty          string        `json:"faculty"`
	PrimaryDiagnosis string        `json:"primaryDiagnosis"`
	Status           models.Status `json:"status"`
	StatusLabel      string        `json:"statusLabel"`
	Review           models.Review `json:"review"`
	ReviewLabel      string        `json:"reviewLabel"`
	Submitted        string        `json:"submitted"`
	SubmittedTS      int64         `json:"submittedTs"`
}

// CaseListResponse is a computed page plus the view that produced it.
type CaseListResponse struct {
	Items []CaseRow        `json:"items"`
	View  models.ViewState `json:"view"`
}

// DetailPair is one labelled value of the case detail view.
type DetailPair struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// CaseDetailResponse is the payload of the case detail view.
type CaseDetailResponse struct {
	Title        string        `json:"title"`
	Pairs        []DetailPair  `json:"pairs"`
	Status       models.Status `json:"status"`
	StatusLabel  string        `json:"statusLabel"`
	Review       models.Review `json:"review"`
	ReviewLabel  string        `json:"reviewLabel"`
	ClassifiedBy string        `json:"classifiedBy"`
	SubmittedTS  int64         `json:"submittedTs"`
	Raw          models.Record `json:"raw"`
}

// FilterOption is a selectable resident or faculty entry.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatusOption is a selectable status entry.
type StatusOption struct {
	Value models.Status `json:"value"`
	Label string        `json:"label"`
}

// FilterOptionsResponse lists every choice the filter bar offers.
type FilterOptionsResponse struct {
	Residents []FilterOption   `json:"residents"`
	Faculty   []FilterOption   `json:"faculty"`
	Statuses  []StatusOption   `json:"statuses"`
	Ranges    []models.Range   `json:"ranges"`
	SortKeys  []models.SortKey `json:"sortKeys"`
}
