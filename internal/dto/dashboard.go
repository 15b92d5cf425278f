package dto

import (
	"time"

	"github.com/noah-isme/case-dashboard-api/internal/models"
)

// DashboardResponse captures the stat tiles and header of the dashboard.
type DashboardResponse struct {
	Stats       models.Stats          `json:"stats"`
	LocalCounts map[models.Status]int `json:"localCounts"`
	LastUpdated string                `json:"lastUpdated"`
	Version     string                `json:"version"`
	Meta        *models.UpstreamMeta  `json:"meta,omitempty"`
	MetaInfo    string                `json:"metaInfo"`
	CasesLoaded bool                  `json:"casesLoaded"`
	TotalCases  int                   `json:"totalCases"`
	LoadedAt    time.Time             `json:"loadedAt"`
	Links       DashboardLinks        `json:"links"`
}

// DashboardLinks are the outbound shortcuts shown in the header.
type DashboardLinks struct {
	AddCaseForm  string `json:"addCaseForm,omitempty"`
	ResidentView string `json:"residentView,omitempty"`
	FacultyView  string `json:"facultyView,omitempty"`
}

// RefreshResponse summarises a completed refresh.
type RefreshResponse struct {
	Version     string    `json:"version"`
	TotalCases  int       `json:"totalCases"`
	CasesLoaded bool      `json:"casesLoaded"`
	LoadedAt    time.Time `json:"loadedAt"`
	Shared      bool      `json:"shared"`
}
