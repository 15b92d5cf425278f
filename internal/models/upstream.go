package models

import "time"

// Stats are the headline counters computed by the upstream sheet.
type Stats struct {
	Total       int `json:"total"`
	Approved    int `json:"approved"`
	Pending     int `json:"pending"`
	OnHold      int `json:"onhold"`
	NotApproved int `json:"not_approved"`
}

// UpstreamMeta describes the upstream deployment.
type UpstreamMeta struct {
	Version      string `json:"version"`
	CacheSeconds int    `json:"cacheSeconds"`
}

// Ping is the upstream liveness answer.
type Ping struct {
	OK      bool   `json:"ok"`
	Version string `json:"version"`
}

// StatsPayload is the decoded body of the stats action.
type StatsPayload struct {
	Stats         Stats          `json:"stats"`
	LastUpdated   string         `json:"lastUpdated"`
	Meta          *UpstreamMeta  `json:"meta,omitempty"`
	ResidentStats map[string]int `json:"residentStats"`
	FacultyStats  map[string]int `json:"facultyStats"`
}

// CasesPayload is the decoded body of the data action. Some upstream
// deployments answer the data action with stats attached; Stats is set then.
type CasesPayload struct {
	Cases []Record      `json:"cases"`
	Stats *StatsPayload `json:"stats,omitempty"`
}

// Snapshot is one published refresh: stats plus the classified cases. A
// published snapshot is never modified; Generation changes whenever a new
// case set is published.
type Snapshot struct {
	Generation  uint64       `json:"-"`
	Stats       StatsPayload `json:"stats"`
	Cases       []Case       `json:"-"`
	RawCases    []Record     `json:"cases"`
	Version     string       `json:"version"`
	LoadedAt    time.Time    `json:"loadedAt"`
	CasesLoaded bool         `json:"casesLoaded"`
}
