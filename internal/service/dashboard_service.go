package service

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
)

type snapshotSource interface {
	Snapshot() (*models.Snapshot, error)
	LocalCounts() map[models.Status]int
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	Links dto.DashboardLinks
}

// DashboardService composes the header, stat tiles and filter bar.
type DashboardService struct {
	cases  snapshotSource
	logger *zap.Logger
	cfg    DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Cases  snapshotSource
	Logger *zap.Logger
	Config DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{cases: params.Cases, logger: logger, cfg: params.Config}
}

// Summary returns the stat tiles of the current snapshot. Stats are served
// even when the case list failed to load.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, error) {
	snap, err := s.cases.Snapshot()
	if err != nil {
		return nil, err
	}
	return &dto.DashboardResponse{
		Stats:       snap.Stats.Stats,
		LocalCounts: s.cases.LocalCounts(),
		LastUpdated: snap.Stats.LastUpdated,
		Version:     snap.Version,
		Meta:        snap.Stats.Meta,
		MetaInfo:    metaInfo(snap.Version, snap.Stats.Meta),
		CasesLoaded: snap.CasesLoaded,
		TotalCases:  len(snap.Cases),
		LoadedAt:    snap.LoadedAt,
		Links:       s.cfg.Links,
	}, nil
}

// FilterOptions lists resident and faculty choices with their counts.
func (s *DashboardService) FilterOptions(ctx context.Context) (*dto.FilterOptionsResponse, error) {
	snap, err := s.cases.Snapshot()
	if err != nil {
		return nil, err
	}

	statuses := make([]dto.StatusOption, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		statuses = append(statuses, dto.StatusOption{Value: st, Label: st.Label()})
	}

	return &dto.FilterOptionsResponse{
		Residents: toFilterOptions(snap.Stats.ResidentStats),
		Faculty:   toFilterOptions(snap.Stats.FacultyStats),
		Statuses:  statuses,
		Ranges:    []models.Range{models.RangeAll, models.RangeToday, models.Range7d, models.Range30d},
		SortKeys:  sortKeys(),
	}, nil
}

func sortKeys() []models.SortKey {
	keys := []models.SortKey{models.SortBySubmitted, models.SortByStatus, models.SortByReview}
	fields := models.SortableFieldKeys()
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return append(keys, fields...)
}
