package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
)

const snapshotCacheKey = "case-dashboard:snapshot"

type caseUpstream interface {
	Ping(ctx context.Context) (*models.Ping, error)
	Stats(ctx context.Context) (*models.StatsPayload, error)
	Cases(ctx context.Context) (*models.CasesPayload, error)
}

type refreshRecorder interface {
	ObserveRefresh(outcome string, cases int)
}

// CaseServiceConfig tunes refresh and query behaviour.
type CaseServiceConfig struct {
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	DefaultPageSize int
	MaxPageSize     int
	Location        *time.Location
}

// CaseServiceParams groups constructor dependencies.
type CaseServiceParams struct {
	Upstream  caseUpstream
	Cache     *CacheService
	Metrics   refreshRecorder
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    CaseServiceConfig
}

// CaseService owns the classified snapshot. Refreshes are serialised and the
// snapshot pointer is swapped atomically under mu.
type CaseService struct {
	upstream   caseUpstream
	cache      *CacheService
	metrics    refreshRecorder
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        CaseServiceConfig
	classifier *Classifier
	engine     *QueryEngine
	now        func() time.Time

	group      singleflight.Group
	mu         sync.RWMutex
	snapshot   *models.Snapshot
	generation uint64

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewCaseService constructs a CaseService with sane defaults.
func NewCaseService(params CaseServiceParams) *CaseService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = models.DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 500
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	if err := registerViewValidations(validate); err != nil {
		logger.Error("failed to register view validations", zap.Error(err))
	}
	return &CaseService{
		upstream:   params.Upstream,
		cache:      params.Cache,
		metrics:    params.Metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		classifier: NewClassifier(cfg.Location),
		engine:     NewQueryEngine(cfg.Location),
		now:        time.Now,
	}
}

var (
	viewValidationsMu sync.Mutex
	viewValidations   = map[*validator.Validate]bool{}
)

// registerViewValidations adds the case list tags to v once, however many
// services share it.
func registerViewValidations(v *validator.Validate) error {
	viewValidationsMu.Lock()
	defer viewValidationsMu.Unlock()
	if viewValidations[v] {
		return nil
	}
	err := v.RegisterValidation("sort_key", func(fl validator.FieldLevel) bool {
		return models.SortKey(fl.Field().String()).Valid()
	})
	if err != nil {
		return fmt.Errorf("register sort_key: %w", err)
	}
	viewValidations[v] = true
	return nil
}

// Location is the zone used for day boundaries and display.
func (s *CaseService) Location() *time.Location {
	return s.cfg.Location
}

// Refresh runs ping, stats and data in order. Concurrent callers share one
// in-flight sequence; shared reports whether this call joined another one.
// A cases failure still returns the snapshot carrying the fresh stats.
func (s *CaseService) Refresh(ctx context.Context) (*models.Snapshot, bool, error) {
	v, err, shared := s.group.Do("refresh", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	snap, _ := v.(*models.Snapshot)
	return snap, shared, err
}

func (s *CaseService) refresh(ctx context.Context) (*models.Snapshot, error) {
	if s.upstream == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "upstream not configured")
	}
	start := s.now()

	version := ""
	if ping, err := s.upstream.Ping(ctx); err != nil {
		s.logger.Debug("upstream ping failed", zap.Error(err))
	} else if ping.OK {
		version = ping.Version
	}

	stats, err := s.upstream.Stats(ctx)
	if err != nil {
		s.observe(RefreshOutcomeStatsFail)
		s.logger.Error("dashboard refresh aborted", zap.String("stage", "stats"), zap.Error(err))
		return nil, appErrors.WithCause(appErrors.ErrStatsLoad, err, fmt.Sprintf("stats load failed: %v", err))
	}
	if version == "" && stats.Meta != nil {
		version = stats.Meta.Version
	}

	partial := &models.Snapshot{Stats: *stats, Version: version, LoadedAt: s.now()}
	if prev := s.current(); prev != nil {
		partial.Cases = prev.Cases
		partial.RawCases = prev.RawCases
		partial.CasesLoaded = prev.CasesLoaded
	}
	s.publish(partial, false)

	payload, err := s.upstream.Cases(ctx)
	if err != nil {
		s.observe(RefreshOutcomeCasesFail)
		s.logger.Error("dashboard refresh incomplete", zap.String("stage", "data"), zap.Error(err))
		return partial, appErrors.WithCause(appErrors.ErrCasesLoad, err, fmt.Sprintf("cases load failed: %v", err))
	}

	full := &models.Snapshot{
		Stats:       mergeStats(*stats, payload.Stats),
		Cases:       s.classifier.ClassifyAll(payload.Cases),
		RawCases:    payload.Cases,
		Version:     version,
		LoadedAt:    s.now(),
		CasesLoaded: true,
	}
	s.publish(full, true)
	s.persist(ctx, full)
	s.observe(RefreshOutcomeSuccess)

	s.logger.Info("dashboard refreshed",
		zap.Int("cases", len(full.Cases)),
		zap.String("version", version),
		zap.Duration("duration", s.now().Sub(start)),
	)
	return full, nil
}

// mergeStats fills what the stats call left empty from stats attached to the
// data payload.
func mergeStats(primary models.StatsPayload, attached *models.StatsPayload) models.StatsPayload {
	if attached == nil {
		return primary
	}
	if primary.Stats == (models.Stats{}) {
		primary.Stats = attached.Stats
	}
	if primary.LastUpdated == "" {
		primary.LastUpdated = attached.LastUpdated
	}
	if primary.Meta == nil {
		primary.Meta = attached.Meta
	}
	if len(primary.ResidentStats) == 0 {
		primary.ResidentStats = attached.ResidentStats
	}
	if len(primary.FacultyStats) == 0 {
		primary.FacultyStats = attached.FacultyStats
	}
	return primary
}

// Load returns the current snapshot, restoring it from cache or refreshing
// when nothing has been loaded yet. fromCache reports a cache restore.
func (s *CaseService) Load(ctx context.Context) (*models.Snapshot, bool, error) {
	if snap := s.current(); snap != nil && snap.CasesLoaded {
		return snap, false, nil
	}
	if snap, ok := s.restore(ctx); ok {
		return snap, true, nil
	}
	snap, _, err := s.Refresh(ctx)
	return snap, false, err
}

func (s *CaseService) restore(ctx context.Context) (*models.Snapshot, bool) {
	if !s.cache.Enabled() {
		return nil, false
	}
	var cached models.Snapshot
	hit, err := s.cache.Get(ctx, snapshotCacheKey, &cached)
	if err != nil || !hit || !cached.CasesLoaded {
		return nil, false
	}
	cached.Cases = s.classifier.ClassifyAll(cached.RawCases)
	s.publish(&cached, true)
	s.observe(RefreshOutcomeFromCache)
	s.logger.Info("dashboard restored from cache", zap.Int("cases", len(cached.Cases)), zap.Time("loaded_at", cached.LoadedAt))
	return &cached, true
}

func (s *CaseService) persist(ctx context.Context, snap *models.Snapshot) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Set(ctx, snapshotCacheKey, snap, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.Error(err))
	}
}

func (s *CaseService) publish(snap *models.Snapshot, casesChanged bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if casesChanged {
		s.generation++
	}
	snap.Generation = s.generation
	s.snapshot = snap
}

func (s *CaseService) current() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *CaseService) observe(outcome string) {
	if s.metrics == nil {
		return
	}
	count := 0
	if snap := s.current(); snap != nil {
		count = len(snap.Cases)
	}
	s.metrics.ObserveRefresh(outcome, count)
}

// Snapshot returns the published snapshot or ErrNotLoaded.
func (s *CaseService) Snapshot() (*models.Snapshot, error) {
	snap := s.current()
	if snap == nil {
		return nil, appErrors.ErrNotLoaded
	}
	return snap, nil
}

// Ready reports whether a case set has been published.
func (s *CaseService) Ready() bool {
	snap := s.current()
	return snap != nil && snap.CasesLoaded
}

func (s *CaseService) loadedCases() (*models.Snapshot, error) {
	snap := s.current()
	if snap == nil || !snap.CasesLoaded {
		return nil, appErrors.ErrNotLoaded
	}
	return snap, nil
}

// NormalizeView bounds the page size of a view to the configured limits.
func (s *CaseService) NormalizeView(view models.ViewState) models.ViewState {
	if view.PageSize <= 0 {
		view.PageSize = s.cfg.DefaultPageSize
	}
	if view.PageSize > s.cfg.MaxPageSize {
		view.PageSize = s.cfg.MaxPageSize
	}
	if view.Page < 1 {
		view.Page = 1
	}
	if !view.Range.Valid() {
		view.Range = models.RangeAll
	}
	if !view.SortKey.Valid() {
		view.SortKey = models.SortBySubmitted
	}
	if view.SortDir != models.SortAsc {
		view.SortDir = models.SortDesc
	}
	return view
}

// Query runs a full filter, sort and paginate pass over the current cases.
func (s *CaseService) Query(view models.ViewState) (QueryResult, uint64, error) {
	snap, err := s.loadedCases()
	if err != nil {
		return QueryResult{}, 0, err
	}
	return s.engine.Run(snap.Cases, s.NormalizeView(view)), snap.Generation, nil
}

// ViewFromRequest validates list parameters and turns them into a view.
func (s *CaseService) ViewFromRequest(req dto.ListCasesRequest) (models.ViewState, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ViewState{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters")
	}
	view := models.DefaultViewState()
	view.PageSize = s.cfg.DefaultPageSize
	view.Search = strings.TrimSpace(req.Query)
	view.Status = models.Status(req.Status)
	view.Resident = req.Resident
	view.Faculty = req.Faculty
	if req.Range != "" {
		view.Range = models.Range(req.Range)
	}
	if req.Sort != "" {
		view.SortKey = models.SortKey(req.Sort)
		view.SortDir = models.SortAsc
	}
	if req.Dir != "" {
		view.SortDir = models.SortDir(req.Dir)
	}
	if req.Page > 0 {
		view.Page = req.Page
	}
	if req.PageSize > 0 {
		view.PageSize = req.PageSize
	}
	return view, nil
}

// List answers a stateless case list query.
func (s *CaseService) List(ctx context.Context, req dto.ListCasesRequest) (*dto.CaseListResponse, *models.Pagination, error) {
	view, err := s.ViewFromRequest(req)
	if err != nil {
		return nil, nil, err
	}
	result, _, err := s.Query(view)
	if err != nil {
		return nil, nil, err
	}
	pagination := result.Pagination
	return &dto.CaseListResponse{
		Items: toCaseRows(result.Items, s.cfg.Location),
		View:  result.View,
	}, &pagination, nil
}

// Rows renders cases for the table.
func (s *CaseService) Rows(cases []models.Case) []dto.CaseRow {
	return toCaseRows(cases, s.cfg.Location)
}

// Filtered returns every case matching view in display order.
func (s *CaseService) Filtered(view models.ViewState) ([]models.Case, error) {
	result, _, err := s.Query(view)
	if err != nil {
		return nil, err
	}
	return result.Filtered, nil
}

// Get returns the detail view of the case with the given case ID.
func (s *CaseService) Get(ctx context.Context, caseID string) (*dto.CaseDetailResponse, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "caseId is required")
	}
	snap, err := s.loadedCases()
	if err != nil {
		return nil, err
	}
	for _, c := range snap.Cases {
		if c.Get(models.FieldCaseID) == caseID {
			_, rule := s.classifier.StatusWithRule(c.Record)
			return toCaseDetail(c, rule), nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "case not found")
}

// LocalCounts tallies the classified cases per status.
func (s *CaseService) LocalCounts() map[models.Status]int {
	counts := make(map[models.Status]int, len(models.Statuses))
	for _, st := range models.Statuses {
		counts[st] = 0
	}
	snap := s.current()
	if snap == nil {
		return counts
	}
	for _, c := range snap.Cases {
		counts[c.Status]++
	}
	return counts
}

// Start launches the background refresher when an interval is configured.
// It is a no-op when already running.
func (s *CaseService) Start(ctx context.Context) {
	if s.cfg.RefreshInterval <= 0 {
		return
	}
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(runCtx, s.done)
}

// Stop halts the background refresher and waits for it to exit.
func (s *CaseService) Stop() {
	s.lifecycle.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.lifecycle.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *CaseService) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("scheduled refresh failed", zap.Error(err))
			}
		}
	}
}
