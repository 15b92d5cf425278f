package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
)

type caseQuerier interface {
	Query(view models.ViewState) (QueryResult, uint64, error)
	NormalizeView(view models.ViewState) models.ViewState
	Rows(cases []models.Case) []dto.CaseRow
}

// SessionServiceConfig tunes session retention.
type SessionServiceConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	DefaultPageSize int
}

// sessionEntry is stored by value; every change replaces the entry.
type sessionEntry struct {
	View       models.ViewState
	Generation uint64
}

// SessionService keeps one view state per dashboard session.
type SessionService struct {
	store     *cache.Cache
	cases     caseQuerier
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SessionServiceConfig
	newID     func() string
	mu        sync.Mutex
}

// SessionServiceParams groups constructor dependencies.
type SessionServiceParams struct {
	Cases     caseQuerier
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    SessionServiceConfig
}

// NewSessionService constructs the service. Idle sessions expire after TTL.
func NewSessionService(params SessionServiceParams) *SessionService {
	cfg := params.Config
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Minute
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 2 * cfg.TTL
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = models.DefaultPageSize
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{
		store:     cache.New(cfg.TTL, cfg.CleanupInterval),
		cases:     params.Cases,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		newID:     uuid.NewString,
	}
}

// Create starts a session with the default view. When no cases are loaded
// yet the session is still created and the page is empty.
func (s *SessionService) Create(ctx context.Context) (*dto.SessionResponse, *models.Pagination, error) {
	view := models.DefaultViewState()
	view.PageSize = s.cfg.DefaultPageSize

	id := s.newID()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.SetDefault(id, sessionEntry{View: view})
	resp, pagination, err := s.render(id, sessionEntry{View: view})
	if errors.Is(err, appErrors.ErrNotLoaded) {
		return &dto.SessionResponse{ID: id, View: view, Items: []dto.CaseRow{}}, nil, nil
	}
	return resp, pagination, err
}

// Get returns the session's view and its current page.
func (s *SessionService) Get(ctx context.Context, id string) (*dto.SessionResponse, *models.Pagination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	return s.render(id, entry)
}

// Apply performs one user action and returns the resulting page.
func (s *SessionService) Apply(ctx context.Context, id string, req dto.SessionActionRequest) (*dto.SessionResponse, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid action")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	next, err := entry.View.Apply(models.Action{Type: req.Type, Value: req.Value})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if req.Type == models.ActionPageSize || req.Type == models.ActionReset {
		next = s.cases.NormalizeView(next)
		if req.Type == models.ActionReset {
			next.PageSize = s.cfg.DefaultPageSize
		}
	}
	entry.View = next
	s.store.SetDefault(id, entry)

	s.logger.Debug("session action applied",
		zap.String("session_id", id),
		zap.String("action", string(req.Type)),
	)
	return s.render(id, entry)
}

// Delete discards a session.
func (s *SessionService) Delete(ctx context.Context, id string) {
	s.store.Delete(strings.TrimSpace(id))
}

func (s *SessionService) lookup(id string) (sessionEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return sessionEntry{}, appErrors.Clone(appErrors.ErrValidation, "session id is required")
	}
	raw, ok := s.store.Get(id)
	if !ok {
		return sessionEntry{}, appErrors.Clone(appErrors.ErrNotFound, "session not found or expired")
	}
	entry, ok := raw.(sessionEntry)
	if !ok {
		s.store.Delete(id)
		return sessionEntry{}, appErrors.Clone(appErrors.ErrNotFound, "session not found or expired")
	}
	return entry, nil
}

// render runs the query for entry and stores back the clamped page. A session
// that last saw an older case set starts again from page one.
func (s *SessionService) render(id string, entry sessionEntry) (*dto.SessionResponse, *models.Pagination, error) {
	view := entry.View
	result, generation, err := s.cases.Query(view)
	if err != nil {
		return nil, nil, err
	}
	if entry.Generation != 0 && entry.Generation != generation && view.Page != 1 {
		view.Page = 1
		result, generation, err = s.cases.Query(view)
		if err != nil {
			return nil, nil, err
		}
	}

	s.store.SetDefault(id, sessionEntry{View: result.View, Generation: generation})

	pagination := result.Pagination
	return &dto.SessionResponse{
		ID:    id,
		View:  result.View,
		Items: s.cases.Rows(result.Items),
	}, &pagination, nil
}
