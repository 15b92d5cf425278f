package main

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/case-dashboard-api/internal/repository"
	"github.com/noah-isme/case-dashboard-api/internal/service"
	"github.com/noah-isme/case-dashboard-api/pkg/config"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
	"github.com/noah-isme/case-dashboard-api/pkg/logger"
	"github.com/noah-isme/case-dashboard-api/pkg/retry"
)

// app holds what the subcommands share. Fields left nil are built from
// the environment on first use.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *http.Client
	out     io.Writer
	verbose bool

	upstream *repository.UpstreamRepository
	cases    *service.CaseService
}

func (a *app) init() error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
		if a.verbose {
			l, err := logger.New(a.cfg)
			if err != nil {
				return err
			}
			a.logger = l
		}
	}
	return nil
}

func (a *app) upstreamRepo() *repository.UpstreamRepository {
	if a.upstream != nil {
		return a.upstream
	}
	policy := retry.Policy{
		MaxAttempts: a.cfg.Upstream.FetchAttempts,
		BaseDelay:   a.cfg.Upstream.BackoffBase,
		Multiplier:  a.cfg.Upstream.BackoffMultiplier,
	}
	a.upstream = repository.NewUpstreamRepository(repository.UpstreamConfig{
		BaseURL:     a.cfg.Upstream.BaseURL,
		Timeout:     a.cfg.Upstream.Timeout,
		PingPolicy:  policy.WithAttempts(a.cfg.Upstream.PingAttempts),
		FetchPolicy: policy,
	}, a.client, nil, a.logger)
	return a.upstream
}

// loadCases runs one refresh. A CLI has no use for a stats-only snapshot,
// so a failed case load is an error.
func (a *app) loadCases(ctx context.Context) (*service.CaseService, error) {
	if a.cases == nil {
		a.cases = service.NewCaseService(service.CaseServiceParams{
			Upstream:  a.upstreamRepo(),
			Validator: validator.New(),
			Logger:    a.logger,
			Config: service.CaseServiceConfig{
				DefaultPageSize: a.cfg.Dashboard.DefaultPageSize,
				MaxPageSize:     a.cfg.Dashboard.MaxPageSize,
				Location:        a.cfg.Dashboard.Location(),
			},
		})
	}
	if _, _, err := a.cases.Refresh(ctx); err != nil {
		if errors.Is(err, appErrors.ErrCasesLoad) || errors.Is(err, appErrors.ErrStatsLoad) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "refresh failed")
	}
	return a.cases, nil
}
