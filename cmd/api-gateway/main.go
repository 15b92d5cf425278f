package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/klauspost/compress/gzhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/case-dashboard-api/api/swagger"
	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/handler"
	internalmiddleware "github.com/noah-isme/case-dashboard-api/internal/middleware"
	"github.com/noah-isme/case-dashboard-api/internal/repository"
	"github.com/noah-isme/case-dashboard-api/internal/service"
	"github.com/noah-isme/case-dashboard-api/pkg/cache"
	"github.com/noah-isme/case-dashboard-api/pkg/config"
	"github.com/noah-isme/case-dashboard-api/pkg/export"
	"github.com/noah-isme/case-dashboard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/case-dashboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/case-dashboard-api/pkg/middleware/requestid"
	"github.com/noah-isme/case-dashboard-api/pkg/retry"
)

// @title Case Dashboard API
// @version 1.0.0
// @description Normalises spreadsheet-backed case records and serves the dashboard views.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, snapshot cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	policy := retry.Policy{
		MaxAttempts: cfg.Upstream.FetchAttempts,
		BaseDelay:   cfg.Upstream.BackoffBase,
		Multiplier:  cfg.Upstream.BackoffMultiplier,
	}
	upstream := repository.NewUpstreamRepository(repository.UpstreamConfig{
		BaseURL:     cfg.Upstream.BaseURL,
		Timeout:     cfg.Upstream.Timeout,
		PingPolicy:  policy.WithAttempts(cfg.Upstream.PingAttempts),
		FetchPolicy: policy,
	}, nil, metricsSvc, logr)

	caseSvc := service.NewCaseService(service.CaseServiceParams{
		Upstream:  upstream,
		Cache:     cacheSvc,
		Metrics:   metricsSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.CaseServiceConfig{
			CacheTTL:        cfg.Dashboard.CacheTTL,
			RefreshInterval: cfg.Dashboard.RefreshInterval,
			DefaultPageSize: cfg.Dashboard.DefaultPageSize,
			MaxPageSize:     cfg.Dashboard.MaxPageSize,
			Location:        cfg.Dashboard.Location(),
		},
	})
	if _, fromCache, err := caseSvc.Load(ctx); err != nil {
		logr.Warn("initial load failed, serving once a refresh succeeds", zap.Error(err))
	} else {
		logr.Info("initial load complete", zap.Bool("from_cache", fromCache))
	}
	caseSvc.Start(ctx)
	defer caseSvc.Stop()

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Cases:  caseSvc,
		Logger: logr,
		Config: service.DashboardServiceConfig{Links: dto.DashboardLinks{
			AddCaseForm:  cfg.Links.AddCaseForm,
			ResidentView: cfg.Links.ResidentView,
			FacultyView:  cfg.Links.FacultyView,
		}},
	})
	sessionSvc := service.NewSessionService(service.SessionServiceParams{
		Cases:     caseSvc,
		Validator: validate,
		Logger:    logr,
		Config: service.SessionServiceConfig{
			TTL:             cfg.Sessions.TTL,
			DefaultPageSize: cfg.Dashboard.DefaultPageSize,
		},
	})
	exportSvc := service.NewExportService(caseSvc, logr, export.NewCSVExporter(), export.NewPDFExporter())
	authSvc := service.NewAuthService(service.AuthConfig{Secret: cfg.Auth.JWTSecret}, logr)

	caseHandler := handler.NewCaseHandler(caseSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	refreshHandler := handler.NewRefreshHandler(caseSvc, logr)
	exportHandler := handler.NewExportHandler(caseSvc, exportSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, caseSvc)

	r := gin.New()
	r.Use(internalmiddleware.Recovery(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	admin := []gin.HandlerFunc{}
	if cfg.Auth.Enabled {
		admin = append(admin, internalmiddleware.JWT(authSvc))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/dashboard", dashboardHandler.Summary)
	api.GET("/filters", dashboardHandler.FilterOptions)
	api.GET("/cases", caseHandler.List)
	api.GET("/cases/:caseId", caseHandler.Get)
	api.POST("/refresh", append(admin, internalmiddleware.Audit(logr, "refresh"), refreshHandler.Refresh)...)
	api.GET("/export", append(admin, internalmiddleware.Audit(logr, "export"), exportHandler.Export)...)
	api.POST("/sessions", sessionHandler.Create)
	api.GET("/sessions/:id", sessionHandler.Get)
	api.POST("/sessions/:id/actions", sessionHandler.Apply)
	api.DELETE("/sessions/:id", sessionHandler.Delete)
	api.GET("/system/metrics", metricsHandler.System)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           gzhttp.GzipHandler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
