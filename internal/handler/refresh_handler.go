package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/middleware"
	"github.com/noah-isme/case-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
	"github.com/noah-isme/case-dashboard-api/pkg/response"
)

type refresher interface {
	Refresh(ctx context.Context) (*models.Snapshot, bool, error)
}

// RefreshHandler forces an upstream reload.
type RefreshHandler struct {
	service refresher
	logger  *zap.Logger
}

// NewRefreshHandler constructs the handler.
func NewRefreshHandler(service refresher, logger *zap.Logger) *RefreshHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshHandler{service: service, logger: logger}
}

// Refresh godoc
// @Summary Reload stats and cases from the upstream API
// @Description Concurrent calls join the refresh already in flight.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /refresh [post]
func (h *RefreshHandler) Refresh(c *gin.Context) {
	// The refresh is shared with other callers, so it must not die with this request.
	ctx := context.WithoutCancel(c.Request.Context())
	snap, shared, err := h.service.Refresh(ctx)
	if err != nil {
		if errors.Is(err, appErrors.ErrCasesLoad) && snap != nil {
			h.logger.Warn("refresh published stats only", zap.Error(err))
		}
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "shared", shared)
	response.JSON(c, http.StatusOK, dto.RefreshResponse{
		Version:     snap.Version,
		TotalCases:  len(snap.Cases),
		CasesLoaded: snap.CasesLoaded,
		LoadedAt:    snap.LoadedAt,
		Shared:      shared,
	}, nil, middleware.ExtractMeta(c))
}
