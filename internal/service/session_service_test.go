package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/case-dashboard-api/internal/dto"
	"github.com/noah-isme/case-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/case-dashboard-api/pkg/errors"
)

func manyRecords(n int) []models.Record {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	records := make([]models.Record, 0, n)
	for i := 0; i < n; i++ {
		status := "approved"
		if i%2 == 1 {
			status = "pending"
		}
		records = append(records, models.Record{
			"Case ID":          fmt.Sprintf("C-%02d", i),
			"status":           status,
			"_submission_time": base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		})
	}
	return records
}

func newTestSessionService(t *testing.T, records []models.Record) (*SessionService, *CaseService, *fakeUpstream) {
	t.Helper()
	upstream := &fakeUpstream{stats: sampleStats(), cases: &models.CasesPayload{Cases: records}}
	cases := newTestCaseService(upstream, nil, CaseServiceConfig{})
	sessions := NewSessionService(SessionServiceParams{
		Cases:  cases,
		Logger: zap.NewNop(),
		Config: SessionServiceConfig{TTL: time.Minute, CleanupInterval: -1},
	})
	ids := 0
	sessions.newID = func() string {
		ids++
		return fmt.Sprintf("session-%d", ids)
	}
	return sessions, cases, upstream
}

func TestSessionServiceCreateBeforeLoad(t *testing.T) {
	sessions, _, _ := newTestSessionService(t, manyRecords(3))

	resp, pagination, err := sessions.Create(context.Background())
	require.NoError(t, err)
	assert.Nil(t, pagination)
	assert.Equal(t, "session-1", resp.ID)
	assert.Equal(t, models.DefaultViewState(), resp.View)
	assert.Empty(t, resp.Items)

	_, _, err = sessions.Get(context.Background(), "session-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotLoaded))
}

func TestSessionServiceActions(t *testing.T) {
	sessions, cases, _ := newTestSessionService(t, manyRecords(57))
	_, _, err := cases.Refresh(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	created, pagination, err := sessions.Create(ctx)
	require.NoError(t, err)
	require.Len(t, created.Items, 25)
	assert.Equal(t, "C-56", created.Items[0].CaseID)
	assert.Equal(t, 3, pagination.TotalPages)

	resp, pagination, err := sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionPage, Value: "5"})
	require.NoError(t, err)
	assert.Equal(t, 3, pagination.Page)
	assert.Equal(t, 3, resp.View.Page)
	assert.Len(t, resp.Items, 7)

	resp, _, err = sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionPrev})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.View.Page)

	resp, pagination, err = sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionStatus, Value: "pending"})
	require.NoError(t, err)
	assert.Equal(t, 28, pagination.TotalCount)
	assert.Equal(t, 2, resp.View.Page)

	resp, _, err = sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionSort, Value: "submitted"})
	require.NoError(t, err)
	assert.Equal(t, models.SortAsc, resp.View.SortDir)
	assert.Equal(t, "C-51", resp.Items[0].CaseID)

	resp, _, err = sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionPageSize, Value: "10"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.View.Page)
	assert.Equal(t, 10, resp.View.PageSize)
	assert.Len(t, resp.Items, 10)

	resp, _, err = sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionReset})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultViewState(), resp.View)

	got, _, err := sessions.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.View, got.View)
}

func TestSessionServiceRejectsBadActions(t *testing.T) {
	sessions, cases, _ := newTestSessionService(t, manyRecords(3))
	_, _, err := cases.Refresh(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	created, _, err := sessions.Create(ctx)
	require.NoError(t, err)

	_, _, err = sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: "teleport"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, _, err = sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionRange, Value: "90d"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, _, err = sessions.Apply(ctx, "missing", dto.SessionActionRequest{Type: models.ActionNext})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	sessions.Delete(ctx, created.ID)
	_, _, err = sessions.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSessionServiceResetsPageAfterRefresh(t *testing.T) {
	sessions, cases, _ := newTestSessionService(t, manyRecords(57))
	_, _, err := cases.Refresh(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	created, _, err := sessions.Create(ctx)
	require.NoError(t, err)
	resp, _, err := sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionNext})
	require.NoError(t, err)
	require.Equal(t, 2, resp.View.Page)

	_, _, err = cases.Refresh(ctx)
	require.NoError(t, err)

	got, _, err := sessions.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.View.Page)

	resp, _, err = sessions.Apply(ctx, created.ID, dto.SessionActionRequest{Type: models.ActionNext})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.View.Page)
}
