package main

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/case-dashboard-api/internal/service"
	"github.com/noah-isme/case-dashboard-api/pkg/config"
)

const testBaseURL = "https://upstream.test/exec"

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponderWithQuery(http.MethodGet, testBaseURL, "action=ping",
		httpmock.NewStringResponder(http.StatusOK, `{"ok": true, "version": "v12"}`))
	httpmock.RegisterResponderWithQuery(http.MethodGet, testBaseURL, "action=stats",
		httpmock.NewStringResponder(http.StatusOK, `{"stats": {"total": 3}, "lastUpdated": "2024-03-10T08:00:00Z"}`))
	httpmock.RegisterResponderWithQuery(http.MethodGet, testBaseURL, "action=data",
		httpmock.NewStringResponder(http.StatusOK, `{"cases": [
			{"Case ID": "C-1", "patient_name": "Asha", "status": "approved", "case_seen_by": "Dr. A", "_submission_time": "2024-03-09T10:00:00Z"},
			{"Case ID": "C-2", "patient_name": "Ravi", "status": "hold", "case_seen_by": "Dr. A", "_submission_time": "2024-03-10T10:00:00Z"},
			{"Case ID": "C-3", "patient_name": "Meera", "case_seen_by": "Dr. B"}
		]}`))

	out := &bytes.Buffer{}
	return &app{
		cfg: &config.Config{
			Auth: config.AuthConfig{JWTSecret: "cli-secret"},
			Upstream: config.UpstreamConfig{
				BaseURL:           testBaseURL,
				Timeout:           time.Second,
				PingAttempts:      1,
				FetchAttempts:     1,
				BackoffBase:       time.Millisecond,
				BackoffMultiplier: 2,
			},
			Dashboard: config.DashboardConfig{DefaultPageSize: 25, MaxPageSize: 100, Timezone: "UTC"},
		},
		client: client,
		out:    out,
	}, out
}

func run(t *testing.T, a *app, args ...string) error {
	t.Helper()
	root := newRootCommand(a)
	root.SetArgs(args)
	return root.Execute()
}

func TestCasesCommandPrintsFilteredPage(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, run(t, a, "cases", "--resident", "Dr. A", "--sort", "caseId"))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "CASE ID")
	assert.Contains(t, lines[1], "C-1")
	assert.Contains(t, lines[2], "C-2")
	assert.Equal(t, "page 1/1 (2 cases)", lines[3])
}

func TestCasesCommandRejectsBadStatus(t *testing.T) {
	a, _ := newTestApp(t)
	assert.Error(t, run(t, a, "cases", "--status", "maybe"))
}

func TestExportCommandWritesFile(t *testing.T) {
	a, out := newTestApp(t)
	target := filepath.Join(t.TempDir(), "cases.csv")

	require.NoError(t, run(t, a, "export", "--format", "csv", "--out", target))

	payload, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "C-3")
	assert.Equal(t, "wrote 3 cases to "+target+"\n", out.String())
}

func TestExportCommandUnknownFormat(t *testing.T) {
	a, _ := newTestApp(t)
	assert.Error(t, run(t, a, "export", "--format", "xlsx"))
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestPingCommand(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, run(t, a, "ping"))

	assert.Equal(t, "ok=true version=v12\n", out.String())
}

func TestTokenCommandMintsValidToken(t *testing.T) {
	a, out := newTestApp(t)

	require.NoError(t, run(t, a, "token", "--subject", "ops", "--ttl", "10m"))

	auth := service.NewAuthService(service.AuthConfig{Secret: "cli-secret"}, nil)
	claims, err := auth.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
}

func TestTokenCommandRequiresSubject(t *testing.T) {
	a, _ := newTestApp(t)
	assert.Error(t, run(t, a, "token"))
}
