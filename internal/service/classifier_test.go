package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/case-dashboard-api/internal/models"
)

func TestClassifierStatus(t *testing.T) {
	c := NewClassifier(time.UTC)

	cases := []struct {
		name   string
		record models.Record
		want   models.Status
		rule   string
	}{
		{name: "empty record", record: models.Record{}, want: models.StatusPending, rule: ruleDefault},
		{name: "nil record", record: nil, want: models.StatusPending, rule: ruleDefault},
		{
			name:   "validation uid approved",
			record: models.Record{"_validation_status": models.Record{"uid": "validation_status_approved"}},
			want:   models.StatusApproved,
			rule:   "validation_approved",
		},
		{
			name:   "validation uid not approved",
			record: models.Record{"_validation_status": models.Record{"uid": "validation_status_not_approved", "label": "Not Approved"}},
			want:   models.StatusNotApproved,
			rule:   "validation_not_approved",
		},
		{
			name:   "validation uid on hold",
			record: models.Record{"_validation_status": map[string]any{"uid": "validation_status_on_hold"}},
			want:   models.StatusOnHold,
			rule:   "validation_on_hold",
		},
		{
			name:   "validation label approved",
			record: models.Record{"_validation_status": models.Record{"label": " Approved "}},
			want:   models.StatusApproved,
			rule:   "validation_approved",
		},
		{
			name: "validation outranks text",
			record: models.Record{
				"_validation_status": models.Record{"label": "Approved"},
				"status":             "rejected",
			},
			want: models.StatusApproved,
			rule: "validation_approved",
		},
		{name: "text approved", record: models.Record{"Status": " APPROVED "}, want: models.StatusApproved, rule: "text_approved"},
		{name: "text revision", record: models.Record{"status": "Revision"}, want: models.StatusNotApproved, rule: "text_not_approved"},
		{name: "text rejected", record: models.Record{"status": "rejected"}, want: models.StatusNotApproved, rule: "text_not_approved"},
		{name: "text hold", record: models.Record{"status": "hold"}, want: models.StatusOnHold, rule: "text_on_hold"},
		{name: "text on hold", record: models.Record{"status": "On Hold"}, want: models.StatusOnHold, rule: "text_on_hold"},
		{name: "text other", record: models.Record{"status": "submitted"}, want: models.StatusPending, rule: "text_other"},
		{name: "blank text", record: models.Record{"status": "   "}, want: models.StatusPending, rule: ruleDefault},
		{name: "unrelated validation", record: models.Record{"_validation_status": models.Record{"uid": "x"}}, want: models.StatusPending, rule: ruleDefault},
		{name: "validation not an object", record: models.Record{"_validation_status": "approved"}, want: models.StatusPending, rule: ruleDefault},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, rule := c.StatusWithRule(tc.record)
			assert.Equal(t, tc.want, status)
			assert.Equal(t, tc.rule, rule)
			assert.True(t, status.Valid())
		})
	}
}

func TestClassifierReview(t *testing.T) {
	c := NewClassifier(time.UTC)

	assert.Equal(t, models.ReviewNone, c.Review(models.Record{}))
	assert.Equal(t, models.ReviewNone, c.Review(models.Record{"Review_Required": "no", "Review_Date_Time": "2024-01-01"}))
	assert.Equal(t, models.ReviewPending, c.Review(models.Record{"Review_Required": "Yes"}))
	assert.Equal(t, models.ReviewPending, c.Review(models.Record{"Review Required": "TRUE", "Review_Date_Time": "  "}))
	assert.Equal(t, models.ReviewComplete, c.Review(models.Record{"Review_Required": "yes", "Review Date/Time": "2024-01-02 10:00"}))
	assert.Equal(t, models.ReviewComplete, c.Review(models.Record{"Review_Required": true, "Review_Date_Time": "done"}))
}

func TestClassifierSubmittedTS(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	c := NewClassifier(kolkata)

	cases := []struct {
		name  string
		value any
		want  int64
	}{
		{name: "missing", value: nil, want: 0},
		{name: "unix millis", value: float64(1705312800000), want: 1705312800000},
		{name: "rfc3339 utc", value: "2024-01-15T10:00:00Z", want: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC).UnixMilli()},
		{name: "rfc3339 fractional offset", value: "2024-01-15T10:00:00.250+05:30", want: time.Date(2024, 1, 15, 4, 30, 0, 250e6, time.UTC).UnixMilli()},
		{name: "compact offset", value: "2024-01-15T10:00:00.000+0530", want: time.Date(2024, 1, 15, 4, 30, 0, 0, time.UTC).UnixMilli()},
		{name: "local without zone", value: "2024-01-15T10:00:00", want: time.Date(2024, 1, 15, 10, 0, 0, 0, kolkata).UnixMilli()},
		{name: "local minutes", value: "2024-01-15T10:00", want: time.Date(2024, 1, 15, 10, 0, 0, 0, kolkata).UnixMilli()},
		{name: "local with space", value: "2024-01-15 10:00:30", want: time.Date(2024, 1, 15, 10, 0, 30, 0, kolkata).UnixMilli()},
		{name: "date only is utc", value: "2024-01-15", want: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).UnixMilli()},
		{name: "garbage", value: "last tuesday", want: 0},
		{name: "bool", value: true, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := models.Record{}
			if tc.value != nil {
				r["_submission_time"] = tc.value
			}
			assert.Equal(t, tc.want, c.SubmittedTS(r))
		})
	}
}

func TestClassifierSubmittedAliasOrder(t *testing.T) {
	c := NewClassifier(time.UTC)
	r := models.Record{
		"_submission_time": " ",
		"start":            "2024-02-01T00:00:00Z",
	}
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), c.SubmittedTS(r))
}

func TestClassifyAllKeepsRecordsIntact(t *testing.T) {
	c := NewClassifier(time.UTC)
	records := []models.Record{
		{"Case ID": "C-1", "status": "approved", "_submission_time": "2024-01-15T10:00:00Z"},
		{"Case ID": "C-2"},
	}

	got := c.ClassifyAll(records)

	assert.Len(t, got, 2)
	assert.Equal(t, models.StatusApproved, got[0].Status)
	assert.Equal(t, models.ReviewNone, got[0].Review)
	assert.NotZero(t, got[0].SubmittedTS)
	assert.Equal(t, models.StatusPending, got[1].Status)
	assert.Zero(t, got[1].SubmittedTS)
	assert.Len(t, records[0], 3)
	assert.Equal(t, "C-1", got[0].Get(models.FieldCaseID))
}
