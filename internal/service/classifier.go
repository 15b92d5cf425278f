package service

import (
	"math"
	"strings"
	"time"

	"github.com/noah-isme/case-dashboard-api/internal/models"
)

// statusSignals are the normalised inputs every status rule looks at.
type statusSignals struct {
	uid   string
	label string
	text  string
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// statusRule maps one upstream convention onto a status.
type statusRule struct {
	name   string
	match  func(statusSignals) bool
	result models.Status
}

// defaultStatusRules is evaluated top to bottom, first match wins. Structured
// validation metadata is consulted before free-text status columns.
var defaultStatusRules = []statusRule{
	{
		name: "validation_approved",
		match: func(s statusSignals) bool {
			return (strings.Contains(s.uid, "approved") && !strings.Contains(s.uid, "not_approved")) ||
				s.label == "approved"
		},
		result: models.StatusApproved,
	},
	{
		name: "validation_not_approved",
		match: func(s statusSignals) bool {
			return strings.Contains(s.uid, "not_approved") ||
				containsAny(s.label, "not approved", "not_approved")
		},
		result: models.StatusNotApproved,
	},
	{
		name: "validation_on_hold",
		match: func(s statusSignals) bool {
			return containsAny(s.uid, "on_hold", "onhold") ||
				containsAny(s.label, "on hold", "on_hold", "onhold")
		},
		result: models.StatusOnHold,
	},
	{
		name:   "text_approved",
		match:  func(s statusSignals) bool { return s.text == "approved" },
		result: models.StatusApproved,
	},
	{
		name:   "text_not_approved",
		match:  textIn("rejected", "not approved", "not_approved", "revision"),
		result: models.StatusNotApproved,
	},
	{
		name:   "text_on_hold",
		match:  textIn("onhold", "on hold", "hold"),
		result: models.StatusOnHold,
	},
	{
		name:   "text_other",
		match:  func(s statusSignals) bool { return s.text != "" },
		result: models.StatusPending,
	},
}

func textIn(values ...string) func(statusSignals) bool {
	return func(s statusSignals) bool {
		for _, v := range values {
			if s.text == v {
				return true
			}
		}
		return false
	}
}

const ruleDefault = "default"

// Classifier derives status, review state and submission time for records.
type Classifier struct {
	rules []statusRule
	loc   *time.Location
}

// NewClassifier builds a classifier interpreting zone-less timestamps in loc.
func NewClassifier(loc *time.Location) *Classifier {
	if loc == nil {
		loc = time.Local
	}
	return &Classifier{rules: defaultStatusRules, loc: loc}
}

// Classify annotates a single record. The record itself is left untouched.
func (c *Classifier) Classify(r models.Record) models.Case {
	status, _ := c.StatusWithRule(r)
	return models.Case{
		Record:      r,
		Status:      status,
		Review:      c.Review(r),
		SubmittedTS: c.SubmittedTS(r),
	}
}

// ClassifyAll annotates every record in order.
func (c *Classifier) ClassifyAll(records []models.Record) []models.Case {
	cases := make([]models.Case, 0, len(records))
	for _, r := range records {
		cases = append(cases, c.Classify(r))
	}
	return cases
}

// Status returns the derived approval status; it is total over all records.
func (c *Classifier) Status(r models.Record) models.Status {
	status, _ := c.StatusWithRule(r)
	return status
}

// StatusWithRule also reports which rule decided the status.
func (c *Classifier) StatusWithRule(r models.Record) (models.Status, string) {
	signals := readSignals(r)
	for _, rule := range c.rules {
		if rule.match(signals) {
			return rule.result, rule.name
		}
	}
	return models.StatusPending, ruleDefault
}

func readSignals(r models.Record) statusSignals {
	var s statusSignals
	if vs, ok := r.Object(models.ValidationStatusKey); ok {
		s.uid = strings.ToLower(strings.TrimSpace(models.Stringify(vs["uid"])))
		s.label = strings.ToLower(strings.TrimSpace(models.Stringify(vs["label"])))
	}
	s.text = strings.ToLower(strings.TrimSpace(r.Get(models.FieldStatus)))
	return s
}

// Review returns the derived review state.
func (c *Classifier) Review(r models.Record) models.Review {
	required := strings.ToLower(strings.TrimSpace(r.Get(models.FieldReviewRequired)))
	if required != "yes" && required != "true" {
		return models.ReviewNone
	}
	if strings.TrimSpace(r.Get(models.FieldReviewDateTime)) != "" {
		return models.ReviewComplete
	}
	return models.ReviewPending
}

// zonedLayouts carry their own offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// localLayouts are wall-clock times in the dashboard's zone.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

// SubmittedTS returns the submission instant in Unix milliseconds, or 0 when
// the record has no usable submission time.
func (c *Classifier) SubmittedTS(r models.Record) int64 {
	switch v := models.ResolveValue(r, models.FieldSubmitted.Aliases()).(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return int64(v)
	case string:
		return c.parseTimestamp(strings.TrimSpace(v))
	default:
		return 0
	}
}

func (c *Classifier) parseTimestamp(raw string) int64 {
	if raw == "" {
		return 0
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli()
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, c.loc); err == nil {
			return t.UnixMilli()
		}
	}
	// A bare date is a UTC midnight, as browsers read it.
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UnixMilli()
	}
	return 0
}
