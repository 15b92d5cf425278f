package service

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/case-dashboard-api/internal/models"
)

// QueryResult is one computed page of the case list.
type QueryResult struct {
	Items      []models.Case
	Filtered   []models.Case
	Pagination models.Pagination
	View       models.ViewState
}

// QueryEngine filters, sorts and pages classified cases. It never mutates the
// input slice or the records in it.
type QueryEngine struct {
	loc *time.Location
	now func() time.Time
}

// NewQueryEngine returns an engine that evaluates day boundaries in loc.
func NewQueryEngine(loc *time.Location) *QueryEngine {
	if loc == nil {
		loc = time.Local
	}
	return &QueryEngine{loc: loc, now: time.Now}
}

// Run recomputes filter, sort and pagination for view from scratch. The
// returned view carries the page after clamping.
func (q *QueryEngine) Run(cases []models.Case, view models.ViewState) QueryResult {
	filtered := q.Filter(cases, view, q.now())
	sorted := Sort(filtered, view.SortKey, view.SortDir)
	items, pagination := Paginate(sorted, view.Page, view.PageSize)

	view.Page = pagination.Page
	view.PageSize = pagination.PageSize
	return QueryResult{Items: items, Filtered: sorted, Pagination: pagination, View: view}
}

// Filter keeps the cases satisfying every active predicate of view.
func (q *QueryEngine) Filter(cases []models.Case, view models.ViewState, now time.Time) []models.Case {
	search := strings.ToLower(strings.TrimSpace(view.Search))
	since, bounded := q.rangeStart(view.Range, now)

	out := make([]models.Case, 0, len(cases))
	for _, c := range cases {
		if search != "" && !matchesSearch(c, search) {
			continue
		}
		if view.Status != "" && c.Status != view.Status {
			continue
		}
		if view.Resident != "" && c.Get(models.FieldResident) != view.Resident {
			continue
		}
		if view.Faculty != "" && c.Get(models.FieldFaculty) != view.Faculty {
			continue
		}
		if bounded && (c.SubmittedTS == 0 || c.SubmittedTS < since) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesSearch(c models.Case, needle string) bool {
	for _, f := range []models.Field{models.FieldCaseID, models.FieldPatientID, models.FieldPatientName} {
		if strings.Contains(strings.ToLower(c.Get(f)), needle) {
			return true
		}
	}
	return false
}

// rangeStart returns the inclusive lower bound in Unix millis for r.
func (q *QueryEngine) rangeStart(r models.Range, now time.Time) (int64, bool) {
	switch r {
	case models.RangeToday:
		local := now.In(q.loc)
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, q.loc)
		return midnight.UnixMilli(), true
	case models.Range7d:
		return now.Add(-7 * 24 * time.Hour).UnixMilli(), true
	case models.Range30d:
		return now.Add(-30 * 24 * time.Hour).UnixMilli(), true
	default:
		return 0, false
	}
}

type sortEntry struct {
	c   models.Case
	key string
	ts  int64
}

// Sort returns a stably ordered copy of cases.
func Sort(cases []models.Case, key models.SortKey, dir models.SortDir) []models.Case {
	entries := make([]sortEntry, len(cases))
	field, byField := key.Field()
	for i, c := range cases {
		e := sortEntry{c: c}
		switch {
		case key == models.SortBySubmitted:
			e.ts = c.SubmittedTS
		case key == models.SortByStatus:
			e.key = string(c.Status)
		case key == models.SortByReview:
			e.key = string(c.Review)
		case byField:
			e.key = strings.ToLower(c.Get(field))
		}
		entries[i] = e
	}

	compare := func(a, b sortEntry) int {
		if key == models.SortBySubmitted {
			switch {
			case a.ts < b.ts:
				return -1
			case a.ts > b.ts:
				return 1
			}
			return 0
		}
		return strings.Compare(a.key, b.key)
	}

	desc := dir == models.SortDesc
	sort.SliceStable(entries, func(i, j int) bool {
		if desc {
			return compare(entries[j], entries[i]) < 0
		}
		return compare(entries[i], entries[j]) < 0
	})

	out := make([]models.Case, len(entries))
	for i, e := range entries {
		out[i] = e.c
	}
	return out
}

// Paginate clamps page into range and returns that page of cases. A non
// positive size falls back to the default page size.
func Paginate(cases []models.Case, page, size int) ([]models.Case, models.Pagination) {
	if size <= 0 {
		size = models.DefaultPageSize
	}
	total := len(cases)
	pages := max(1, (total+size-1)/size)
	page = min(max(1, page), pages)

	start := (page - 1) * size
	end := min(start+size, total)
	items := cases[start:end:end]

	return items, models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: total,
		TotalPages: pages,
	}
}
