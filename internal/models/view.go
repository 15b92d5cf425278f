package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Range is the submission time window applied to the case list.
type Range string

const (
	RangeAll   Range = "all"
	RangeToday Range = "today"
	Range7d    Range = "7d"
	Range30d   Range = "30d"
)

// Valid reports whether r is a supported window.
func (r Range) Valid() bool {
	switch r {
	case RangeAll, RangeToday, Range7d, Range30d:
		return true
	}
	return false
}

// SortDir orders the case list.
type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// SortKey selects the value cases are ordered by. Besides the derived keys
// any canonical Field name is accepted.
type SortKey string

const (
	SortBySubmitted SortKey = "submitted"
	SortByStatus    SortKey = "status"
	SortByReview    SortKey = "review"
)

// sortableFields are the string columns the table can be ordered by.
var sortableFields = map[SortKey]Field{
	"caseId":      FieldCaseID,
	"patientId":   FieldPatientID,
	"patientName": FieldPatientName,
	"dept":        FieldDept,
	"bed":         FieldBed,
	"resident":    FieldResident,
	"faculty":     FieldFaculty,
	"primaryDx":   FieldPrimaryDx,
}

// Field returns the record attribute backing a string sort key.
func (k SortKey) Field() (Field, bool) {
	f, ok := sortableFields[k]
	return f, ok
}

// Valid reports whether k is a derived key or a sortable field.
func (k SortKey) Valid() bool {
	switch k {
	case SortBySubmitted, SortByStatus, SortByReview:
		return true
	}
	_, ok := sortableFields[k]
	return ok
}

// DefaultPageSize is used when no usable page size is supplied.
const DefaultPageSize = 25

// ViewState is one session's filter, sort and paging selection.
type ViewState struct {
	Search   string  `json:"search"`
	Status   Status  `json:"status,omitempty"`
	Resident string  `json:"resident,omitempty"`
	Faculty  string  `json:"faculty,omitempty"`
	Range    Range   `json:"range"`
	SortKey  SortKey `json:"sortKey"`
	SortDir  SortDir `json:"sortDir"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// DefaultViewState is the state of a freshly loaded dashboard.
func DefaultViewState() ViewState {
	return ViewState{
		Range:    RangeAll,
		SortKey:  SortBySubmitted,
		SortDir:  SortDesc,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// ActionType names a user interaction with the dashboard.
type ActionType string

const (
	ActionSearch   ActionType = "search"
	ActionStatus   ActionType = "status"
	ActionResident ActionType = "resident"
	ActionFaculty  ActionType = "faculty"
	ActionRange    ActionType = "range"
	ActionSort     ActionType = "sort"
	ActionPage     ActionType = "page"
	ActionNext     ActionType = "next"
	ActionPrev     ActionType = "prev"
	ActionPageSize ActionType = "pageSize"
	ActionReset    ActionType = "reset"
)

// Action is a single user interaction; Value is interpreted per type.
type Action struct {
	Type  ActionType `json:"type" validate:"required"`
	Value string     `json:"value"`
}

// ErrInvalidAction is returned for unknown actions or unusable values.
var ErrInvalidAction = errors.New("invalid view action")

// Apply returns the state that results from a. The receiver is not modified.
// Page bounds are enforced later, when the page is computed against a result set.
func (v ViewState) Apply(a Action) (ViewState, error) {
	next := v
	value := a.Value
	switch a.Type {
	case ActionSearch:
		next.Search = value
	case ActionStatus:
		st := Status(strings.TrimSpace(value))
		if st != "" && !st.Valid() {
			return v, fmt.Errorf("%w: unknown status %q", ErrInvalidAction, value)
		}
		next.Status = st
	case ActionResident:
		next.Resident = value
	case ActionFaculty:
		next.Faculty = value
	case ActionRange:
		r := Range(strings.TrimSpace(value))
		if !r.Valid() {
			return v, fmt.Errorf("%w: unknown range %q", ErrInvalidAction, value)
		}
		next.Range = r
	case ActionSort:
		key := SortKey(strings.TrimSpace(value))
		if !key.Valid() {
			return v, fmt.Errorf("%w: unknown sort key %q", ErrInvalidAction, value)
		}
		next.SortKey, next.SortDir = toggleSort(v.SortKey, v.SortDir, key)
	case ActionPage:
		page, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return v, fmt.Errorf("%w: page %q is not a number", ErrInvalidAction, value)
		}
		next.Page = max(1, page)
	case ActionNext:
		next.Page = max(1, v.Page+1)
	case ActionPrev:
		next.Page = max(1, v.Page-1)
	case ActionPageSize:
		size, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || size <= 0 {
			size = DefaultPageSize
		}
		next.PageSize = size
		next.Page = 1
	case ActionReset:
		next = DefaultViewState()
	default:
		return v, fmt.Errorf("%w: %q", ErrInvalidAction, a.Type)
	}
	return next, nil
}

// toggleSort flips direction when the same key is chosen again; a new key
// always starts ascending.
func toggleSort(current SortKey, dir SortDir, chosen SortKey) (SortKey, SortDir) {
	if current == chosen {
		if dir == SortAsc {
			return chosen, SortDesc
		}
		return chosen, SortAsc
	}
	return chosen, SortAsc
}

// SortableFieldKeys lists the string sort keys in no particular order.
func SortableFieldKeys() []SortKey {
	keys := make([]SortKey, 0, len(sortableFields))
	for k := range sortableFields {
		keys = append(keys, k)
	}
	return keys
}
