package models

import "time"

// Status is the derived approval state of a case.
type Status string

const (
	StatusApproved    Status = "approved"
	StatusNotApproved Status = "not_approved"
	StatusOnHold      Status = "onhold"
	StatusPending     Status = "pending"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusApproved, StatusPending, StatusOnHold, StatusNotApproved}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusApproved, StatusNotApproved, StatusOnHold, StatusPending:
		return true
	}
	return false
}

// Label is the human readable badge text.
func (s Status) Label() string {
	switch s {
	case StatusApproved:
		return "✅ Approved"
	case StatusNotApproved:
		return "❌ Revision Needed"
	case StatusOnHold:
		return "⏸️ On Hold"
	default:
		return "⏳ Pending"
	}
}

// Review is the derived faculty review state of a case.
type Review string

const (
	ReviewNone     Review = "no_review"
	ReviewPending  Review = "review_pending"
	ReviewComplete Review = "reviewed"
)

// Label is the human readable badge text.
func (r Review) Label() string {
	switch r {
	case ReviewPending:
		return "🟧 Pending Review"
	case ReviewComplete:
		return "🟦 Reviewed"
	default:
		return "⬜ Not Required"
	}
}

// Case is a source record annotated with its derived classification.
// SubmittedTS is Unix milliseconds, zero when the submission time is unusable.
type Case struct {
	Record      Record
	Status      Status
	Review      Review
	SubmittedTS int64
}

// Get resolves a canonical attribute of the underlying record.
func (c Case) Get(field Field) string {
	return c.Record.Get(field)
}

// SubmittedAt returns the submission instant, or the zero time when unknown.
func (c Case) SubmittedAt() time.Time {
	if c.SubmittedTS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(c.SubmittedTS)
}
