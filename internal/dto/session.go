package dto

import "github.com/noah-isme/case-dashboard-api/internal/models"

// SessionResponse is a session's state together with its current page.
type SessionResponse struct {
	ID    string           `json:"id"`
	View  models.ViewState `json:"view"`
	Items []CaseRow        `json:"items"`
}

// SessionActionRequest applies one user interaction to a session.
type SessionActionRequest struct {
	Type  models.ActionType `json:"type" validate:"required,oneof=search status resident faculty range sort page next prev pageSize reset"`
	Value string            `json:"value"`
}
