package models

import "time"

// SessionStatus represents lifecycle phases for a camp session.
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "draft"
	SessionStatusPlanning  SessionStatus = "planning"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// sessionTransitions lists the forward path; cancelled is reachable from any
// non-terminal status.
var sessionTransitions = map[SessionStatus]SessionStatus{
	SessionStatusDraft:    SessionStatusPlanning,
	SessionStatusPlanning: SessionStatusActive,
	SessionStatusActive:   SessionStatusCompleted,
}

// CanTransition reports whether a status change is legal.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	if s == next {
		return false
	}
	if next == SessionStatusCancelled {
		return s != SessionStatusCompleted && s != SessionStatusCancelled
	}
	return sessionTransitions[s] == next
}

// Session is a dated camp period owning groups and schedule slots.
type Session struct {
	ID             string        `db:"id" json:"id"`
	OrganizationID string        `db:"organization_id" json:"organization_id"`
	Name           string        `db:"name" json:"name"`
	StartDate      string        `db:"start_date" json:"start_date"`
	EndDate        string        `db:"end_date" json:"end_date"`
	Status         SessionStatus `db:"status" json:"status"`
	MaxCampers     int           `db:"max_campers" json:"max_campers"`
	CurrentCampers int           `db:"current_campers" json:"current_campers"`
	DeletedAt      *time.Time    `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter describes query params for listing sessions.
type SessionFilter struct {
	OrganizationID string
	Status         string
	Page           int
	PageSize       int
}
