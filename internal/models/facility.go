package models

import "time"

// Facility is a bookable venue. The indoor flag is the primary signal
// consulted by the weather engine.
type Facility struct {
	ID             string    `db:"id" json:"id"`
	OrganizationID string    `db:"organization_id" json:"organization_id"`
	Name           string    `db:"name" json:"name"`
	Capacity       int       `db:"capacity" json:"capacity"`
	Indoor         bool      `db:"indoor" json:"indoor"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
