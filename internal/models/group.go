package models

import "time"

// GroupGender restricts group composition.
type GroupGender string

const (
	GroupGenderMale   GroupGender = "male"
	GroupGenderFemale GroupGender = "female"
	GroupGenderMixed  GroupGender = "mixed"
)

// Group is the unit that occupies a schedule slot. A group belongs to exactly
// one session.
type Group struct {
	ID           string      `db:"id" json:"id"`
	SessionID    string      `db:"session_id" json:"session_id"`
	Name         string      `db:"name" json:"name"`
	Color        string      `db:"color" json:"color"`
	Capacity     int         `db:"capacity" json:"capacity"`
	CurrentCount int         `db:"current_count" json:"current_count"`
	AgeMin       int         `db:"age_min" json:"age_min"`
	AgeMax       int         `db:"age_max" json:"age_max"`
	Gender       GroupGender `db:"gender" json:"gender"`
	SortOrder    int         `db:"sort_order" json:"sort_order"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// AgeOverlaps reports whether the group's age window intersects [min, max].
// A zero max means unbounded.
func (g Group) AgeOverlaps(min, max int) bool {
	if max > 0 && g.AgeMin > max {
		return false
	}
	if g.AgeMax > 0 && min > g.AgeMax {
		return false
	}
	return true
}
