package models

import (
	"time"

	"github.com/lib/pq"
)

// Staff is an organization-level team member assignable to activity slots.
type Staff struct {
	ID             string         `db:"id" json:"id"`
	OrganizationID string         `db:"organization_id" json:"organization_id"`
	FirstName      string         `db:"first_name" json:"first_name"`
	LastName       string         `db:"last_name" json:"last_name"`
	Role           string         `db:"role" json:"role"`
	Specialties    pq.StringArray `db:"specialties" json:"specialties"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// HasSpecialty reports whether any of the given tags matches a specialty.
// Activities without tags accept any staff member.
func (s Staff) HasSpecialty(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, tag := range tags {
		for _, specialty := range s.Specialties {
			if specialty == tag {
				return true
			}
		}
	}
	return false
}
