package models

import (
	"time"

	"github.com/lib/pq"
)

// Activity is an organization-level resource reusable across sessions.
type Activity struct {
	ID                 string         `db:"id" json:"id"`
	OrganizationID     string         `db:"organization_id" json:"organization_id"`
	Name               string         `db:"name" json:"name"`
	DurationMinutes    int            `db:"duration_minutes" json:"duration_minutes"`
	MinParticipants    int            `db:"min_participants" json:"min_participants"`
	MaxParticipants    int            `db:"max_participants" json:"max_participants"`
	MinAge             int            `db:"min_age" json:"min_age"`
	MaxAge             int            `db:"max_age" json:"max_age"`
	RequiredStaffCount int            `db:"required_staff_count" json:"required_staff_count"`
	WeatherDependent   bool           `db:"weather_dependent" json:"weather_dependent"`
	AllowedWeather     pq.StringArray `db:"allowed_weather" json:"allowed_weather"`
	Tags               pq.StringArray `db:"tags" json:"tags"`
	IsActive           bool           `db:"is_active" json:"is_active"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// AllowsWeather reports whether the explicit allow-list admits the condition.
// An empty list means no explicit policy.
func (a Activity) AllowsWeather(condition WeatherCondition) bool {
	for _, allowed := range a.AllowedWeather {
		if WeatherCondition(allowed) == condition {
			return true
		}
	}
	return false
}

// FitsAge reports whether a group age window fits inside the activity's
// admissible range.
func (a Activity) FitsAge(ageMin, ageMax int) bool {
	if a.MinAge > 0 && ageMin < a.MinAge {
		return false
	}
	if a.MaxAge > 0 && ageMax > 0 && ageMax > a.MaxAge {
		return false
	}
	return true
}
