package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// ConstraintKind discriminates the parameter payload of a constraint.
type ConstraintKind string

const (
	ConstraintTimeWindow          ConstraintKind = "time_window"
	ConstraintSequencing          ConstraintKind = "sequencing"
	ConstraintMaxPerDay           ConstraintKind = "max_per_day"
	ConstraintRepeatGap           ConstraintKind = "repeat_gap"
	ConstraintAgeGender           ConstraintKind = "age_gender"
	ConstraintFacilityExclusivity ConstraintKind = "facility_exclusivity"
	ConstraintStaffAvailability   ConstraintKind = "staff_availability"
	ConstraintWeatherDependency   ConstraintKind = "weather_dependency"
	ConstraintBlackout            ConstraintKind = "blackout"
	ConstraintCapacity            ConstraintKind = "capacity"
)

// ConstraintSeverity splits blocking rules from advisory ones.
type ConstraintSeverity string

const (
	SeverityHard ConstraintSeverity = "hard"
	SeveritySoft ConstraintSeverity = "soft"
)

// Constraint is a configurable scheduling rule scoped to an organization or
// narrowed to a session/activity/facility/group/staff subset. Params carries
// the kind-specific payload; decode it with DecodeParams.
type Constraint struct {
	ID             string             `db:"id" json:"id"`
	OrganizationID string             `db:"organization_id" json:"organization_id"`
	SessionID      *string            `db:"session_id" json:"session_id,omitempty"`
	Kind           ConstraintKind     `db:"kind" json:"kind"`
	ActivityID     *string            `db:"activity_id" json:"activity_id,omitempty"`
	FacilityID     *string            `db:"facility_id" json:"facility_id,omitempty"`
	GroupID        *string            `db:"group_id" json:"group_id,omitempty"`
	StaffID        *string            `db:"staff_id" json:"staff_id,omitempty"`
	Params         types.JSONText     `db:"params" json:"params"`
	Severity       ConstraintSeverity `db:"severity" json:"severity"`
	IsActive       bool               `db:"is_active" json:"is_active"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `db:"updated_at" json:"updated_at"`
}

// TimeWindowParams restricts an activity to a daily window.
type TimeWindowParams struct {
	NotBefore string `json:"not_before,omitempty"`
	NotAfter  string `json:"not_after,omitempty"`
}

// SequencingParams requires one activity to precede another the same day.
type SequencingParams struct {
	BeforeActivityID string `json:"before_activity_id"`
	AfterActivityID  string `json:"after_activity_id"`
}

// MaxPerDayParams caps repetitions of the target activity per group per day.
type MaxPerDayParams struct {
	Max int `json:"max"`
}

// RepeatGapParams requires a minimum gap between repeats of the target
// activity for the same group.
type RepeatGapParams struct {
	MinGapMinutes int `json:"min_gap_minutes"`
}

// AgeGenderParams narrows the target activity to an age range and/or gender.
type AgeGenderParams struct {
	MinAge int    `json:"min_age,omitempty"`
	MaxAge int    `json:"max_age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// FacilityExclusivityParams controls concurrent bookings of the target
// facility. MaxConcurrent of zero means exclusive use.
type FacilityExclusivityParams struct {
	MaxConcurrent int `json:"max_concurrent"`
}

// StaffAvailabilityParams blocks a staff member during daily windows on the
// listed dates (all dates when empty).
type StaffAvailabilityParams struct {
	Dates     []string `json:"dates,omitempty"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// WeatherDependencyParams forbids the target activity under the listed
// conditions.
type WeatherDependencyParams struct {
	ForbiddenConditions []string `json:"forbidden_conditions"`
}

// BlackoutParams forbids scheduling inside a date span, optionally narrowed
// to a daily time window.
type BlackoutParams struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// CapacityParams overrides participant bounds for the target activity or
// facility.
type CapacityParams struct {
	MinParticipants int `json:"min_participants,omitempty"`
	MaxParticipants int `json:"max_participants,omitempty"`
}

// DecodeParams unmarshals the kind-specific parameter payload. The returned
// value is a pointer to the parameter struct matching the constraint kind.
func (c Constraint) DecodeParams() (interface{}, error) {
	var target interface{}
	switch c.Kind {
	case ConstraintTimeWindow:
		target = &TimeWindowParams{}
	case ConstraintSequencing:
		target = &SequencingParams{}
	case ConstraintMaxPerDay:
		target = &MaxPerDayParams{}
	case ConstraintRepeatGap:
		target = &RepeatGapParams{}
	case ConstraintAgeGender:
		target = &AgeGenderParams{}
	case ConstraintFacilityExclusivity:
		target = &FacilityExclusivityParams{}
	case ConstraintStaffAvailability:
		target = &StaffAvailabilityParams{}
	case ConstraintWeatherDependency:
		target = &WeatherDependencyParams{}
	case ConstraintBlackout:
		target = &BlackoutParams{}
	case ConstraintCapacity:
		target = &CapacityParams{}
	default:
		return nil, fmt.Errorf("unknown constraint kind %q", c.Kind)
	}
	if len(c.Params) == 0 {
		return target, nil
	}
	if err := json.Unmarshal(c.Params, target); err != nil {
		return nil, fmt.Errorf("decode %s params: %w", c.Kind, err)
	}
	return target, nil
}

// AppliesToActivity reports whether the constraint targets the activity
// (untargeted constraints apply to all).
func (c Constraint) AppliesToActivity(activityID string) bool {
	return c.ActivityID == nil || *c.ActivityID == "" || *c.ActivityID == activityID
}

// AppliesToFacility reports whether the constraint targets the facility.
func (c Constraint) AppliesToFacility(facilityID string) bool {
	return c.FacilityID == nil || *c.FacilityID == "" || *c.FacilityID == facilityID
}

// AppliesToGroup reports whether the constraint targets the group.
func (c Constraint) AppliesToGroup(groupID string) bool {
	return c.GroupID == nil || *c.GroupID == "" || *c.GroupID == groupID
}
