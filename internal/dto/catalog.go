package dto

import "encoding/json"

// CreateActivityRequest registers a reusable activity for an organization.
type CreateActivityRequest struct {
	OrganizationID     string   `json:"organizationId" validate:"required"`
	Name               string   `json:"name" validate:"required,min=1,max=120"`
	DurationMinutes    int      `json:"durationMinutes" validate:"required,min=5,max=720"`
	MinParticipants    int      `json:"minParticipants" validate:"omitempty,min=1"`
	MaxParticipants    int      `json:"maxParticipants" validate:"omitempty,min=1"`
	MinAge             int      `json:"minAge" validate:"omitempty,min=1,max=25"`
	MaxAge             int      `json:"maxAge" validate:"omitempty,min=1,max=25"`
	RequiredStaffCount int      `json:"requiredStaffCount" validate:"omitempty,min=0,max=20"`
	WeatherDependent   bool     `json:"weatherDependent"`
	AllowedWeather     []string `json:"allowedWeather" validate:"omitempty,dive,oneof=sunny cloudy rainy stormy"`
	Tags               []string `json:"tags" validate:"omitempty,dive,min=1"`
}

// UpdateActivityRequest edits an activity. Nil pointers leave fields as-is.
type UpdateActivityRequest struct {
	Name               *string  `json:"name" validate:"omitempty,min=1,max=120"`
	DurationMinutes    *int     `json:"durationMinutes" validate:"omitempty,min=5,max=720"`
	MinParticipants    *int     `json:"minParticipants" validate:"omitempty,min=1"`
	MaxParticipants    *int     `json:"maxParticipants" validate:"omitempty,min=1"`
	MinAge             *int     `json:"minAge" validate:"omitempty,min=1,max=25"`
	MaxAge             *int     `json:"maxAge" validate:"omitempty,min=1,max=25"`
	RequiredStaffCount *int     `json:"requiredStaffCount" validate:"omitempty,min=0,max=20"`
	WeatherDependent   *bool    `json:"weatherDependent"`
	AllowedWeather     []string `json:"allowedWeather" validate:"omitempty,dive,oneof=sunny cloudy rainy stormy"`
	Tags               []string `json:"tags" validate:"omitempty,dive,min=1"`
	IsActive           *bool    `json:"isActive"`
}

// CreateFacilityRequest registers a bookable venue.
type CreateFacilityRequest struct {
	OrganizationID string `json:"organizationId" validate:"required"`
	Name           string `json:"name" validate:"required,min=1,max=120"`
	Capacity       int    `json:"capacity" validate:"omitempty,min=1"`
	Indoor         bool   `json:"indoor"`
}

// UpdateFacilityRequest edits a facility.
type UpdateFacilityRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Capacity *int    `json:"capacity" validate:"omitempty,min=1"`
	Indoor   *bool   `json:"indoor"`
	IsActive *bool   `json:"isActive"`
}

// CreateStaffRequest registers a team member.
type CreateStaffRequest struct {
	OrganizationID string   `json:"organizationId" validate:"required"`
	FirstName      string   `json:"firstName" validate:"required,min=1,max=80"`
	LastName       string   `json:"lastName" validate:"required,min=1,max=80"`
	Role           string   `json:"role" validate:"omitempty,max=60"`
	Specialties    []string `json:"specialties" validate:"omitempty,dive,min=1"`
}

// UpdateStaffRequest edits a staff member.
type UpdateStaffRequest struct {
	FirstName   *string  `json:"firstName" validate:"omitempty,min=1,max=80"`
	LastName    *string  `json:"lastName" validate:"omitempty,min=1,max=80"`
	Role        *string  `json:"role" validate:"omitempty,max=60"`
	Specialties []string `json:"specialties" validate:"omitempty,dive,min=1"`
	IsActive    *bool    `json:"isActive"`
}

// CreateConstraintRequest registers a scheduling rule. Params carries the
// kind-specific JSON payload and is validated against the kind on create.
type CreateConstraintRequest struct {
	OrganizationID string          `json:"organizationId" validate:"required"`
	SessionID      *string         `json:"sessionId"`
	Kind           string          `json:"kind" validate:"required,oneof=time_window sequencing max_per_day repeat_gap age_gender facility_exclusivity staff_availability weather_dependency blackout capacity"`
	ActivityID     *string         `json:"activityId"`
	FacilityID     *string         `json:"facilityId"`
	GroupID        *string         `json:"groupId"`
	StaffID        *string         `json:"staffId"`
	Params         json.RawMessage `json:"params"`
	Severity       string          `json:"severity" validate:"required,oneof=hard soft"`
}

// UpdateConstraintRequest edits a rule's payload, severity, or active flag.
type UpdateConstraintRequest struct {
	Params   json.RawMessage `json:"params"`
	Severity *string         `json:"severity" validate:"omitempty,oneof=hard soft"`
	IsActive *bool           `json:"isActive"`
}

// DayTemplateSlotRequest is one time range inside a template definition.
type DayTemplateSlotRequest struct {
	StartTime     string `json:"startTime" validate:"required,len=5"`
	EndTime       string `json:"endTime" validate:"required,len=5"`
	SlotType      string `json:"slotType" validate:"required,oneof=activity meal break rest free assembly transition"`
	IsSchedulable *bool  `json:"isSchedulable"`
}

// CreateDayTemplateRequest registers a reusable daily skeleton.
type CreateDayTemplateRequest struct {
	OrganizationID string                   `json:"organizationId" validate:"required"`
	Name           string                   `json:"name" validate:"required,min=1,max=120"`
	Slots          []DayTemplateSlotRequest `json:"slots" validate:"required,min=1,dive"`
}
