package dto

import "github.com/noah-isme/camp-ops-api/internal/models"

// BuildGridRequest expands a day template into empty schedule slots for a
// session. TemplateByDate overrides the default template for specific dates;
// a date mapped to an empty string stays unstructured.
type BuildGridRequest struct {
	DayTemplateID  string            `json:"dayTemplateId" validate:"required"`
	TemplateByDate map[string]string `json:"templateByDate,omitempty" validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys"`
}

// BuildGridResponse summarises a grid build.
type BuildGridResponse struct {
	Created int                   `json:"created"`
	Skipped int                   `json:"skipped"`
	Slots   []models.ScheduleSlot `json:"slots"`
}

// AutoScheduleRequest runs the assignment solver over the session grid.
type AutoScheduleRequest struct {
	MaxAttemptsPerSlot int `json:"maxAttemptsPerSlot" validate:"omitempty,min=1,max=500"`
}

// UnfillableSlot records a slot the solver could not fill and why.
type UnfillableSlot struct {
	SlotID string `json:"slotId"`
	Reason string `json:"reason"`
}

// AutoScheduleResponse reports the solver outcome. Unfillable slots are a
// valid, expected output, not an error.
type AutoScheduleResponse struct {
	Filled       int                   `json:"filled"`
	Understaffed int                   `json:"understaffed"`
	Unfillable   []UnfillableSlot      `json:"unfillable"`
	SoftWarnings []string              `json:"softWarnings,omitempty"`
	Slots        []models.ScheduleSlot `json:"slots"`
}

// UpdateSlotRequest is a manual assignment edit on one slot.
type UpdateSlotRequest struct {
	ActivityID *string  `json:"activityId"`
	FacilityID *string  `json:"facilityId"`
	StaffIDs   []string `json:"staffIds"`
	Notes      string   `json:"notes"`
}

// ConflictReport is the detector output for a session grid.
type ConflictReport struct {
	SessionID string            `json:"sessionId"`
	Conflicts []models.Conflict `json:"conflicts"`
	Critical  int               `json:"critical"`
	Warnings  int               `json:"warnings"`
	Info      int               `json:"info"`
}

// SlotFilter narrows slot listings.
type SlotFilter struct {
	Date       string `form:"date"`
	GroupID    string `form:"groupId"`
	FacilityID string `form:"facilityId"`
}
