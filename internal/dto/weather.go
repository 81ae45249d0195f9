package dto

import "github.com/noah-isme/camp-ops-api/internal/models"

// WeatherImpactRequest supplies the per-day forecast for a session.
type WeatherImpactRequest struct {
	Weather []models.WeatherAssignment `json:"weather" validate:"required,min=1,dive"`
}

// AffectedSlot is a slot whose assigned activity is incompatible with the
// day's condition.
type AffectedSlot struct {
	SlotID       string                  `json:"slotId"`
	Date         string                  `json:"date"`
	Condition    models.WeatherCondition `json:"condition"`
	ActivityID   string                  `json:"activityId"`
	ActivityName string                  `json:"activityName"`
}

// WeatherImpactResponse reports affected slots and substitution proposals.
// Slots without a compatible substitute appear in Affected and Warnings but
// not in Substitutions.
type WeatherImpactResponse struct {
	Affected      []AffectedSlot        `json:"affectedSlots"`
	Warnings      []string              `json:"warnings"`
	Substitutions []models.Substitution `json:"substitutions"`
}

// ApplySubstitutionsRequest applies a selected subset of proposals. The
// apply is all-or-nothing: either every selection is written or none.
type ApplySubstitutionsRequest struct {
	Substitutions []SelectedSubstitution `json:"substitutions" validate:"required,min=1,dive"`
}

// SelectedSubstitution pins one proposal to a slot.
type SelectedSubstitution struct {
	SlotID     string  `json:"slotId" validate:"required"`
	ActivityID string  `json:"activityId" validate:"required"`
	FacilityID *string `json:"facilityId"`
	Reason     string  `json:"reason"`
}

// ApplySubstitutionsResponse reports the applied updates and the re-run
// conflict summary.
type ApplySubstitutionsResponse struct {
	Applied   int               `json:"applied"`
	Conflicts []models.Conflict `json:"conflicts"`
}

// SubstitutionFailure explains why one selection could not be applied.
type SubstitutionFailure struct {
	SlotID string `json:"slotId"`
	Reason string `json:"reason"`
}
