package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

// WeatherEngine evaluates a per-day forecast against the committed grid and
// proposes substitutions for incompatible assignments. Proposals never touch
// the grid; applying a selection is an ordinary batch of slot updates.
type WeatherEngine struct {
	durationToleranceMin int
}

// NewWeatherEngine constructs the engine. durationToleranceMin bounds how far
// a substitute's duration may drift from the slot window; zero falls back
// to 30.
func NewWeatherEngine(durationToleranceMin int) *WeatherEngine {
	if durationToleranceMin <= 0 {
		durationToleranceMin = 30
	}
	return &WeatherEngine{durationToleranceMin: durationToleranceMin}
}

// CheckImpact marks slots whose activity cannot run under the supplied
// forecast and proposes at most one substitute per affected slot. Slots
// without a viable substitute surface as warnings.
func (w *WeatherEngine) CheckImpact(snap *ScheduleSnapshot, forecast []models.WeatherAssignment) (*dto.WeatherImpactResponse, error) {
	byDate := make(map[string]models.WeatherCondition, len(forecast))
	for _, day := range forecast {
		if day.Date == "" || day.Condition == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "weather entries need both a date and a condition")
		}
		byDate[day.Date] = day.Condition
	}
	snap.Weather = byDate

	response := &dto.WeatherImpactResponse{
		Affected:      []dto.AffectedSlot{},
		Warnings:      []string{},
		Substitutions: []models.Substitution{},
	}
	for _, slot := range snap.Slots {
		if !slot.IsAssigned() {
			continue
		}
		condition, known := byDate[slot.Date]
		if !known {
			continue
		}
		activity, ok := snap.Activity(*slot.ActivityID)
		if !ok {
			continue
		}
		var facility *models.Facility
		if slot.FacilityID != nil {
			if f, found := snap.Facility(*slot.FacilityID); found {
				facility = &f
			}
		}
		if weatherCompatible(activity, condition, facility) {
			continue
		}
		response.Affected = append(response.Affected, dto.AffectedSlot{
			SlotID:       slot.ID,
			Date:         slot.Date,
			Condition:    condition,
			ActivityID:   activity.ID,
			ActivityName: activity.Name,
		})
		substitution, found := w.proposeSubstitute(snap, slot, activity, condition)
		if !found {
			response.Warnings = append(response.Warnings, fmt.Sprintf("no substitute available for %s on %s (%s)", activity.Name, slot.Date, condition))
			continue
		}
		response.Substitutions = append(response.Substitutions, substitution)
	}
	return response, nil
}

// weatherCompatible decides whether an activity can run under a condition at
// a facility. An explicit allow-list wins; without one, severe weather only
// rules out activities lacking an indoor venue.
func weatherCompatible(activity models.Activity, condition models.WeatherCondition, facility *models.Facility) bool {
	if !activity.WeatherDependent {
		return true
	}
	if len(activity.AllowedWeather) > 0 {
		return activity.AllowsWeather(condition)
	}
	if !condition.IsSevere() {
		return true
	}
	return facility != nil && facility.Indoor
}

// proposeSubstitute searches for an age-fit, weather-safe activity whose
// duration fits the slot window within tolerance, with a facility free in
// the window. Ties break on activity name, then id.
func (w *WeatherEngine) proposeSubstitute(snap *ScheduleSnapshot, slot models.ScheduleSlot, original models.Activity, condition models.WeatherCondition) (models.Substitution, bool) {
	group, hasGroup := snap.Group(slot.GroupID)
	window := models.MinutesOfDay(slot.EndTime) - models.MinutesOfDay(slot.StartTime)

	candidates := make([]models.Activity, 0, len(snap.Activities))
	for _, activity := range snap.Activities {
		if !activity.IsActive || activity.ID == original.ID {
			continue
		}
		if hasGroup && !activity.FitsAge(group.AgeMin, group.AgeMax) {
			continue
		}
		if hasGroup && activity.MaxParticipants > 0 && group.CurrentCount > activity.MaxParticipants {
			continue
		}
		if activity.DurationMinutes > 0 && window > 0 {
			drift := activity.DurationMinutes - window
			if drift < 0 {
				drift = -drift
			}
			if drift > w.durationToleranceMin {
				continue
			}
		}
		candidates = append(candidates, activity)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Name != candidates[j].Name {
			return candidates[i].Name < candidates[j].Name
		}
		return candidates[i].ID < candidates[j].ID
	})

	for _, candidate := range candidates {
		facilityID, ok := w.substituteFacility(snap, slot, group, candidate, condition)
		if !ok {
			continue
		}
		var facility *models.Facility
		if facilityID != nil {
			if f, found := snap.Facility(*facilityID); found {
				facility = &f
			}
		}
		if !weatherCompatible(candidate, condition, facility) {
			continue
		}
		proposal := Assignment{Slot: slot, ActivityID: candidate.ID, FacilityID: facilityID, StaffIDs: slot.StaffIDs}
		if !EvaluateAssignment(proposal, snap, snap.Constraints).Allowed() {
			continue
		}
		return models.Substitution{
			SlotID:               slot.ID,
			OriginalActivityID:   original.ID,
			OriginalActivityName: original.Name,
			SubstituteActivityID: candidate.ID,
			SubstituteName:       candidate.Name,
			FacilityID:           facilityID,
			Reason:               fmt.Sprintf("%s cannot run in %s weather", original.Name, condition),
		}, true
	}
	return models.Substitution{}, false
}

// substituteFacility keeps the slot's facility when it still works for the
// candidate, otherwise looks for a free venue, preferring indoor ones under
// severe conditions.
func (w *WeatherEngine) substituteFacility(snap *ScheduleSnapshot, slot models.ScheduleSlot, group models.Group, candidate models.Activity, condition models.WeatherCondition) (*string, bool) {
	usable := func(facility models.Facility) bool {
		if !facility.IsActive {
			return false
		}
		if facility.Capacity > 0 && facility.Capacity < group.CurrentCount {
			return false
		}
		if condition.IsSevere() && candidate.WeatherDependent && len(candidate.AllowedWeather) == 0 && !facility.Indoor {
			return false
		}
		return len(snap.FacilityBookings(facility.ID, slot.Date, slot.StartTime, slot.EndTime, slot.ID)) == 0
	}

	if slot.FacilityID != nil {
		if current, found := snap.Facility(*slot.FacilityID); found && usable(current) {
			id := current.ID
			return &id, true
		}
	}

	ordered := make([]models.Facility, 0, len(snap.Facilities))
	for _, facility := range snap.Facilities {
		ordered = append(ordered, facility)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Indoor != ordered[j].Indoor {
			return ordered[i].Indoor
		}
		if ordered[i].Capacity != ordered[j].Capacity {
			return ordered[i].Capacity < ordered[j].Capacity
		}
		return ordered[i].ID < ordered[j].ID
	})
	for _, facility := range ordered {
		if usable(facility) {
			id := facility.ID
			return &id, true
		}
	}
	if !candidate.WeatherDependent && slot.FacilityID == nil {
		// Indoor-agnostic activities can run without a booked venue.
		return nil, true
	}
	return nil, false
}

// ApplySubstitutions validates every selection against the grid and, only if
// all pass, returns the updated slots. A single bad selection rejects the
// whole batch unchanged.
func (w *WeatherEngine) ApplySubstitutions(snap *ScheduleSnapshot, selections []dto.SelectedSubstitution) ([]models.ScheduleSlot, []dto.SubstitutionFailure, error) {
	if len(selections) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "no substitutions selected")
	}

	slotIndex := make(map[string]int, len(snap.Slots))
	for i, slot := range snap.Slots {
		slotIndex[slot.ID] = i
	}

	var failures []dto.SubstitutionFailure
	seen := make(map[string]struct{}, len(selections))
	for _, selection := range selections {
		if _, dup := seen[selection.SlotID]; dup {
			failures = append(failures, dto.SubstitutionFailure{SlotID: selection.SlotID, Reason: "slot selected more than once"})
			continue
		}
		seen[selection.SlotID] = struct{}{}

		idx, ok := slotIndex[selection.SlotID]
		if !ok {
			failures = append(failures, dto.SubstitutionFailure{SlotID: selection.SlotID, Reason: "slot not found in the session grid"})
			continue
		}
		if !snap.Slots[idx].IsAssigned() {
			failures = append(failures, dto.SubstitutionFailure{SlotID: selection.SlotID, Reason: "slot has no assignment to substitute"})
			continue
		}
		activity, ok := snap.Activity(selection.ActivityID)
		if !ok || !activity.IsActive {
			failures = append(failures, dto.SubstitutionFailure{SlotID: selection.SlotID, Reason: fmt.Sprintf("substitute activity %s not available", selection.ActivityID)})
			continue
		}
		if selection.FacilityID != nil {
			if _, ok := snap.Facility(*selection.FacilityID); !ok {
				failures = append(failures, dto.SubstitutionFailure{SlotID: selection.SlotID, Reason: fmt.Sprintf("facility %s not found", *selection.FacilityID)})
			}
		}
	}
	if len(failures) > 0 {
		return nil, failures, nil
	}

	updated := make([]models.ScheduleSlot, 0, len(selections))
	for _, selection := range selections {
		idx := slotIndex[selection.SlotID]
		activityID := selection.ActivityID
		snap.Slots[idx].ActivityID = &activityID
		if selection.FacilityID != nil {
			snap.Slots[idx].FacilityID = selection.FacilityID
		}
		updated = append(updated, snap.Slots[idx])
	}
	return updated, nil, nil
}
