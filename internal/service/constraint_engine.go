package service

import (
	"fmt"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// Assignment is a proposed (activity, facility, staff) binding for a slot,
// evaluated against the current grid before being committed.
type Assignment struct {
	Slot       models.ScheduleSlot
	ActivityID string
	FacilityID *string
	StaffIDs   []string
}

// Verdict is the outcome of evaluating an assignment. Any hard reason blocks
// the assignment; soft reasons are recorded but non-blocking. The set of
// soft reasons always includes every triggered soft constraint.
type Verdict struct {
	Hard []string
	Soft []string
}

// Allowed reports whether no hard constraint was violated.
func (v Verdict) Allowed() bool {
	return len(v.Hard) == 0
}

// EvaluateAssignment runs every applicable active constraint against the
// candidate. Evaluation order never changes the Allowed outcome: hard
// failures are commutative, and all triggered soft reasons are collected.
func EvaluateAssignment(candidate Assignment, snap *ScheduleSnapshot, constraints []models.Constraint) Verdict {
	var verdict Verdict
	for _, constraint := range constraints {
		if !constraint.IsActive {
			continue
		}
		if constraint.SessionID != nil && *constraint.SessionID != "" && *constraint.SessionID != snap.Session.ID {
			continue
		}
		violated, reason := evaluateOne(constraint, candidate, snap)
		if !violated {
			continue
		}
		if constraint.Severity == models.SeverityHard {
			verdict.Hard = append(verdict.Hard, reason)
		} else {
			verdict.Soft = append(verdict.Soft, reason)
		}
	}
	return verdict
}

func evaluateOne(constraint models.Constraint, candidate Assignment, snap *ScheduleSnapshot) (bool, string) {
	params, err := constraint.DecodeParams()
	if err != nil {
		// Undecodable rules are skipped rather than blocking the grid.
		return false, ""
	}
	switch p := params.(type) {
	case *models.TimeWindowParams:
		return evalTimeWindow(constraint, *p, candidate)
	case *models.SequencingParams:
		return evalSequencing(constraint, *p, candidate, snap)
	case *models.MaxPerDayParams:
		return evalMaxPerDay(constraint, *p, candidate, snap)
	case *models.RepeatGapParams:
		return evalRepeatGap(constraint, *p, candidate, snap)
	case *models.AgeGenderParams:
		return evalAgeGender(constraint, *p, candidate, snap)
	case *models.FacilityExclusivityParams:
		return evalFacilityExclusivity(constraint, *p, candidate, snap)
	case *models.StaffAvailabilityParams:
		return evalStaffAvailability(constraint, *p, candidate)
	case *models.WeatherDependencyParams:
		return evalWeatherDependency(constraint, *p, candidate, snap)
	case *models.BlackoutParams:
		return evalBlackout(*p, candidate)
	case *models.CapacityParams:
		return evalCapacity(constraint, *p, candidate, snap)
	}
	return false, ""
}

func evalTimeWindow(constraint models.Constraint, p models.TimeWindowParams, candidate Assignment) (bool, string) {
	if !constraint.AppliesToActivity(candidate.ActivityID) {
		return false, ""
	}
	start := models.MinutesOfDay(candidate.Slot.StartTime)
	end := models.MinutesOfDay(candidate.Slot.EndTime)
	if p.NotBefore != "" {
		if floor := models.MinutesOfDay(p.NotBefore); floor >= 0 && start < floor {
			return true, fmt.Sprintf("activity must not start before %s", p.NotBefore)
		}
	}
	if p.NotAfter != "" {
		if ceil := models.MinutesOfDay(p.NotAfter); ceil >= 0 && end > ceil {
			return true, fmt.Sprintf("activity must finish by %s", p.NotAfter)
		}
	}
	return false, ""
}

// evalSequencing tolerates partially-filled grids: an assignment not yet
// made is unknown, never treated as absent, so only an observed inversion
// violates the rule.
func evalSequencing(constraint models.Constraint, p models.SequencingParams, candidate Assignment, snap *ScheduleSnapshot) (bool, string) {
	if !constraint.AppliesToGroup(candidate.Slot.GroupID) {
		return false, ""
	}
	if p.BeforeActivityID == "" || p.AfterActivityID == "" {
		return false, ""
	}
	daySlots := snap.GroupSlotsOn(candidate.Slot.GroupID, candidate.Slot.Date)
	startOf := func(activityID string) int {
		if candidate.ActivityID == activityID {
			return models.MinutesOfDay(candidate.Slot.StartTime)
		}
		for _, slot := range daySlots {
			if slot.ID == candidate.Slot.ID {
				continue
			}
			if slot.IsAssigned() && *slot.ActivityID == activityID {
				return models.MinutesOfDay(slot.StartTime)
			}
		}
		return -1
	}
	before := startOf(p.BeforeActivityID)
	after := startOf(p.AfterActivityID)
	if before < 0 || after < 0 {
		return false, ""
	}
	if after < before {
		return true, fmt.Sprintf("activity %s must come after %s", p.AfterActivityID, p.BeforeActivityID)
	}
	return false, ""
}

func evalMaxPerDay(constraint models.Constraint, p models.MaxPerDayParams, candidate Assignment, snap *ScheduleSnapshot) (bool, string) {
	if !constraint.AppliesToActivity(candidate.ActivityID) || p.Max <= 0 {
		return false, ""
	}
	day, _ := snap.ActivityUses(candidate.ActivityID, candidate.Slot.GroupID, candidate.Slot.Date)
	if day+1 > p.Max {
		return true, fmt.Sprintf("activity exceeds %d occurrence(s) per day for the group", p.Max)
	}
	return false, ""
}

func evalRepeatGap(constraint models.Constraint, p models.RepeatGapParams, candidate Assignment, snap *ScheduleSnapshot) (bool, string) {
	if !constraint.AppliesToActivity(candidate.ActivityID) || p.MinGapMinutes <= 0 {
		return false, ""
	}
	candStart := models.MinutesOfDay(candidate.Slot.StartTime)
	candEnd := models.MinutesOfDay(candidate.Slot.EndTime)
	for _, slot := range snap.GroupSlotsOn(candidate.Slot.GroupID, candidate.Slot.Date) {
		if slot.ID == candidate.Slot.ID || !slot.IsAssigned() || *slot.ActivityID != candidate.ActivityID {
			continue
		}
		gap := candStart - models.MinutesOfDay(slot.EndTime)
		if candEnd <= models.MinutesOfDay(slot.StartTime) {
			gap = models.MinutesOfDay(slot.StartTime) - candEnd
		}
		if gap < p.MinGapMinutes {
			return true, fmt.Sprintf("repeat of the activity within %d minute gap", p.MinGapMinutes)
		}
	}
	return false, ""
}

func evalAgeGender(constraint models.Constraint, p models.AgeGenderParams, candidate Assignment, snap *ScheduleSnapshot) (bool, string) {
	if !constraint.AppliesToActivity(candidate.ActivityID) {
		return false, ""
	}
	group, ok := snap.Group(candidate.Slot.GroupID)
	if !ok {
		return false, ""
	}
	if p.MinAge > 0 && group.AgeMin < p.MinAge {
		return true, fmt.Sprintf("group minimum age %d is below the required %d", group.AgeMin, p.MinAge)
	}
	if p.MaxAge > 0 && group.AgeMax > p.MaxAge {
		return true, fmt.Sprintf("group maximum age %d is above the allowed %d", group.AgeMax, p.MaxAge)
	}
	if p.Gender != "" && string(group.Gender) != p.Gender {
		return true, fmt.Sprintf("activity is restricted to %s groups", p.Gender)
	}
	return false, ""
}

func evalFacilityExclusivity(constraint models.Constraint, p models.FacilityExclusivityParams, candidate Assignment, snap *ScheduleSnapshot) (bool, string) {
	if candidate.FacilityID == nil || !constraint.AppliesToFacility(*candidate.FacilityID) {
		return false, ""
	}
	bookings := snap.FacilityBookings(*candidate.FacilityID, candidate.Slot.Date, candidate.Slot.StartTime, candidate.Slot.EndTime, candidate.Slot.ID)
	if p.MaxConcurrent <= 0 && len(bookings) > 0 {
		return true, "facility requires exclusive use"
	}
	if p.MaxConcurrent > 0 && len(bookings)+1 > p.MaxConcurrent {
		return true, fmt.Sprintf("facility allows at most %d concurrent booking(s)", p.MaxConcurrent)
	}
	return false, ""
}

func evalStaffAvailability(constraint models.Constraint, p models.StaffAvailabilityParams, candidate Assignment) (bool, string) {
	if constraint.StaffID == nil || *constraint.StaffID == "" {
		return false, ""
	}
	assigned := false
	for _, id := range candidate.StaffIDs {
		if id == *constraint.StaffID {
			assigned = true
			break
		}
	}
	if !assigned {
		return false, ""
	}
	if len(p.Dates) > 0 {
		match := false
		for _, date := range p.Dates {
			if date == candidate.Slot.Date {
				match = true
				break
			}
		}
		if !match {
			return false, ""
		}
	}
	blockStart := models.MinutesOfDay(p.StartTime)
	blockEnd := models.MinutesOfDay(p.EndTime)
	slotStart := models.MinutesOfDay(candidate.Slot.StartTime)
	slotEnd := models.MinutesOfDay(candidate.Slot.EndTime)
	if blockStart < 0 || blockEnd < 0 {
		return true, "staff member is unavailable that day"
	}
	if slotStart < blockEnd && blockStart < slotEnd {
		return true, fmt.Sprintf("staff member is unavailable between %s and %s", p.StartTime, p.EndTime)
	}
	return false, ""
}

func evalWeatherDependency(constraint models.Constraint, p models.WeatherDependencyParams, candidate Assignment, snap *ScheduleSnapshot) (bool, string) {
	if !constraint.AppliesToActivity(candidate.ActivityID) {
		return false, ""
	}
	condition, known := snap.Weather[candidate.Slot.Date]
	if !known {
		return false, ""
	}
	for _, forbidden := range p.ForbiddenConditions {
		if models.WeatherCondition(forbidden) == condition {
			return true, fmt.Sprintf("activity is not allowed in %s weather", condition)
		}
	}
	return false, ""
}

func evalBlackout(p models.BlackoutParams, candidate Assignment) (bool, string) {
	if p.StartDate == "" || p.EndDate == "" {
		return false, ""
	}
	if candidate.Slot.Date < p.StartDate || candidate.Slot.Date > p.EndDate {
		return false, ""
	}
	if p.StartTime != "" && p.EndTime != "" {
		slotStart := models.MinutesOfDay(candidate.Slot.StartTime)
		slotEnd := models.MinutesOfDay(candidate.Slot.EndTime)
		blockStart := models.MinutesOfDay(p.StartTime)
		blockEnd := models.MinutesOfDay(p.EndTime)
		if !(slotStart < blockEnd && blockStart < slotEnd) {
			return false, ""
		}
	}
	return true, fmt.Sprintf("blackout period %s to %s", p.StartDate, p.EndDate)
}

func evalCapacity(constraint models.Constraint, p models.CapacityParams, candidate Assignment, snap *ScheduleSnapshot) (bool, string) {
	if !constraint.AppliesToActivity(candidate.ActivityID) {
		return false, ""
	}
	if candidate.FacilityID != nil && !constraint.AppliesToFacility(*candidate.FacilityID) {
		return false, ""
	}
	group, ok := snap.Group(candidate.Slot.GroupID)
	if !ok {
		return false, ""
	}
	if p.MinParticipants > 0 && group.CurrentCount < p.MinParticipants {
		return true, fmt.Sprintf("group of %d is below the %d participant minimum", group.CurrentCount, p.MinParticipants)
	}
	if p.MaxParticipants > 0 && group.CurrentCount > p.MaxParticipants {
		return true, fmt.Sprintf("group of %d exceeds the %d participant maximum", group.CurrentCount, p.MaxParticipants)
	}
	return false, ""
}
