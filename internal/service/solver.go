package service

import (
	"fmt"
	"sort"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

// Solver fills empty schedule slots with consistent (activity, facility,
// staff) triples using a greedy heuristic with a bounded candidate budget
// per slot. It never overwrites an assignment already present in the grid;
// resource scarcity yields unfillable slots, not errors.
type Solver struct {
	maxAttemptsPerSlot int
}

// NewSolver constructs a solver. maxAttemptsPerSlot bounds local search per
// slot; zero falls back to 24.
func NewSolver(maxAttemptsPerSlot int) *Solver {
	if maxAttemptsPerSlot <= 0 {
		maxAttemptsPerSlot = 24
	}
	return &Solver{maxAttemptsPerSlot: maxAttemptsPerSlot}
}

// SolveResult summarises a solver run. Slots holds the slots the run filled.
type SolveResult struct {
	Filled       int
	Understaffed int
	Unfillable   []dto.UnfillableSlot
	SoftWarnings []string
	Slots        []models.ScheduleSlot
}

// Solve processes empty slots in deterministic order (date, start time,
// group sort order) and commits the first Allowed candidate for each. The
// snapshot is mutated in place so later slots see earlier assignments.
func (s *Solver) Solve(snap *ScheduleSnapshot) (*SolveResult, error) {
	if err := s.validateGrid(snap); err != nil {
		return nil, err
	}

	order := make([]int, 0, len(snap.Slots))
	for i, slot := range snap.Slots {
		if !slot.IsAssigned() {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		x, y := snap.Slots[order[a]], snap.Slots[order[b]]
		if x.Date != y.Date {
			return x.Date < y.Date
		}
		if x.StartTime != y.StartTime {
			return x.StartTime < y.StartTime
		}
		gx, _ := snap.Group(x.GroupID)
		gy, _ := snap.Group(y.GroupID)
		if gx.SortOrder != gy.SortOrder {
			return gx.SortOrder < gy.SortOrder
		}
		return x.GroupID < y.GroupID
	})

	result := &SolveResult{}
	softSeen := make(map[string]struct{})
	for _, idx := range order {
		slot := snap.Slots[idx]
		group, _ := snap.Group(slot.GroupID)

		candidates := s.rankCandidates(snap, slot, group)
		if len(candidates) == 0 {
			result.Unfillable = append(result.Unfillable, dto.UnfillableSlot{
				SlotID: slot.ID,
				Reason: "no active activity matches the group's age range and size",
			})
			continue
		}

		filled := false
		attempts := 0
		var lastReason string
		for _, activity := range candidates {
			if attempts >= s.maxAttemptsPerSlot {
				lastReason = fmt.Sprintf("no feasible assignment within %d attempts", s.maxAttemptsPerSlot)
				break
			}
			attempts++

			facilityID := s.pickFacility(snap, slot, group, activity)
			if facilityID == nil {
				lastReason = "no compatible facility free in the time window"
				continue
			}

			staffIDs := s.pickStaff(snap, slot, activity)
			candidate := Assignment{Slot: slot, ActivityID: activity.ID, FacilityID: facilityID, StaffIDs: staffIDs}
			verdict := EvaluateAssignment(candidate, snap, snap.Constraints)
			if !verdict.Allowed() {
				lastReason = verdict.Hard[0]
				continue
			}
			for _, reason := range verdict.Soft {
				if _, ok := softSeen[reason]; !ok {
					softSeen[reason] = struct{}{}
					result.SoftWarnings = append(result.SoftWarnings, reason)
				}
			}

			activityID := activity.ID
			snap.Slots[idx].ActivityID = &activityID
			snap.Slots[idx].FacilityID = facilityID
			snap.Slots[idx].StaffIDs = staffIDs
			result.Slots = append(result.Slots, snap.Slots[idx])
			result.Filled++
			if len(staffIDs) < activity.RequiredStaffCount {
				result.Understaffed++
			}
			filled = true
			break
		}
		if !filled {
			if lastReason == "" {
				lastReason = "all candidate assignments were blocked"
			}
			result.Unfillable = append(result.Unfillable, dto.UnfillableSlot{SlotID: slot.ID, Reason: lastReason})
		}
	}
	return result, nil
}

// validateGrid rejects grids referencing missing resources. Scarcity is not
// a malformation; dangling references are.
func (s *Solver) validateGrid(snap *ScheduleSnapshot) error {
	for _, slot := range snap.Slots {
		if _, ok := snap.Group(slot.GroupID); !ok {
			return appErrors.Clone(appErrors.ErrInfeasible, fmt.Sprintf("slot %s references missing group %s", slot.ID, slot.GroupID))
		}
		if slot.ActivityID != nil && *slot.ActivityID != "" {
			if _, ok := snap.Activity(*slot.ActivityID); !ok {
				return appErrors.Clone(appErrors.ErrInfeasible, fmt.Sprintf("slot %s references missing activity %s", slot.ID, *slot.ActivityID))
			}
		}
		if slot.FacilityID != nil && *slot.FacilityID != "" {
			if _, ok := snap.Facility(*slot.FacilityID); !ok {
				return appErrors.Clone(appErrors.ErrInfeasible, fmt.Sprintf("slot %s references missing facility %s", slot.ID, *slot.FacilityID))
			}
		}
	}
	return nil
}

// rankCandidates lists active activities compatible with the group, ordered
// by fewer uses that day, then fewer uses in the session, then name, to
// encourage variety deterministically.
func (s *Solver) rankCandidates(snap *ScheduleSnapshot, slot models.ScheduleSlot, group models.Group) []models.Activity {
	window := models.MinutesOfDay(slot.EndTime) - models.MinutesOfDay(slot.StartTime)
	var candidates []models.Activity
	for _, activity := range snap.Activities {
		if !activity.IsActive {
			continue
		}
		if !activity.FitsAge(group.AgeMin, group.AgeMax) {
			continue
		}
		if activity.MinParticipants > 0 && group.CurrentCount < activity.MinParticipants {
			continue
		}
		if activity.MaxParticipants > 0 && group.CurrentCount > activity.MaxParticipants {
			continue
		}
		if activity.DurationMinutes > 0 && window > 0 && activity.DurationMinutes > window {
			continue
		}
		if condition, known := snap.Weather[slot.Date]; known && activity.WeatherDependent {
			if len(activity.AllowedWeather) > 0 && !activity.AllowsWeather(condition) {
				continue
			}
		}
		candidates = append(candidates, activity)
	}
	type ranked struct {
		activity models.Activity
		day      int
		session  int
	}
	scored := make([]ranked, len(candidates))
	for i, activity := range candidates {
		day, session := snap.ActivityUses(activity.ID, group.ID, slot.Date)
		scored[i] = ranked{activity: activity, day: day, session: session}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].day != scored[j].day {
			return scored[i].day < scored[j].day
		}
		if scored[i].session != scored[j].session {
			return scored[i].session < scored[j].session
		}
		if scored[i].activity.Name != scored[j].activity.Name {
			return scored[i].activity.Name < scored[j].activity.Name
		}
		return scored[i].activity.ID < scored[j].activity.ID
	})
	result := make([]models.Activity, len(scored))
	for i, r := range scored {
		result[i] = r.activity
	}
	return result
}

// pickFacility returns the first compatible facility free in the slot's
// window, preferring smaller venues so large ones stay available. Severe
// forecast conditions steer weather-dependent activities indoors.
func (s *Solver) pickFacility(snap *ScheduleSnapshot, slot models.ScheduleSlot, group models.Group, activity models.Activity) *string {
	condition, forecastKnown := snap.Weather[slot.Date]
	needIndoor := forecastKnown && condition.IsSevere() && activity.WeatherDependent && !activity.AllowsWeather(condition)

	ordered := make([]models.Facility, 0, len(snap.Facilities))
	for _, facility := range snap.Facilities {
		if facility.IsActive {
			ordered = append(ordered, facility)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Capacity != ordered[j].Capacity {
			return ordered[i].Capacity < ordered[j].Capacity
		}
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].ID < ordered[j].ID
	})
	for _, facility := range ordered {
		if facility.Capacity > 0 && facility.Capacity < group.CurrentCount {
			continue
		}
		if needIndoor && !facility.Indoor {
			continue
		}
		booked := snap.FacilityBookings(facility.ID, slot.Date, slot.StartTime, slot.EndTime, slot.ID)
		occupancy := group.CurrentCount
		for _, b := range booked {
			if g, ok := snap.Group(b.GroupID); ok {
				occupancy += g.CurrentCount
			}
		}
		if len(booked) > 0 && (facility.Capacity <= 0 || occupancy > facility.Capacity) {
			continue
		}
		id := facility.ID
		return &id
	}
	return nil
}

// pickStaff gathers up to the required head count from active staff whose
// specialties intersect the activity's tags and who are free in the window.
// A shortfall still fills the slot; understaffing surfaces at validation.
func (s *Solver) pickStaff(snap *ScheduleSnapshot, slot models.ScheduleSlot, activity models.Activity) []string {
	if activity.RequiredStaffCount <= 0 {
		return nil
	}
	ordered := make([]models.Staff, 0, len(snap.Staff))
	for _, member := range snap.Staff {
		if member.IsActive && member.HasSpecialty(activity.Tags) {
			ordered = append(ordered, member)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].LastName != ordered[j].LastName {
			return ordered[i].LastName < ordered[j].LastName
		}
		return ordered[i].ID < ordered[j].ID
	})
	var picked []string
	for _, member := range ordered {
		if len(picked) == activity.RequiredStaffCount {
			break
		}
		if snap.StaffBusy(member.ID, slot.Date, slot.StartTime, slot.EndTime, slot.ID) {
			continue
		}
		picked = append(picked, member.ID)
	}
	return picked
}
