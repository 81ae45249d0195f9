package service

import (
	"sort"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// ScheduleSnapshot is a consistent in-memory view of one session's grid and
// the resources it references. The core engines are pure functions over a
// snapshot; loading it and serialising concurrent edits is the caller's
// responsibility.
type ScheduleSnapshot struct {
	Session     models.Session
	Groups      []models.Group
	Activities  []models.Activity
	Facilities  []models.Facility
	Staff       []models.Staff
	Constraints []models.Constraint
	Slots       []models.ScheduleSlot

	// Weather maps date to the day's condition when a forecast has been
	// supplied. Unknown dates evaluate as unconstrained.
	Weather map[string]models.WeatherCondition

	groupsByID     map[string]models.Group
	activitiesByID map[string]models.Activity
	facilitiesByID map[string]models.Facility
	staffByID      map[string]models.Staff
	slotsByKey     map[models.SlotKey]int
}

// Index builds lookup maps. Call once after assembling or mutating the
// snapshot's slices.
func (s *ScheduleSnapshot) Index() {
	s.groupsByID = make(map[string]models.Group, len(s.Groups))
	for _, g := range s.Groups {
		s.groupsByID[g.ID] = g
	}
	s.activitiesByID = make(map[string]models.Activity, len(s.Activities))
	for _, a := range s.Activities {
		s.activitiesByID[a.ID] = a
	}
	s.facilitiesByID = make(map[string]models.Facility, len(s.Facilities))
	for _, f := range s.Facilities {
		s.facilitiesByID[f.ID] = f
	}
	s.staffByID = make(map[string]models.Staff, len(s.Staff))
	for _, st := range s.Staff {
		s.staffByID[st.ID] = st
	}
	s.slotsByKey = make(map[models.SlotKey]int, len(s.Slots))
	for i, slot := range s.Slots {
		s.slotsByKey[slot.Key()] = i
	}
}

// Group resolves a group by id.
func (s *ScheduleSnapshot) Group(id string) (models.Group, bool) {
	g, ok := s.groupsByID[id]
	return g, ok
}

// Activity resolves an activity by id.
func (s *ScheduleSnapshot) Activity(id string) (models.Activity, bool) {
	a, ok := s.activitiesByID[id]
	return a, ok
}

// Facility resolves a facility by id.
func (s *ScheduleSnapshot) Facility(id string) (models.Facility, bool) {
	f, ok := s.facilitiesByID[id]
	return f, ok
}

// StaffMember resolves a staff member by id.
func (s *ScheduleSnapshot) StaffMember(id string) (models.Staff, bool) {
	st, ok := s.staffByID[id]
	return st, ok
}

// HasSlotKey reports whether the identity triple already exists in the grid.
func (s *ScheduleSnapshot) HasSlotKey(key models.SlotKey) bool {
	_, ok := s.slotsByKey[key]
	return ok
}

// GroupSlotsOn returns the group's slots for one date, ordered by start time.
func (s *ScheduleSnapshot) GroupSlotsOn(groupID, date string) []models.ScheduleSlot {
	var result []models.ScheduleSlot
	for _, slot := range s.Slots {
		if slot.GroupID == groupID && slot.Date == date {
			result = append(result, slot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime < result[j].StartTime
	})
	return result
}

// FacilityBookings returns assigned slots occupying the facility in a time
// window on a date, excluding the slot with the given id.
func (s *ScheduleSnapshot) FacilityBookings(facilityID, date, start, end, excludeSlotID string) []models.ScheduleSlot {
	probe := models.ScheduleSlot{Date: date, StartTime: start, EndTime: end}
	var result []models.ScheduleSlot
	for _, slot := range s.Slots {
		if slot.ID == excludeSlotID || slot.FacilityID == nil || *slot.FacilityID != facilityID {
			continue
		}
		if slot.Overlaps(probe) {
			result = append(result, slot)
		}
	}
	return result
}

// StaffBusy reports whether the staff member is assigned to any slot
// overlapping the window, excluding the slot with the given id.
func (s *ScheduleSnapshot) StaffBusy(staffID, date, start, end, excludeSlotID string) bool {
	probe := models.ScheduleSlot{Date: date, StartTime: start, EndTime: end}
	for _, slot := range s.Slots {
		if slot.ID == excludeSlotID {
			continue
		}
		if !slot.Overlaps(probe) {
			continue
		}
		for _, id := range slot.StaffIDs {
			if id == staffID {
				return true
			}
		}
	}
	return false
}

// ActivityUses counts assignments of the activity for a group on one date
// and across the whole session grid.
func (s *ScheduleSnapshot) ActivityUses(activityID, groupID, date string) (day, session int) {
	for _, slot := range s.Slots {
		if !slot.IsAssigned() || *slot.ActivityID != activityID {
			continue
		}
		session++
		if slot.GroupID == groupID && slot.Date == date {
			day++
		}
	}
	return day, session
}
