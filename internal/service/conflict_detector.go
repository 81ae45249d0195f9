package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// ConflictDetector validates a grid without mutating it. Detection is pure
// and deterministic: the same snapshot always yields the same conflicts in
// the same order, with stable ids derived from the finding itself.
type ConflictDetector struct{}

// NewConflictDetector constructs a detector.
func NewConflictDetector() *ConflictDetector {
	return &ConflictDetector{}
}

// Detect runs every detection rule over the snapshot and returns findings
// ordered by severity, then kind, then first slot id.
func (d *ConflictDetector) Detect(snap *ScheduleSnapshot) []models.Conflict {
	var conflicts []models.Conflict
	conflicts = append(conflicts, d.groupDoubleBookings(snap)...)
	conflicts = append(conflicts, d.facilityOverbookings(snap)...)
	conflicts = append(conflicts, d.staffDoubleBookings(snap)...)
	conflicts = append(conflicts, d.constraintViolations(snap)...)
	conflicts = append(conflicts, d.staffingAndFit(snap)...)

	sort.SliceStable(conflicts, func(i, j int) bool {
		if conflicts[i].Severity != conflicts[j].Severity {
			return conflicts[i].Severity.SeverityRank() < conflicts[j].Severity.SeverityRank()
		}
		if conflicts[i].Kind != conflicts[j].Kind {
			return conflicts[i].Kind < conflicts[j].Kind
		}
		return conflicts[i].ID < conflicts[j].ID
	})
	return conflicts
}

// conflictID derives a stable identifier from the rule and the slots it
// touches, so re-running detection on an unchanged grid reproduces ids.
func conflictID(kind models.ConflictKind, slotIDs ...string) string {
	sorted := make([]string, len(slotIDs))
	copy(sorted, slotIDs)
	sort.Strings(sorted)
	return fmt.Sprintf("%s:%s", kind, strings.Join(sorted, "+"))
}

func (d *ConflictDetector) groupDoubleBookings(snap *ScheduleSnapshot) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(snap.Slots); i++ {
		for j := i + 1; j < len(snap.Slots); j++ {
			a, b := snap.Slots[i], snap.Slots[j]
			if a.GroupID != b.GroupID || !a.Overlaps(b) {
				continue
			}
			groupName := a.GroupID
			if g, ok := snap.Group(a.GroupID); ok {
				groupName = g.Name
			}
			conflicts = append(conflicts, models.Conflict{
				ID:          conflictID(models.ConflictGroupDoubleBooking, a.ID, b.ID),
				Kind:        models.ConflictGroupDoubleBooking,
				Severity:    models.ConflictCritical,
				Message:     fmt.Sprintf("group %s is booked twice on %s", groupName, a.Date),
				Description: fmt.Sprintf("slots %s-%s and %s-%s overlap", a.StartTime, a.EndTime, b.StartTime, b.EndTime),
				Suggestion:  "move one of the slots to a free time range",
				SlotIDs:     []string{a.ID, b.ID},
			})
		}
	}
	return conflicts
}

// facilityOverbookings flags overlapping bookings that exceed the venue's
// capacity. Sharing a large hall is fine; cramming two groups into a room
// sized for one is not.
func (d *ConflictDetector) facilityOverbookings(snap *ScheduleSnapshot) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(snap.Slots); i++ {
		for j := i + 1; j < len(snap.Slots); j++ {
			a, b := snap.Slots[i], snap.Slots[j]
			if a.FacilityID == nil || b.FacilityID == nil || *a.FacilityID != *b.FacilityID {
				continue
			}
			if !a.Overlaps(b) {
				continue
			}
			facility, ok := snap.Facility(*a.FacilityID)
			occupancy := 0
			if ga, found := snap.Group(a.GroupID); found {
				occupancy += ga.CurrentCount
			}
			if gb, found := snap.Group(b.GroupID); found {
				occupancy += gb.CurrentCount
			}
			if ok && facility.Capacity > 0 && occupancy <= facility.Capacity {
				continue
			}
			name := *a.FacilityID
			if ok {
				name = facility.Name
			}
			conflicts = append(conflicts, models.Conflict{
				ID:          conflictID(models.ConflictFacilityDoubleBooking, a.ID, b.ID),
				Kind:        models.ConflictFacilityDoubleBooking,
				Severity:    models.ConflictCritical,
				Message:     fmt.Sprintf("facility %s is double-booked on %s", name, a.Date),
				Description: fmt.Sprintf("%d campers across overlapping slots %s-%s and %s-%s", occupancy, a.StartTime, a.EndTime, b.StartTime, b.EndTime),
				Suggestion:  "assign one of the slots to a different facility",
				SlotIDs:     []string{a.ID, b.ID},
			})
		}
	}
	return conflicts
}

func (d *ConflictDetector) staffDoubleBookings(snap *ScheduleSnapshot) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(snap.Slots); i++ {
		for j := i + 1; j < len(snap.Slots); j++ {
			a, b := snap.Slots[i], snap.Slots[j]
			if !a.Overlaps(b) {
				continue
			}
			shared := sharedStaff(a.StaffIDs, b.StaffIDs)
			for _, staffID := range shared {
				name := staffID
				if member, ok := snap.StaffMember(staffID); ok {
					name = member.FirstName + " " + member.LastName
				}
				conflicts = append(conflicts, models.Conflict{
					ID:         conflictID(models.ConflictStaffDoubleBooking, a.ID, b.ID) + ":" + staffID,
					Kind:       models.ConflictStaffDoubleBooking,
					Severity:   models.ConflictCritical,
					Message:    fmt.Sprintf("staff member %s is assigned to overlapping slots on %s", name, a.Date),
					Suggestion: "release the staff member from one of the slots",
					SlotIDs:    []string{a.ID, b.ID},
				})
			}
		}
	}
	return conflicts
}

func sharedStaff(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	var shared []string
	for _, id := range b {
		if _, ok := set[id]; ok {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)
	return shared
}

// constraintViolations replays each committed assignment through the
// constraint engine. Hard violations are critical, soft ones warnings.
func (d *ConflictDetector) constraintViolations(snap *ScheduleSnapshot) []models.Conflict {
	var conflicts []models.Conflict
	for _, slot := range snap.Slots {
		if !slot.IsAssigned() {
			continue
		}
		candidate := Assignment{Slot: slot, ActivityID: *slot.ActivityID, FacilityID: slot.FacilityID, StaffIDs: slot.StaffIDs}
		verdict := EvaluateAssignment(candidate, snap, snap.Constraints)
		for _, reason := range verdict.Hard {
			conflicts = append(conflicts, models.Conflict{
				ID:         conflictID(models.ConflictConstraintViolation, slot.ID) + ":" + reason,
				Kind:       models.ConflictConstraintViolation,
				Severity:   models.ConflictCritical,
				Message:    reason,
				Suggestion: "reassign the slot so the rule holds",
				SlotIDs:    []string{slot.ID},
			})
		}
		for _, reason := range verdict.Soft {
			conflicts = append(conflicts, models.Conflict{
				ID:       conflictID(models.ConflictConstraintViolation, slot.ID) + ":" + reason,
				Kind:     models.ConflictConstraintViolation,
				Severity: models.ConflictWarning,
				Message:  reason,
				SlotIDs:  []string{slot.ID},
			})
		}
	}
	return conflicts
}

// staffingAndFit covers per-slot findings that need the assigned activity:
// understaffing, age mismatch, and facility capacity overflow by a single
// group.
func (d *ConflictDetector) staffingAndFit(snap *ScheduleSnapshot) []models.Conflict {
	var conflicts []models.Conflict
	for _, slot := range snap.Slots {
		if !slot.IsAssigned() {
			continue
		}
		activity, ok := snap.Activity(*slot.ActivityID)
		if !ok {
			continue
		}
		group, hasGroup := snap.Group(slot.GroupID)

		if activity.RequiredStaffCount > 0 && len(slot.StaffIDs) < activity.RequiredStaffCount {
			shortfall := activity.RequiredStaffCount - len(slot.StaffIDs)
			severity := models.ConflictInfo
			if shortfall*2 >= activity.RequiredStaffCount {
				severity = models.ConflictWarning
			}
			conflicts = append(conflicts, models.Conflict{
				ID:         conflictID(models.ConflictUnderstaffed, slot.ID),
				Kind:       models.ConflictUnderstaffed,
				Severity:   severity,
				Message:    fmt.Sprintf("%s has %d of %d required staff", activity.Name, len(slot.StaffIDs), activity.RequiredStaffCount),
				Suggestion: "assign additional qualified staff to the slot",
				SlotIDs:    []string{slot.ID},
			})
		}

		if hasGroup && !activity.FitsAge(group.AgeMin, group.AgeMax) {
			conflicts = append(conflicts, models.Conflict{
				ID:         conflictID(models.ConflictAgeMismatch, slot.ID),
				Kind:       models.ConflictAgeMismatch,
				Severity:   models.ConflictWarning,
				Message:    fmt.Sprintf("%s is rated for ages %d-%d but group %s spans %d-%d", activity.Name, activity.MinAge, activity.MaxAge, group.Name, group.AgeMin, group.AgeMax),
				Suggestion: "swap in an age-appropriate activity",
				SlotIDs:    []string{slot.ID},
			})
		}

		if hasGroup && slot.FacilityID != nil {
			if facility, found := snap.Facility(*slot.FacilityID); found && facility.Capacity > 0 && group.CurrentCount > facility.Capacity {
				conflicts = append(conflicts, models.Conflict{
					ID:         conflictID(models.ConflictCapacityExceeded, slot.ID),
					Kind:       models.ConflictCapacityExceeded,
					Severity:   models.ConflictCritical,
					Message:    fmt.Sprintf("group of %d exceeds %s capacity of %d", group.CurrentCount, facility.Name, facility.Capacity),
					Suggestion: "move the slot to a larger facility",
					SlotIDs:    []string{slot.ID},
				})
			}
		}
	}
	return conflicts
}
