package service

import (
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

func constraintSnapshot() *ScheduleSnapshot {
	snap := &ScheduleSnapshot{
		Session: julySession(),
		Groups: []models.Group{
			{ID: "g-red", Name: "Red", AgeMin: 8, AgeMax: 10, CurrentCount: 12, Gender: models.GroupGenderMixed},
		},
		Activities: []models.Activity{
			{ID: "a-swim", Name: "Swimming", IsActive: true},
			{ID: "a-craft", Name: "Crafts", IsActive: true},
		},
		Facilities: []models.Facility{
			{ID: "f-pool", Name: "Pool", Capacity: 20, IsActive: true},
		},
	}
	snap.Index()
	return snap
}

func emptySlot(id, date, start, end string) models.ScheduleSlot {
	return models.ScheduleSlot{ID: id, SessionID: "sess-1", GroupID: "g-red", Date: date, StartTime: start, EndTime: end}
}

func assignedSlot(id, date, start, end, activityID string) models.ScheduleSlot {
	slot := emptySlot(id, date, start, end)
	slot.ActivityID = strPtr(activityID)
	return slot
}

func activeConstraint(kind models.ConstraintKind, severity models.ConstraintSeverity, params types.JSONText) models.Constraint {
	return models.Constraint{
		ID:             "c-" + string(kind),
		OrganizationID: "org-1",
		Kind:           kind,
		Params:         params,
		Severity:       severity,
		IsActive:       true,
	}
}

func TestEvaluateAssignmentTimeWindow(t *testing.T) {
	snap := constraintSnapshot()
	constraint := activeConstraint(models.ConstraintTimeWindow, models.SeverityHard,
		mustParams(t, models.TimeWindowParams{NotBefore: "10:00", NotAfter: "18:00"}))
	constraint.ActivityID = strPtr("a-swim")

	early := Assignment{Slot: emptySlot("sl-1", "2026-07-06", "09:00", "10:30"), ActivityID: "a-swim"}
	verdict := EvaluateAssignment(early, snap, []models.Constraint{constraint})
	require.False(t, verdict.Allowed())
	require.Equal(t, []string{"activity must not start before 10:00"}, verdict.Hard)

	// The constraint targets swimming only.
	otherActivity := Assignment{Slot: emptySlot("sl-2", "2026-07-06", "09:00", "10:30"), ActivityID: "a-craft"}
	require.True(t, EvaluateAssignment(otherActivity, snap, []models.Constraint{constraint}).Allowed())

	inWindow := Assignment{Slot: emptySlot("sl-3", "2026-07-06", "10:00", "11:30"), ActivityID: "a-swim"}
	require.True(t, EvaluateAssignment(inWindow, snap, []models.Constraint{constraint}).Allowed())
}

func TestEvaluateAssignmentSoftSeverityDoesNotBlock(t *testing.T) {
	snap := constraintSnapshot()
	constraint := activeConstraint(models.ConstraintTimeWindow, models.SeveritySoft,
		mustParams(t, models.TimeWindowParams{NotAfter: "10:00"}))

	late := Assignment{Slot: emptySlot("sl-1", "2026-07-06", "09:30", "11:00"), ActivityID: "a-swim"}
	verdict := EvaluateAssignment(late, snap, []models.Constraint{constraint})
	require.True(t, verdict.Allowed())
	require.Equal(t, []string{"activity must finish by 10:00"}, verdict.Soft)
	require.Empty(t, verdict.Hard)
}

func TestEvaluateAssignmentSkipsInactiveAndForeignSession(t *testing.T) {
	snap := constraintSnapshot()
	inactive := activeConstraint(models.ConstraintTimeWindow, models.SeverityHard,
		mustParams(t, models.TimeWindowParams{NotBefore: "10:00"}))
	inactive.IsActive = false

	foreign := activeConstraint(models.ConstraintTimeWindow, models.SeverityHard,
		mustParams(t, models.TimeWindowParams{NotBefore: "10:00"}))
	foreign.SessionID = strPtr("sess-other")

	candidate := Assignment{Slot: emptySlot("sl-1", "2026-07-06", "09:00", "10:30"), ActivityID: "a-swim"}
	verdict := EvaluateAssignment(candidate, snap, []models.Constraint{inactive, foreign})
	require.True(t, verdict.Allowed())
	require.Empty(t, verdict.Soft)
}

func TestEvaluateAssignmentMaxPerDay(t *testing.T) {
	snap := constraintSnapshot()
	snap.Slots = []models.ScheduleSlot{assignedSlot("sl-prev", "2026-07-06", "09:00", "10:30", "a-swim")}
	snap.Index()

	constraint := activeConstraint(models.ConstraintMaxPerDay, models.SeverityHard,
		mustParams(t, models.MaxPerDayParams{Max: 1}))
	constraint.ActivityID = strPtr("a-swim")

	repeat := Assignment{Slot: emptySlot("sl-next", "2026-07-06", "15:00", "16:30"), ActivityID: "a-swim"}
	verdict := EvaluateAssignment(repeat, snap, []models.Constraint{constraint})
	require.False(t, verdict.Allowed())
	require.Contains(t, verdict.Hard[0], "1 occurrence(s) per day")

	nextDay := Assignment{Slot: emptySlot("sl-day2", "2026-07-07", "09:00", "10:30"), ActivityID: "a-swim"}
	require.True(t, EvaluateAssignment(nextDay, snap, []models.Constraint{constraint}).Allowed())
}

func TestEvaluateAssignmentRepeatGap(t *testing.T) {
	snap := constraintSnapshot()
	snap.Slots = []models.ScheduleSlot{assignedSlot("sl-prev", "2026-07-06", "09:00", "10:30", "a-swim")}
	snap.Index()

	constraint := activeConstraint(models.ConstraintRepeatGap, models.SeverityHard,
		mustParams(t, models.RepeatGapParams{MinGapMinutes: 120}))
	constraint.ActivityID = strPtr("a-swim")

	tooSoon := Assignment{Slot: emptySlot("sl-next", "2026-07-06", "11:00", "12:30"), ActivityID: "a-swim"}
	require.False(t, EvaluateAssignment(tooSoon, snap, []models.Constraint{constraint}).Allowed())

	afterGap := Assignment{Slot: emptySlot("sl-late", "2026-07-06", "13:00", "14:30"), ActivityID: "a-swim"}
	require.True(t, EvaluateAssignment(afterGap, snap, []models.Constraint{constraint}).Allowed())
}

func TestEvaluateAssignmentSequencingOnlyOnObservedInversion(t *testing.T) {
	snap := constraintSnapshot()
	snap.Slots = []models.ScheduleSlot{assignedSlot("sl-swim", "2026-07-06", "15:00", "16:30", "a-swim")}
	snap.Index()

	constraint := activeConstraint(models.ConstraintSequencing, models.SeverityHard,
		mustParams(t, models.SequencingParams{BeforeActivityID: "a-craft", AfterActivityID: "a-swim"}))

	// Crafts placed after the already scheduled swim inverts the order.
	inverted := Assignment{Slot: emptySlot("sl-craft", "2026-07-06", "17:00", "18:00"), ActivityID: "a-craft"}
	verdict := EvaluateAssignment(inverted, snap, []models.Constraint{constraint})
	require.False(t, verdict.Allowed())

	ordered := Assignment{Slot: emptySlot("sl-craft", "2026-07-06", "09:00", "10:30"), ActivityID: "a-craft"}
	require.True(t, EvaluateAssignment(ordered, snap, []models.Constraint{constraint}).Allowed())

	// With the counterpart unassigned the order is unknown, not violated.
	snap.Slots = nil
	snap.Index()
	require.True(t, EvaluateAssignment(inverted, snap, []models.Constraint{constraint}).Allowed())
}

func TestEvaluateAssignmentAgeGender(t *testing.T) {
	snap := constraintSnapshot()
	constraint := activeConstraint(models.ConstraintAgeGender, models.SeverityHard,
		mustParams(t, models.AgeGenderParams{MinAge: 10}))
	constraint.ActivityID = strPtr("a-swim")

	candidate := Assignment{Slot: emptySlot("sl-1", "2026-07-06", "09:00", "10:30"), ActivityID: "a-swim"}
	verdict := EvaluateAssignment(candidate, snap, []models.Constraint{constraint})
	require.False(t, verdict.Allowed())
	require.Contains(t, verdict.Hard[0], "below the required 10")

	gendered := activeConstraint(models.ConstraintAgeGender, models.SeverityHard,
		mustParams(t, models.AgeGenderParams{Gender: "female"}))
	verdict = EvaluateAssignment(candidate, snap, []models.Constraint{gendered})
	require.False(t, verdict.Allowed())
	require.Contains(t, verdict.Hard[0], "restricted to female groups")
}

func TestEvaluateAssignmentFacilityExclusivity(t *testing.T) {
	snap := constraintSnapshot()
	occupied := assignedSlot("sl-other", "2026-07-06", "09:00", "10:30", "a-craft")
	occupied.GroupID = "g-other"
	occupied.FacilityID = strPtr("f-pool")
	snap.Slots = []models.ScheduleSlot{occupied}
	snap.Index()

	exclusive := activeConstraint(models.ConstraintFacilityExclusivity, models.SeverityHard,
		mustParams(t, models.FacilityExclusivityParams{MaxConcurrent: 0}))
	exclusive.FacilityID = strPtr("f-pool")

	candidate := Assignment{
		Slot:       emptySlot("sl-1", "2026-07-06", "09:30", "11:00"),
		ActivityID: "a-swim",
		FacilityID: strPtr("f-pool"),
	}
	verdict := EvaluateAssignment(candidate, snap, []models.Constraint{exclusive})
	require.False(t, verdict.Allowed())
	require.Equal(t, "facility requires exclusive use", verdict.Hard[0])

	shared := activeConstraint(models.ConstraintFacilityExclusivity, models.SeverityHard,
		mustParams(t, models.FacilityExclusivityParams{MaxConcurrent: 2}))
	shared.FacilityID = strPtr("f-pool")
	require.True(t, EvaluateAssignment(candidate, snap, []models.Constraint{shared}).Allowed())
}

func TestEvaluateAssignmentStaffAvailability(t *testing.T) {
	snap := constraintSnapshot()
	constraint := activeConstraint(models.ConstraintStaffAvailability, models.SeverityHard,
		mustParams(t, models.StaffAvailabilityParams{Dates: []string{"2026-07-06"}, StartTime: "09:00", EndTime: "12:00"}))
	constraint.StaffID = strPtr("st-1")

	blocked := Assignment{
		Slot:       emptySlot("sl-1", "2026-07-06", "10:00", "11:00"),
		ActivityID: "a-swim",
		StaffIDs:   []string{"st-1"},
	}
	verdict := EvaluateAssignment(blocked, snap, []models.Constraint{constraint})
	require.False(t, verdict.Allowed())
	require.Contains(t, verdict.Hard[0], "unavailable between 09:00 and 12:00")

	// A candidate not involving the staff member is unaffected.
	other := Assignment{Slot: emptySlot("sl-2", "2026-07-06", "10:00", "11:00"), ActivityID: "a-swim", StaffIDs: []string{"st-2"}}
	require.True(t, EvaluateAssignment(other, snap, []models.Constraint{constraint}).Allowed())

	// Outside the listed dates the block does not apply.
	nextDay := Assignment{Slot: emptySlot("sl-3", "2026-07-07", "10:00", "11:00"), ActivityID: "a-swim", StaffIDs: []string{"st-1"}}
	require.True(t, EvaluateAssignment(nextDay, snap, []models.Constraint{constraint}).Allowed())
}

func TestEvaluateAssignmentWeatherDependency(t *testing.T) {
	snap := constraintSnapshot()
	constraint := activeConstraint(models.ConstraintWeatherDependency, models.SeverityHard,
		mustParams(t, models.WeatherDependencyParams{ForbiddenConditions: []string{"rainy", "stormy"}}))
	constraint.ActivityID = strPtr("a-swim")

	candidate := Assignment{Slot: emptySlot("sl-1", "2026-07-06", "09:00", "10:30"), ActivityID: "a-swim"}

	// No forecast for the date means no violation.
	require.True(t, EvaluateAssignment(candidate, snap, []models.Constraint{constraint}).Allowed())

	snap.Weather = map[string]models.WeatherCondition{"2026-07-06": models.WeatherRainy}
	verdict := EvaluateAssignment(candidate, snap, []models.Constraint{constraint})
	require.False(t, verdict.Allowed())
	require.Equal(t, "activity is not allowed in rainy weather", verdict.Hard[0])
}

func TestEvaluateAssignmentBlackout(t *testing.T) {
	snap := constraintSnapshot()
	constraint := activeConstraint(models.ConstraintBlackout, models.SeverityHard,
		mustParams(t, models.BlackoutParams{StartDate: "2026-07-07", EndDate: "2026-07-07"}))

	inside := Assignment{Slot: emptySlot("sl-1", "2026-07-07", "09:00", "10:30"), ActivityID: "a-swim"}
	verdict := EvaluateAssignment(inside, snap, []models.Constraint{constraint})
	require.False(t, verdict.Allowed())
	require.Equal(t, "blackout period 2026-07-07 to 2026-07-07", verdict.Hard[0])

	outside := Assignment{Slot: emptySlot("sl-2", "2026-07-06", "09:00", "10:30"), ActivityID: "a-swim"}
	require.True(t, EvaluateAssignment(outside, snap, []models.Constraint{constraint}).Allowed())

	windowed := activeConstraint(models.ConstraintBlackout, models.SeverityHard,
		mustParams(t, models.BlackoutParams{StartDate: "2026-07-07", EndDate: "2026-07-07", StartTime: "14:00", EndTime: "16:00"}))
	require.True(t, EvaluateAssignment(inside, snap, []models.Constraint{windowed}).Allowed())
}

func TestEvaluateAssignmentCapacity(t *testing.T) {
	snap := constraintSnapshot()
	constraint := activeConstraint(models.ConstraintCapacity, models.SeverityHard,
		mustParams(t, models.CapacityParams{MaxParticipants: 10}))
	constraint.ActivityID = strPtr("a-swim")

	candidate := Assignment{Slot: emptySlot("sl-1", "2026-07-06", "09:00", "10:30"), ActivityID: "a-swim"}
	verdict := EvaluateAssignment(candidate, snap, []models.Constraint{constraint})
	require.False(t, verdict.Allowed())
	require.Contains(t, verdict.Hard[0], "exceeds the 10 participant maximum")
}

func TestEvaluateAssignmentSkipsUndecodableParams(t *testing.T) {
	snap := constraintSnapshot()
	broken := activeConstraint(models.ConstraintMaxPerDay, models.SeverityHard, []byte(`{"max":"three"}`))

	candidate := Assignment{Slot: emptySlot("sl-1", "2026-07-06", "09:00", "10:30"), ActivityID: "a-swim"}
	verdict := EvaluateAssignment(candidate, snap, []models.Constraint{broken})
	require.True(t, verdict.Allowed())
	require.Empty(t, verdict.Soft)
}
