package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

func solverSnapshot() *ScheduleSnapshot {
	snap := &ScheduleSnapshot{
		Session: julySession(),
		Groups: []models.Group{
			{ID: "g-red", Name: "Red", AgeMin: 8, AgeMax: 10, CurrentCount: 12, SortOrder: 0},
			{ID: "g-blue", Name: "Blue", AgeMin: 11, AgeMax: 13, CurrentCount: 14, SortOrder: 1},
		},
		Activities: []models.Activity{
			{ID: "a-swim", OrganizationID: "org-1", Name: "Swimming", DurationMinutes: 90, MinAge: 6, MaxAge: 16, RequiredStaffCount: 1, IsActive: true},
			{ID: "a-craft", OrganizationID: "org-1", Name: "Crafts", DurationMinutes: 60, MinAge: 6, MaxAge: 16, RequiredStaffCount: 1, IsActive: true},
			{ID: "a-hike", OrganizationID: "org-1", Name: "Hiking", DurationMinutes: 90, MinAge: 6, MaxAge: 16, RequiredStaffCount: 1, IsActive: true},
		},
		Facilities: []models.Facility{
			{ID: "f-hall", OrganizationID: "org-1", Name: "Hall", Capacity: 20, Indoor: true, IsActive: true},
			{ID: "f-field", OrganizationID: "org-1", Name: "Field", Capacity: 20, IsActive: true},
			{ID: "f-room", OrganizationID: "org-1", Name: "Small Room", Capacity: 10, Indoor: true, IsActive: true},
		},
		Staff: []models.Staff{
			{ID: "st-dimitriou", OrganizationID: "org-1", FirstName: "Eleni", LastName: "Dimitriou", IsActive: true},
			{ID: "st-papas", OrganizationID: "org-1", FirstName: "Nikos", LastName: "Papas", IsActive: true},
		},
		Slots: []models.ScheduleSlot{
			{ID: "sl-1", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-06", StartTime: "09:00", EndTime: "10:30"},
			{ID: "sl-2", SessionID: "sess-1", GroupID: "g-blue", Date: "2026-07-06", StartTime: "09:00", EndTime: "10:30"},
			{ID: "sl-3", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-06", StartTime: "15:00", EndTime: "16:30"},
			{ID: "sl-4", SessionID: "sess-1", GroupID: "g-blue", Date: "2026-07-06", StartTime: "15:00", EndTime: "16:30"},
			{ID: "sl-5", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-07", StartTime: "09:00", EndTime: "10:30"},
			{ID: "sl-6", SessionID: "sess-1", GroupID: "g-blue", Date: "2026-07-07", StartTime: "09:00", EndTime: "10:30"},
		},
	}
	snap.Index()
	return snap
}

func TestSolverFillsEveryOpenSlot(t *testing.T) {
	snap := solverSnapshot()
	result, err := NewSolver(0).Solve(snap)
	require.NoError(t, err)
	require.Equal(t, 6, result.Filled)
	require.Empty(t, result.Unfillable)
	require.Zero(t, result.Understaffed)

	for _, slot := range snap.Slots {
		require.True(t, slot.IsAssigned(), "slot %s left open", slot.ID)
		require.NotNil(t, slot.FacilityID)
		require.Len(t, slot.StaffIDs, 1)
	}
}

func TestSolverIsDeterministic(t *testing.T) {
	first, err := NewSolver(0).Solve(solverSnapshot())
	require.NoError(t, err)
	second, err := NewSolver(0).Solve(solverSnapshot())
	require.NoError(t, err)

	require.Equal(t, first.Filled, second.Filled)
	require.Len(t, second.Slots, len(first.Slots))
	for i := range first.Slots {
		require.Equal(t, first.Slots[i].ID, second.Slots[i].ID)
		require.Equal(t, *first.Slots[i].ActivityID, *second.Slots[i].ActivityID)
		require.Equal(t, *first.Slots[i].FacilityID, *second.Slots[i].FacilityID)
		require.Equal(t, first.Slots[i].StaffIDs, second.Slots[i].StaffIDs)
	}
}

func TestSolverAvoidsDoubleBookingResources(t *testing.T) {
	snap := solverSnapshot()
	_, err := NewSolver(0).Solve(snap)
	require.NoError(t, err)

	// Two groups share each time window; neither facilities nor staff may
	// collide within one.
	type window struct{ date, start string }
	facilitiesSeen := make(map[window]map[string]bool)
	staffSeen := make(map[window]map[string]bool)
	for _, slot := range snap.Slots {
		w := window{slot.Date, slot.StartTime}
		if facilitiesSeen[w] == nil {
			facilitiesSeen[w] = make(map[string]bool)
			staffSeen[w] = make(map[string]bool)
		}
		require.False(t, facilitiesSeen[w][*slot.FacilityID], "facility %s double-booked", *slot.FacilityID)
		facilitiesSeen[w][*slot.FacilityID] = true
		for _, staffID := range slot.StaffIDs {
			require.False(t, staffSeen[w][staffID], "staff %s double-booked", staffID)
			staffSeen[w][staffID] = true
		}
	}
}

func TestSolverReportsUnfillableWhenNoActivityFits(t *testing.T) {
	snap := solverSnapshot()
	snap.Activities = []models.Activity{
		{ID: "a-teens", Name: "Teens Only", MinAge: 15, MaxAge: 18, IsActive: true},
	}
	snap.Index()

	result, err := NewSolver(0).Solve(snap)
	require.NoError(t, err)
	require.Zero(t, result.Filled)
	require.Len(t, result.Unfillable, 6)
	for _, unfillable := range result.Unfillable {
		require.Equal(t, "no active activity matches the group's age range and size", unfillable.Reason)
	}
	for _, slot := range snap.Slots {
		require.False(t, slot.IsAssigned())
	}
}

func TestSolverNeverOverwritesExistingAssignments(t *testing.T) {
	snap := solverSnapshot()
	snap.Slots[0].ActivityID = strPtr("a-hike")
	snap.Slots[0].FacilityID = strPtr("f-field")
	snap.Slots[0].StaffIDs = []string{"st-papas"}
	snap.Index()

	result, err := NewSolver(0).Solve(snap)
	require.NoError(t, err)
	require.Equal(t, 5, result.Filled)
	require.Equal(t, "a-hike", *snap.Slots[0].ActivityID)
	require.Equal(t, "f-field", *snap.Slots[0].FacilityID)
	for _, filled := range result.Slots {
		require.NotEqual(t, "sl-1", filled.ID)
	}
}

func TestSolverRejectsDanglingReferences(t *testing.T) {
	snap := solverSnapshot()
	snap.Slots[2].GroupID = "g-ghost"
	snap.Index()

	_, err := NewSolver(0).Solve(snap)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInfeasible.Code, appErrors.FromError(err).Code)

	snap = solverSnapshot()
	snap.Slots[1].ActivityID = strPtr("a-ghost")
	snap.Index()
	_, err = NewSolver(0).Solve(snap)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrInfeasible.Code, appErrors.FromError(err).Code)
}

func TestSolverCountsUnderstaffedAssignments(t *testing.T) {
	snap := solverSnapshot()
	snap.Slots = snap.Slots[:1]
	snap.Activities = []models.Activity{
		{ID: "a-climb", Name: "Climbing", DurationMinutes: 90, MinAge: 6, MaxAge: 16, RequiredStaffCount: 2, Tags: []string{"climbing"}, IsActive: true},
	}
	snap.Staff = []models.Staff{
		{ID: "st-belayer", FirstName: "Anna", LastName: "Belau", Specialties: []string{"climbing"}, IsActive: true},
		{ID: "st-other", FirstName: "Omar", LastName: "Said", Specialties: []string{"archery"}, IsActive: true},
	}
	snap.Index()

	result, err := NewSolver(0).Solve(snap)
	require.NoError(t, err)
	require.Equal(t, 1, result.Filled)
	require.Equal(t, 1, result.Understaffed)
	require.Equal(t, []string{"st-belayer"}, []string(snap.Slots[0].StaffIDs))
}

func TestSolverSurfacesBlockingConstraintReason(t *testing.T) {
	snap := solverSnapshot()
	snap.Slots = snap.Slots[:1]
	snap.Constraints = []models.Constraint{{
		ID:             "c-blackout",
		OrganizationID: "org-1",
		Kind:           models.ConstraintBlackout,
		Params:         []byte(`{"start_date":"2026-07-06","end_date":"2026-07-06"}`),
		Severity:       models.SeverityHard,
		IsActive:       true,
	}}
	snap.Index()

	result, err := NewSolver(0).Solve(snap)
	require.NoError(t, err)
	require.Zero(t, result.Filled)
	require.Len(t, result.Unfillable, 1)
	require.Equal(t, "blackout period 2026-07-06 to 2026-07-06", result.Unfillable[0].Reason)
}

func TestSolverCollectsSoftWarningsOnce(t *testing.T) {
	snap := solverSnapshot()
	snap.Constraints = []models.Constraint{{
		ID:             "c-early",
		OrganizationID: "org-1",
		Kind:           models.ConstraintTimeWindow,
		Params:         []byte(`{"not_before":"10:00"}`),
		Severity:       models.SeveritySoft,
		IsActive:       true,
	}}
	snap.Index()

	result, err := NewSolver(0).Solve(snap)
	require.NoError(t, err)
	require.Equal(t, 6, result.Filled)
	// Four morning slots trigger the same advisory; it is reported once.
	require.Equal(t, []string{"activity must not start before 10:00"}, result.SoftWarnings)
}

func TestSolverSteersWeatherDependentActivitiesIndoors(t *testing.T) {
	snap := solverSnapshot()
	snap.Slots = snap.Slots[:1]
	snap.Activities = []models.Activity{
		{ID: "a-kayak", Name: "Kayaking", DurationMinutes: 90, MinAge: 6, MaxAge: 16, WeatherDependent: true, IsActive: true},
	}
	snap.Weather = map[string]models.WeatherCondition{"2026-07-06": models.WeatherStormy}
	snap.Index()

	result, err := NewSolver(0).Solve(snap)
	require.NoError(t, err)
	require.Equal(t, 1, result.Filled)
	require.Equal(t, "f-hall", *snap.Slots[0].FacilityID)
}
