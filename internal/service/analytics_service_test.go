package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

func TestComputeScheduleAnalytics(t *testing.T) {
	activities := []models.Activity{
		{ID: "a-swim", Name: "Swimming", RequiredStaffCount: 2},
		{ID: "a-craft", Name: "Crafts", RequiredStaffCount: 1},
	}
	facilities := []models.Facility{
		{ID: "f-pool", Name: "Pool"},
		{ID: "f-hall", Name: "Hall"},
		{ID: "f-idle", Name: "Idle Barn"},
	}
	slots := []models.ScheduleSlot{
		{ID: "sl-1", Date: "2026-07-06", StartTime: "09:00", ActivityID: strPtr("a-swim"), FacilityID: strPtr("f-pool"), StaffIDs: []string{"st-1", "st-2"}},
		{ID: "sl-2", Date: "2026-07-06", StartTime: "09:00", ActivityID: strPtr("a-craft"), FacilityID: strPtr("f-hall"), StaffIDs: []string{"st-3"}},
		{ID: "sl-3", Date: "2026-07-06", StartTime: "15:00", ActivityID: strPtr("a-swim"), FacilityID: strPtr("f-pool"), StaffIDs: []string{"st-1"}},
		{ID: "sl-4", Date: "2026-07-07", StartTime: "09:00"},
	}

	analytics := computeScheduleAnalytics("sess-1", slots, activities, facilities)
	require.Equal(t, "sess-1", analytics.SessionID)
	require.Equal(t, 4, analytics.TotalSlots)
	require.Equal(t, 3, analytics.AssignedSlots)
	require.InDelta(t, 0.75, analytics.CompletionRate, 1e-9)
	// sl-3 runs swimming with one of two required staff.
	require.Equal(t, 1, analytics.UnderstaffedSlots)

	// Three distinct (date, start) windows across the grid.
	require.Len(t, analytics.Facilities, 3)
	require.Equal(t, "f-pool", analytics.Facilities[0].FacilityID)
	require.Equal(t, 2, analytics.Facilities[0].Bookings)
	require.Equal(t, 3, analytics.Facilities[0].Windows)
	require.InDelta(t, 2.0/3.0, analytics.Facilities[0].Utilization, 1e-9)
	require.Equal(t, "Idle Barn", analytics.Facilities[2].FacilityName)
	require.Zero(t, analytics.Facilities[2].Utilization)

	require.Len(t, analytics.Activities, 2)
	require.Equal(t, "a-swim", analytics.Activities[0].ActivityID)
	require.Equal(t, 2, analytics.Activities[0].Count)
	require.InDelta(t, 2.0/3.0, analytics.Activities[0].Share, 1e-9)
	require.Equal(t, "Crafts", analytics.Activities[1].ActivityName)
}

func TestComputeScheduleAnalyticsEmptyGrid(t *testing.T) {
	analytics := computeScheduleAnalytics("sess-1", nil, nil, nil)
	require.Zero(t, analytics.TotalSlots)
	require.Zero(t, analytics.CompletionRate)
	require.Empty(t, analytics.Facilities)
	require.Empty(t, analytics.Activities)
}

func TestMakeAnalyticsCacheKey(t *testing.T) {
	require.Equal(t, "analytics:session:sess-1:schedule", makeAnalyticsCacheKey("session", "sess-1", "schedule"))
	// Colons in ids cannot break key structure, empty parts drop out.
	require.Equal(t, "analytics:session:a|b", makeAnalyticsCacheKey("session", "", "a:b"))
}
