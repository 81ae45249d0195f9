package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

func weatherSnapshot() *ScheduleSnapshot {
	snap := &ScheduleSnapshot{
		Session: julySession(),
		Groups: []models.Group{
			{ID: "g-red", Name: "Red", AgeMin: 8, AgeMax: 12, CurrentCount: 12},
		},
		Activities: []models.Activity{
			{ID: "a-swim", Name: "Κολύμβηση", DurationMinutes: 90, MinAge: 6, MaxAge: 16, WeatherDependent: true, AllowedWeather: []string{"sunny", "very_hot"}, IsActive: true},
			{ID: "a-chess", Name: "Σκάκι", DurationMinutes: 90, MinAge: 6, MaxAge: 16, IsActive: true},
		},
		Facilities: []models.Facility{
			{ID: "f-pool", Name: "Πισίνα", Capacity: 20, IsActive: true},
			{ID: "f-hall", Name: "Αίθουσα", Capacity: 30, Indoor: true, IsActive: true},
		},
		Slots: []models.ScheduleSlot{
			{ID: "sl-1", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-07", StartTime: "09:00", EndTime: "10:30", ActivityID: strPtr("a-swim"), FacilityID: strPtr("f-pool")},
		},
	}
	snap.Index()
	return snap
}

func rainyForecast() []models.WeatherAssignment {
	return []models.WeatherAssignment{{Date: "2026-07-07", Condition: models.WeatherRainy, Source: "manual"}}
}

func TestWeatherImpactProposesSubstitute(t *testing.T) {
	engine := NewWeatherEngine(0)
	snap := weatherSnapshot()

	impact, err := engine.CheckImpact(snap, rainyForecast())
	require.NoError(t, err)
	require.Len(t, impact.Affected, 1)
	require.Equal(t, "sl-1", impact.Affected[0].SlotID)
	require.Equal(t, "Κολύμβηση", impact.Affected[0].ActivityName)
	require.Equal(t, models.WeatherRainy, impact.Affected[0].Condition)

	require.Empty(t, impact.Warnings)
	require.Len(t, impact.Substitutions, 1)
	substitution := impact.Substitutions[0]
	require.Equal(t, "a-chess", substitution.SubstituteActivityID)
	require.Equal(t, "Κολύμβηση cannot run in rainy weather", substitution.Reason)

	// Proposals never touch the grid.
	require.Equal(t, "a-swim", *snap.Slots[0].ActivityID)
}

func TestWeatherImpactThenApplyResolvesAffectedSlots(t *testing.T) {
	engine := NewWeatherEngine(0)
	snap := weatherSnapshot()

	impact, err := engine.CheckImpact(snap, rainyForecast())
	require.NoError(t, err)
	require.Len(t, impact.Substitutions, 1)
	proposal := impact.Substitutions[0]

	updated, failures, err := engine.ApplySubstitutions(snap, []dto.SelectedSubstitution{{
		SlotID:     proposal.SlotID,
		ActivityID: proposal.SubstituteActivityID,
		FacilityID: proposal.FacilityID,
		Reason:     proposal.Reason,
	}})
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Len(t, updated, 1)
	require.Equal(t, "a-chess", *snap.Slots[0].ActivityID)

	recheck, err := engine.CheckImpact(snap, rainyForecast())
	require.NoError(t, err)
	require.Empty(t, recheck.Affected)
	require.Empty(t, recheck.Substitutions)
}

func TestWeatherImpactWarnsWhenNoSubstituteExists(t *testing.T) {
	engine := NewWeatherEngine(0)
	snap := weatherSnapshot()
	snap.Activities = snap.Activities[:1]
	snap.Index()

	impact, err := engine.CheckImpact(snap, rainyForecast())
	require.NoError(t, err)
	require.Len(t, impact.Affected, 1)
	require.Empty(t, impact.Substitutions)
	require.Equal(t, []string{"no substitute available for Κολύμβηση on 2026-07-07 (rainy)"}, impact.Warnings)
}

func TestWeatherImpactIgnoresCompatibleAndUnknownDates(t *testing.T) {
	engine := NewWeatherEngine(0)
	snap := weatherSnapshot()
	snap.Slots = append(snap.Slots,
		// Weather-agnostic indoor activity on the rainy day.
		models.ScheduleSlot{ID: "sl-2", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-07", StartTime: "15:00", EndTime: "16:30", ActivityID: strPtr("a-chess"), FacilityID: strPtr("f-hall")},
		// Swim slot on a day without a forecast entry.
		models.ScheduleSlot{ID: "sl-3", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-08", StartTime: "09:00", EndTime: "10:30", ActivityID: strPtr("a-swim"), FacilityID: strPtr("f-pool")},
		// Empty slot, nothing to check.
		models.ScheduleSlot{ID: "sl-4", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-07", StartTime: "11:00", EndTime: "12:00"},
	)
	snap.Index()

	impact, err := engine.CheckImpact(snap, rainyForecast())
	require.NoError(t, err)
	require.Len(t, impact.Affected, 1)
	require.Equal(t, "sl-1", impact.Affected[0].SlotID)
}

func TestWeatherImpactAllowListWinsOverSevereWeather(t *testing.T) {
	engine := NewWeatherEngine(0)
	snap := weatherSnapshot()
	snap.Activities[0].AllowedWeather = []string{"sunny", "rainy"}
	snap.Index()

	impact, err := engine.CheckImpact(snap, rainyForecast())
	require.NoError(t, err)
	require.Empty(t, impact.Affected)
}

func TestWeatherImpactValidatesForecastEntries(t *testing.T) {
	engine := NewWeatherEngine(0)
	snap := weatherSnapshot()

	_, err := engine.CheckImpact(snap, []models.WeatherAssignment{{Date: "2026-07-07"}})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApplySubstitutionsIsAllOrNothing(t *testing.T) {
	engine := NewWeatherEngine(0)
	snap := weatherSnapshot()

	updated, failures, err := engine.ApplySubstitutions(snap, []dto.SelectedSubstitution{
		{SlotID: "sl-1", ActivityID: "a-chess"},
		{SlotID: "sl-ghost", ActivityID: "a-chess"},
	})
	require.NoError(t, err)
	require.Nil(t, updated)
	require.Len(t, failures, 1)
	require.Equal(t, "sl-ghost", failures[0].SlotID)
	require.Equal(t, "slot not found in the session grid", failures[0].Reason)

	// The valid selection was not applied either.
	require.Equal(t, "a-swim", *snap.Slots[0].ActivityID)
}

func TestApplySubstitutionsRejectsBadSelections(t *testing.T) {
	engine := NewWeatherEngine(0)

	_, _, err := engine.ApplySubstitutions(weatherSnapshot(), nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	snap := weatherSnapshot()
	snap.Slots = append(snap.Slots, models.ScheduleSlot{ID: "sl-empty", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-08", StartTime: "09:00", EndTime: "10:30"})
	snap.Index()

	_, failures, err := engine.ApplySubstitutions(snap, []dto.SelectedSubstitution{
		{SlotID: "sl-1", ActivityID: "a-chess"},
		{SlotID: "sl-1", ActivityID: "a-chess"},
		{SlotID: "sl-empty", ActivityID: "a-chess"},
		{SlotID: "sl-1", ActivityID: "a-ghost"},
	})
	require.NoError(t, err)
	reasons := make([]string, 0, len(failures))
	for _, failure := range failures {
		reasons = append(reasons, failure.Reason)
	}
	require.Contains(t, reasons, "slot selected more than once")
	require.Contains(t, reasons, "slot has no assignment to substitute")
}
