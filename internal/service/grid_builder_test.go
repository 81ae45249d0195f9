package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

func TestGridBuilderExpandsTemplate(t *testing.T) {
	builder := NewGridBuilder(0)

	created, summary, err := builder.Build(julySession(), twoGroups(), morningTemplate(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, 6, summary.Created)
	require.Equal(t, 0, summary.Skipped)
	require.Len(t, created, 6)

	for _, slot := range created {
		require.NotEmpty(t, slot.ID)
		require.Equal(t, "sess-1", slot.SessionID)
		require.Equal(t, "09:00", slot.StartTime)
		require.Equal(t, "10:30", slot.EndTime)
		require.Nil(t, slot.ActivityID)
	}

	// Days ascend, and within a day groups follow their sort order.
	require.Equal(t, "2026-07-06", created[0].Date)
	require.Equal(t, "g-blue", created[0].GroupID)
	require.Equal(t, "g-red", created[1].GroupID)
	require.Equal(t, "2026-07-07", created[2].Date)
	require.Equal(t, "2026-07-08", created[4].Date)
}

func TestGridBuilderRebuildIsIdempotent(t *testing.T) {
	builder := NewGridBuilder(0)

	first, _, err := builder.Build(julySession(), twoGroups(), morningTemplate(), nil, nil)
	require.NoError(t, err)

	second, summary, err := builder.Build(julySession(), twoGroups(), morningTemplate(), nil, first)
	require.NoError(t, err)
	require.Empty(t, second)
	require.Equal(t, 0, summary.Created)
	require.Equal(t, 6, summary.Skipped)
}

func TestGridBuilderFreeDayOverride(t *testing.T) {
	builder := NewGridBuilder(0)
	overrides := map[string]*models.DayTemplate{"2026-07-07": nil}

	created, summary, err := builder.Build(julySession(), twoGroups(), morningTemplate(), overrides, nil)
	require.NoError(t, err)
	require.Equal(t, 4, summary.Created)
	for _, slot := range created {
		require.NotEqual(t, "2026-07-07", slot.Date)
	}
}

func TestGridBuilderDateOverrideSwapsTemplate(t *testing.T) {
	builder := NewGridBuilder(0)
	excursion := &models.DayTemplate{
		ID:   "tpl-2",
		Name: "Excursion Day",
		Slots: []models.DayTemplateSlot{
			{ID: "tr-3", SortOrder: 0, StartTime: "08:00", EndTime: "12:00", SlotType: models.SlotTypeActivity, IsSchedulable: true},
		},
	}
	overrides := map[string]*models.DayTemplate{"2026-07-07": excursion}

	created, summary, err := builder.Build(julySession(), twoGroups(), morningTemplate(), overrides, nil)
	require.NoError(t, err)
	require.Equal(t, 6, summary.Created)

	var excursionSlots int
	for _, slot := range created {
		if slot.Date == "2026-07-07" {
			require.Equal(t, "08:00", slot.StartTime)
			require.Equal(t, "12:00", slot.EndTime)
			excursionSlots++
		}
	}
	require.Equal(t, 2, excursionSlots)
}

func TestGridBuilderValidation(t *testing.T) {
	builder := NewGridBuilder(0)

	cases := []struct {
		name     string
		session  models.Session
		groups   []models.Group
		template *models.DayTemplate
	}{
		{
			name:     "malformed start date",
			session:  models.Session{ID: "s", StartDate: "July 6", EndDate: "2026-07-08"},
			groups:   twoGroups(),
			template: morningTemplate(),
		},
		{
			name:     "end before start",
			session:  models.Session{ID: "s", StartDate: "2026-07-08", EndDate: "2026-07-06"},
			groups:   twoGroups(),
			template: morningTemplate(),
		},
		{
			name:     "no groups",
			session:  julySession(),
			groups:   nil,
			template: morningTemplate(),
		},
		{
			name:    "template without schedulable ranges",
			session: julySession(),
			groups:  twoGroups(),
			template: &models.DayTemplate{ID: "tpl-x", Slots: []models.DayTemplateSlot{
				{StartTime: "12:00", EndTime: "13:00", SlotType: models.SlotTypeMeal, IsSchedulable: false},
			}},
		},
		{
			name:     "nil template",
			session:  julySession(),
			groups:   twoGroups(),
			template: nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := builder.Build(tc.session, tc.groups, tc.template, nil, nil)
			require.Error(t, err)
			require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestGridBuilderRejectsOversizedSpan(t *testing.T) {
	builder := NewGridBuilder(2)

	_, _, err := builder.Build(julySession(), twoGroups(), morningTemplate(), nil, nil)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Contains(t, err.Error(), "exceeding the 2 day limit")
}
