package service

import (
	"encoding/json"
	"testing"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

func strPtr(s string) *string { return &s }

func mustParams(t *testing.T, v interface{}) types.JSONText {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return types.JSONText(raw)
}

func julySession() models.Session {
	return models.Session{
		ID:             "sess-1",
		OrganizationID: "org-1",
		Name:           "July Camp",
		StartDate:      "2026-07-06",
		EndDate:        "2026-07-08",
		Status:         models.SessionStatusPlanning,
	}
}

func morningTemplate() *models.DayTemplate {
	return &models.DayTemplate{
		ID:             "tpl-1",
		OrganizationID: "org-1",
		Name:           "Standard Day",
		Slots: []models.DayTemplateSlot{
			{ID: "tr-1", SortOrder: 0, StartTime: "09:00", EndTime: "10:30", SlotType: models.SlotTypeActivity, IsSchedulable: true},
			{ID: "tr-2", SortOrder: 1, StartTime: "12:00", EndTime: "13:00", SlotType: models.SlotTypeMeal, IsSchedulable: false},
		},
	}
}

func twoGroups() []models.Group {
	return []models.Group{
		{ID: "g-red", SessionID: "sess-1", Name: "Red", AgeMin: 8, AgeMax: 10, CurrentCount: 12, Gender: models.GroupGenderMixed, SortOrder: 1},
		{ID: "g-blue", SessionID: "sess-1", Name: "Blue", AgeMin: 11, AgeMax: 13, CurrentCount: 14, Gender: models.GroupGenderMixed, SortOrder: 0},
	}
}
