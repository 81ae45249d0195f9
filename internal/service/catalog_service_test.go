package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

type stubActivityStore struct{ created *models.Activity }

func (s *stubActivityStore) Create(_ context.Context, _ sqlx.ExtContext, activity *models.Activity) error {
	activity.ID = "a-new"
	s.created = activity
	return nil
}

func (s *stubActivityStore) FindByID(_ context.Context, _ string) (*models.Activity, error) {
	return nil, sql.ErrNoRows
}

func (s *stubActivityStore) ListByOrganization(_ context.Context, _ string, _ bool) ([]models.Activity, error) {
	return nil, nil
}

func (s *stubActivityStore) Update(_ context.Context, _ sqlx.ExtContext, _ *models.Activity) error {
	return nil
}

type stubFacilityStore struct{}

func (s *stubFacilityStore) Create(_ context.Context, _ sqlx.ExtContext, facility *models.Facility) error {
	facility.ID = "f-new"
	return nil
}

func (s *stubFacilityStore) FindByID(_ context.Context, _ string) (*models.Facility, error) {
	return nil, sql.ErrNoRows
}

func (s *stubFacilityStore) ListByOrganization(_ context.Context, _ string, _ bool) ([]models.Facility, error) {
	return nil, nil
}

func (s *stubFacilityStore) Update(_ context.Context, _ sqlx.ExtContext, _ *models.Facility) error {
	return nil
}

type stubStaffStore struct{}

func (s *stubStaffStore) Create(_ context.Context, _ sqlx.ExtContext, staff *models.Staff) error {
	staff.ID = "st-new"
	return nil
}

func (s *stubStaffStore) FindByID(_ context.Context, _ string) (*models.Staff, error) {
	return nil, sql.ErrNoRows
}

func (s *stubStaffStore) ListByOrganization(_ context.Context, _ string, _ bool) ([]models.Staff, error) {
	return nil, nil
}

func (s *stubStaffStore) Update(_ context.Context, _ sqlx.ExtContext, _ *models.Staff) error {
	return nil
}

type stubConstraintStore struct {
	byID    map[string]models.Constraint
	created *models.Constraint
	updated *models.Constraint
	deleted []string
}

func (s *stubConstraintStore) Create(_ context.Context, _ sqlx.ExtContext, constraint *models.Constraint) error {
	constraint.ID = "c-new"
	s.created = constraint
	return nil
}

func (s *stubConstraintStore) FindByID(_ context.Context, id string) (*models.Constraint, error) {
	constraint, ok := s.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := constraint
	return &copied, nil
}

func (s *stubConstraintStore) ListForSession(_ context.Context, _, _ string) ([]models.Constraint, error) {
	return nil, nil
}

func (s *stubConstraintStore) Update(_ context.Context, _ sqlx.ExtContext, constraint *models.Constraint) error {
	s.updated = constraint
	return nil
}

func (s *stubConstraintStore) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type stubDayTemplateStore struct{ created *models.DayTemplate }

func (s *stubDayTemplateStore) Create(_ context.Context, _ sqlx.ExtContext, template *models.DayTemplate) error {
	template.ID = "tpl-new"
	s.created = template
	return nil
}

func (s *stubDayTemplateStore) FindByID(_ context.Context, _ string) (*models.DayTemplate, error) {
	return nil, sql.ErrNoRows
}

func (s *stubDayTemplateStore) ListByOrganization(_ context.Context, _ string) ([]models.DayTemplate, error) {
	return nil, nil
}

func (s *stubDayTemplateStore) Delete(_ context.Context, _ sqlx.ExtContext, _ string) error {
	return nil
}

func newCatalogFixture(t *testing.T) (*CatalogService, *stubConstraintStore, *stubDayTemplateStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	constraints := &stubConstraintStore{byID: map[string]models.Constraint{
		"c-1": {ID: "c-1", OrganizationID: "org-1", Kind: models.ConstraintMaxPerDay, Params: []byte(`{"max":2}`), Severity: models.SeverityHard, IsActive: true},
	}}
	templates := &stubDayTemplateStore{}
	svc := NewCatalogService(&stubActivityStore{}, &stubFacilityStore{}, &stubStaffStore{}, constraints, templates, sqlx.NewDb(db, "sqlmock"), nil, nil)
	return svc, constraints, templates, mock
}

func TestCatalogCreateActivityBounds(t *testing.T) {
	svc, _, _, _ := newCatalogFixture(t)

	activity, err := svc.CreateActivity(context.Background(), dto.CreateActivityRequest{
		OrganizationID:  "org-1",
		Name:            "Archery",
		DurationMinutes: 60,
		MinAge:          8,
		MaxAge:          14,
	})
	require.NoError(t, err)
	require.Equal(t, "a-new", activity.ID)
	require.True(t, activity.IsActive)

	_, err = svc.CreateActivity(context.Background(), dto.CreateActivityRequest{
		OrganizationID:  "org-1",
		Name:            "Backwards Ages",
		DurationMinutes: 60,
		MinAge:          14,
		MaxAge:          8,
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.CreateActivity(context.Background(), dto.CreateActivityRequest{
		OrganizationID:  "org-1",
		Name:            "Backwards Sizes",
		DurationMinutes: 60,
		MinParticipants: 20,
		MaxParticipants: 10,
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCatalogCreateConstraintChecksParamsAgainstKind(t *testing.T) {
	svc, constraints, _, _ := newCatalogFixture(t)

	created, err := svc.CreateConstraint(context.Background(), dto.CreateConstraintRequest{
		OrganizationID: "org-1",
		Kind:           "max_per_day",
		Params:         []byte(`{"max":2}`),
		Severity:       "hard",
	})
	require.NoError(t, err)
	require.Equal(t, "c-new", created.ID)
	require.True(t, created.IsActive)
	require.NotNil(t, constraints.created)

	_, err = svc.CreateConstraint(context.Background(), dto.CreateConstraintRequest{
		OrganizationID: "org-1",
		Kind:           "max_per_day",
		Params:         []byte(`{"max":"plenty"}`),
		Severity:       "hard",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Contains(t, err.Error(), "do not match kind max_per_day")

	_, err = svc.CreateConstraint(context.Background(), dto.CreateConstraintRequest{
		OrganizationID: "org-1",
		Kind:           "curfew",
		Params:         []byte(`{}`),
		Severity:       "hard",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCatalogUpdateConstraint(t *testing.T) {
	svc, constraints, _, _ := newCatalogFixture(t)

	soft := "soft"
	inactive := false
	updated, err := svc.UpdateConstraint(context.Background(), "c-1", dto.UpdateConstraintRequest{
		Params:   []byte(`{"max":3}`),
		Severity: &soft,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, models.SeveritySoft, updated.Severity)
	require.False(t, updated.IsActive)
	require.NotNil(t, constraints.updated)

	_, err = svc.UpdateConstraint(context.Background(), "c-1", dto.UpdateConstraintRequest{
		Params: []byte(`{"max":true}`),
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateConstraint(context.Background(), "c-ghost", dto.UpdateConstraintRequest{})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogCreateDayTemplate(t *testing.T) {
	svc, _, templates, mock := newCatalogFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	template, err := svc.CreateDayTemplate(context.Background(), dto.CreateDayTemplateRequest{
		OrganizationID: "org-1",
		Name:           "Standard Day",
		Slots: []dto.DayTemplateSlotRequest{
			{StartTime: "09:00", EndTime: "10:30", SlotType: "activity"},
			{StartTime: "10:30", EndTime: "11:00", SlotType: "break"},
			{StartTime: "12:00", EndTime: "13:00", SlotType: "meal"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "tpl-new", template.ID)
	require.Len(t, template.Slots, 3)
	require.True(t, template.Slots[0].IsSchedulable)
	require.False(t, template.Slots[1].IsSchedulable)
	require.Equal(t, 2, template.Slots[2].SortOrder)
	require.NotNil(t, templates.created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogCreateDayTemplateRejectsBadRanges(t *testing.T) {
	svc, _, _, _ := newCatalogFixture(t)

	cases := []struct {
		name  string
		slots []dto.DayTemplateSlotRequest
	}{
		{"malformed time", []dto.DayTemplateSlotRequest{{StartTime: "9h000", EndTime: "10:30", SlotType: "activity"}}},
		{"inverted range", []dto.DayTemplateSlotRequest{{StartTime: "10:30", EndTime: "09:00", SlotType: "activity"}}},
		{"overlapping ranges", []dto.DayTemplateSlotRequest{
			{StartTime: "09:00", EndTime: "10:30", SlotType: "activity"},
			{StartTime: "10:00", EndTime: "11:00", SlotType: "activity"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateDayTemplate(context.Background(), dto.CreateDayTemplateRequest{
				OrganizationID: "org-1",
				Name:           "Broken",
				Slots:          tc.slots,
			})
			require.Error(t, err)
			require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestCatalogListConstraintsRequiresOrganization(t *testing.T) {
	svc, _, _, _ := newCatalogFixture(t)

	_, err := svc.ListConstraints(context.Background(), "", "sess-1")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
