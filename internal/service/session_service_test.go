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

type stubSessionStore struct {
	sessions    map[string]models.Session
	listResult  []models.Session
	listTotal   int
	lastFilter  models.SessionFilter
	created     *models.Session
	updated     *models.Session
	statusSet   models.SessionStatus
	softDeleted []string
}

func (s *stubSessionStore) Create(_ context.Context, _ sqlx.ExtContext, session *models.Session) error {
	session.ID = "sess-new"
	s.created = session
	return nil
}

func (s *stubSessionStore) FindByID(_ context.Context, id string) (*models.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := session
	return &copied, nil
}

func (s *stubSessionStore) List(_ context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	s.lastFilter = filter
	return s.listResult, s.listTotal, nil
}

func (s *stubSessionStore) Update(_ context.Context, _ sqlx.ExtContext, session *models.Session) error {
	s.updated = session
	return nil
}

func (s *stubSessionStore) UpdateStatus(_ context.Context, _ sqlx.ExtContext, _ string, status models.SessionStatus) error {
	s.statusSet = status
	return nil
}

func (s *stubSessionStore) SoftDelete(_ context.Context, _ sqlx.ExtContext, id string) error {
	s.softDeleted = append(s.softDeleted, id)
	return nil
}

type stubGroupStore struct {
	groups  map[string]models.Group
	created *models.Group
	updated *models.Group
	deleted []string
}

func (s *stubGroupStore) Create(_ context.Context, _ sqlx.ExtContext, group *models.Group) error {
	group.ID = "g-new"
	s.created = group
	return nil
}

func (s *stubGroupStore) FindByID(_ context.Context, id string) (*models.Group, error) {
	group, ok := s.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := group
	return &copied, nil
}

func (s *stubGroupStore) ListBySession(_ context.Context, _ string) ([]models.Group, error) {
	var result []models.Group
	for _, group := range s.groups {
		result = append(result, group)
	}
	return result, nil
}

func (s *stubGroupStore) Update(_ context.Context, _ sqlx.ExtContext, group *models.Group) error {
	s.updated = group
	return nil
}

func (s *stubGroupStore) Delete(_ context.Context, _ sqlx.ExtContext, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newSessionFixture(t *testing.T) (*SessionService, *stubSessionStore, *stubGroupStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sessions := &stubSessionStore{sessions: map[string]models.Session{
		"sess-1": {ID: "sess-1", OrganizationID: "org-1", Name: "July Camp", StartDate: "2026-07-06", EndDate: "2026-07-08", Status: models.SessionStatusPlanning},
	}}
	groups := &stubGroupStore{groups: map[string]models.Group{
		"g-1": {ID: "g-1", SessionID: "sess-1", Name: "Red", AgeMin: 8, AgeMax: 10},
	}}
	svc := NewSessionService(sessions, groups, sqlx.NewDb(db, "sqlmock"), nil, nil)
	return svc, sessions, groups, mock
}

func TestSessionServiceCreate(t *testing.T) {
	svc, sessions, _, _ := newSessionFixture(t)

	created, err := svc.Create(context.Background(), dto.CreateSessionRequest{
		OrganizationID: "org-1",
		Name:           "August Camp",
		StartDate:      "2026-08-03",
		EndDate:        "2026-08-14",
		MaxCampers:     120,
	})
	require.NoError(t, err)
	require.Equal(t, "sess-new", created.ID)
	require.Equal(t, models.SessionStatusDraft, created.Status)
	require.NotNil(t, sessions.created)
}

func TestSessionServiceCreateValidation(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)

	_, err := svc.Create(context.Background(), dto.CreateSessionRequest{
		OrganizationID: "org-1",
		Name:           "X",
		StartDate:      "2026-08-03",
		EndDate:        "2026-08-14",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), dto.CreateSessionRequest{
		OrganizationID: "org-1",
		Name:           "Backwards",
		StartDate:      "2026-08-14",
		EndDate:        "2026-08-03",
	})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceGetNotFound(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)

	_, err := svc.Get(context.Background(), "sess-missing")
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceListDefaultsPaging(t *testing.T) {
	svc, sessions, _, _ := newSessionFixture(t)
	sessions.listResult = []models.Session{{ID: "sess-1"}}
	sessions.listTotal = 41

	result, pagination, err := svc.List(context.Background(), dto.SessionListQuery{OrganizationID: "org-1"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, 1, pagination.Page)
	require.Equal(t, 20, pagination.PageSize)
	require.Equal(t, 41, pagination.TotalCount)
	require.Equal(t, 1, sessions.lastFilter.Page)
	require.Equal(t, 20, sessions.lastFilter.PageSize)
}

func TestSessionServiceUpdateLocksDatesOutsidePlanning(t *testing.T) {
	svc, sessions, _, _ := newSessionFixture(t)
	active := sessions.sessions["sess-1"]
	active.Status = models.SessionStatusActive
	sessions.sessions["sess-1"] = active

	_, err := svc.Update(context.Background(), "sess-1", dto.UpdateSessionRequest{StartDate: "2026-07-07"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// Renaming stays allowed while active.
	updated, err := svc.Update(context.Background(), "sess-1", dto.UpdateSessionRequest{Name: "July Camp B"})
	require.NoError(t, err)
	require.Equal(t, "July Camp B", updated.Name)
}

func TestSessionServiceUpdateRejectsInvertedDates(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)

	_, err := svc.Update(context.Background(), "sess-1", dto.UpdateSessionRequest{EndDate: "2026-07-01"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceStatusTransitions(t *testing.T) {
	svc, sessions, _, _ := newSessionFixture(t)

	updated, err := svc.UpdateStatus(context.Background(), "sess-1", dto.UpdateSessionStatusRequest{Status: "active"})
	require.NoError(t, err)
	require.Equal(t, models.SessionStatusActive, updated.Status)
	require.Equal(t, models.SessionStatusActive, sessions.statusSet)

	// Planning cannot jump straight to completed.
	_, err = svc.UpdateStatus(context.Background(), "sess-1", dto.UpdateSessionStatusRequest{Status: "completed"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// Cancellation is reachable from any non-terminal status.
	_, err = svc.UpdateStatus(context.Background(), "sess-1", dto.UpdateSessionStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	completed := sessions.sessions["sess-1"]
	completed.Status = models.SessionStatusCompleted
	sessions.sessions["sess-1"] = completed
	_, err = svc.UpdateStatus(context.Background(), "sess-1", dto.UpdateSessionStatusRequest{Status: "cancelled"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceDeleteRunsInTransaction(t *testing.T) {
	svc, sessions, _, mock := newSessionFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), "sess-1"))
	require.Equal(t, []string{"sess-1"}, sessions.softDeleted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionServiceCreateGroupDefaultsGender(t *testing.T) {
	svc, _, groups, _ := newSessionFixture(t)

	group, err := svc.CreateGroup(context.Background(), "sess-1", dto.CreateGroupRequest{
		Name:   "Blue",
		AgeMin: 8,
		AgeMax: 11,
	})
	require.NoError(t, err)
	require.Equal(t, models.GroupGenderMixed, group.Gender)
	require.Equal(t, "sess-1", group.SessionID)
	require.NotNil(t, groups.created)
}

func TestSessionServiceCreateGroupUnknownSession(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)

	_, err := svc.CreateGroup(context.Background(), "sess-missing", dto.CreateGroupRequest{Name: "Blue", AgeMin: 8, AgeMax: 11})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceUpdateGroupGuards(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)

	_, err := svc.UpdateGroup(context.Background(), "sess-other", "g-1", dto.UpdateGroupRequest{Name: "Green"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateGroup(context.Background(), "sess-1", "g-1", dto.UpdateGroupRequest{AgeMax: 5})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSessionServiceDeleteGroupCascades(t *testing.T) {
	svc, _, groups, mock := newSessionFixture(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, svc.DeleteGroup(context.Background(), "sess-1", "g-1"))
	require.Equal(t, []string{"g-1"}, groups.deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
