package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
	"github.com/noah-isme/camp-ops-api/pkg/storage"
)

type stubScheduleData struct {
	session    models.Session
	groups     []models.Group
	activities []models.Activity
	facilities []models.Facility
	staff      []models.Staff
	slots      []models.ScheduleSlot
}

func (s *stubScheduleData) FindByID(_ context.Context, id string) (*models.Session, error) {
	if id != s.session.ID {
		return nil, sql.ErrNoRows
	}
	copied := s.session
	return &copied, nil
}

func (s *stubScheduleData) ListBySession(_ context.Context, _ string) ([]models.Group, error) {
	return s.groups, nil
}

type stubActivityLister struct{ activities []models.Activity }

func (s *stubActivityLister) ListByOrganization(_ context.Context, _ string, _ bool) ([]models.Activity, error) {
	return s.activities, nil
}

type stubFacilityLister struct{ facilities []models.Facility }

func (s *stubFacilityLister) ListByOrganization(_ context.Context, _ string, _ bool) ([]models.Facility, error) {
	return s.facilities, nil
}

type stubStaffLister struct{ staff []models.Staff }

func (s *stubStaffLister) ListByOrganization(_ context.Context, _ string, _ bool) ([]models.Staff, error) {
	return s.staff, nil
}

type stubSlotLister struct{ slots []models.ScheduleSlot }

func (s *stubSlotLister) UpsertBatch(_ context.Context, _ sqlx.ExtContext, _ []models.ScheduleSlot) error {
	return nil
}

func (s *stubSlotLister) UpdateAssignment(_ context.Context, _ sqlx.ExtContext, _ *models.ScheduleSlot) error {
	return nil
}

func (s *stubSlotLister) FindByID(_ context.Context, _ string) (*models.ScheduleSlot, error) {
	return nil, sql.ErrNoRows
}

func (s *stubSlotLister) ListBySession(_ context.Context, _ string, _ dto.SlotFilter) ([]models.ScheduleSlot, error) {
	return s.slots, nil
}

func newExportFixture(t *testing.T) *ExportService {
	t.Helper()
	data := &stubScheduleData{
		session: models.Session{ID: "sess-1", OrganizationID: "org-1", Name: "July Camp", StartDate: "2026-07-06", EndDate: "2026-07-08"},
		groups: []models.Group{
			{ID: "g-red", Name: "Red"},
			{ID: "g-blue", Name: "Blue"},
		},
	}
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("export-secret", time.Hour)

	return NewExportService(
		data,
		data,
		&stubActivityLister{activities: []models.Activity{{ID: "a-swim", Name: "Swimming"}}},
		&stubFacilityLister{facilities: []models.Facility{{ID: "f-pool", Name: "Pool"}}},
		&stubStaffLister{staff: []models.Staff{{ID: "st-1", FirstName: "Nikos", LastName: "Papas"}}},
		&stubSlotLister{slots: []models.ScheduleSlot{
			{ID: "sl-1", GroupID: "g-red", Date: "2026-07-07", StartTime: "09:00", EndTime: "10:30", ActivityID: strPtr("a-swim"), FacilityID: strPtr("f-pool"), StaffIDs: []string{"st-1"}},
			{ID: "sl-2", GroupID: "g-blue", Date: "2026-07-06", StartTime: "09:00", EndTime: "10:30", ActivityID: strPtr("a-swim")},
			{ID: "sl-3", GroupID: "g-red", Date: "2026-07-06", StartTime: "15:00", EndTime: "16:30"},
		}},
		files,
		signer,
		ExportConfig{APIPrefix: "/api/v1"},
		nil,
	)
}

func TestExportBuildDatasetMasterView(t *testing.T) {
	svc := newExportFixture(t)

	dataset, title, err := svc.buildDataset(context.Background(), "sess-1", "master")
	require.NoError(t, err)
	require.Equal(t, "July Camp Schedule (master)", title)
	require.Equal(t, []string{"Date", "Start", "End", "Group", "Activity", "Facility", "Staff"}, dataset.Headers)
	require.Len(t, dataset.Rows, 3)
	require.Equal(t, "Swimming", dataset.Rows[0]["Activity"])
	require.Equal(t, "Nikos Papas", dataset.Rows[0]["Staff"])
	// Unassigned slots export with empty activity and facility cells.
	require.Equal(t, "", dataset.Rows[2]["Activity"])
}

func TestExportBuildDatasetGroupViewSorts(t *testing.T) {
	svc := newExportFixture(t)

	dataset, _, err := svc.buildDataset(context.Background(), "sess-1", "group")
	require.NoError(t, err)
	require.Equal(t, "Group", dataset.Headers[0])
	require.Equal(t, "Blue", dataset.Rows[0]["Group"])
	require.Equal(t, "Red", dataset.Rows[1]["Group"])
	require.Equal(t, "2026-07-06", dataset.Rows[1]["Date"])
	require.Equal(t, "2026-07-07", dataset.Rows[2]["Date"])
}

func TestExportBuildDatasetFacilityViewDropsUnbookedSlots(t *testing.T) {
	svc := newExportFixture(t)

	dataset, _, err := svc.buildDataset(context.Background(), "sess-1", "facility")
	require.NoError(t, err)
	require.Equal(t, "Facility", dataset.Headers[0])
	require.Len(t, dataset.Rows, 1)
	require.Equal(t, "Pool", dataset.Rows[0]["Facility"])
}

func TestExportBuildDatasetUnknownView(t *testing.T) {
	svc := newExportFixture(t)

	_, _, err := svc.buildDataset(context.Background(), "sess-1", "starchart")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported view")
}

func TestExportRenderWritesSignedCSV(t *testing.T) {
	svc := newExportFixture(t)
	job := &ExportJob{ID: "job-1", SessionID: "sess-1", View: "master", Format: "csv"}

	result, err := svc.render(context.Background(), job)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(result.url, "/api/v1/export/"), result.url)
	require.False(t, result.expiresAt.IsZero())

	token := strings.TrimPrefix(result.url, "/api/v1/export/")
	jobID, relPath, _, err := svc.ParseToken(token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, result.relPath, relPath)

	file, err := svc.Open(relPath)
	require.NoError(t, err)
	defer file.Close()
	content, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Contains(t, string(content), "Date,Start,End,Group,Activity,Facility,Staff")
	require.Contains(t, string(content), "Swimming")
}

func TestExportRenderPDF(t *testing.T) {
	svc := newExportFixture(t)
	job := &ExportJob{ID: "job-2", SessionID: "sess-1", View: "day", Format: "pdf"}

	result, err := svc.render(context.Background(), job)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(result.relPath, ".pdf"), result.relPath)
}

func TestExportSanitizeFilename(t *testing.T) {
	require.Equal(t, "na", sanitizeFilename(""))
	require.Equal(t, "a_b-c-d", sanitizeFilename("a b/c:d"))
	long := strings.Repeat("x", 150)
	require.Len(t, sanitizeFilename(long), 100)
}

func TestExportEnqueueUnknownSession(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.Enqueue(context.Background(), "sess-ghost", dto.ExportRequest{})
	require.Error(t, err)
}

func TestExportStatusUnknownJob(t *testing.T) {
	svc := newExportFixture(t)

	_, err := svc.Status("job-ghost")
	require.Error(t, err)
}
