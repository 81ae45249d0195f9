package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
)

func newSlotRepository(t *testing.T) (*SlotRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSlotRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSlotRepositoryUpsertBatch(t *testing.T) {
	repo, mock := newSlotRepository(t)

	mock.ExpectExec("INSERT INTO schedule_slots").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO schedule_slots").WillReturnResult(sqlmock.NewResult(0, 0))

	slots := []models.ScheduleSlot{
		{SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-06", StartTime: "09:00", EndTime: "10:30"},
		{ID: "sl-existing", SessionID: "sess-1", GroupID: "g-red", Date: "2026-07-06", StartTime: "15:00", EndTime: "16:30"},
	}
	require.NoError(t, repo.UpsertBatch(context.Background(), nil, slots))
	require.NotEmpty(t, slots[0].ID)
	require.Equal(t, "sl-existing", slots[1].ID)
	require.False(t, slots[0].UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryUpsertBatchEmpty(t *testing.T) {
	repo, mock := newSlotRepository(t)

	require.NoError(t, repo.UpsertBatch(context.Background(), nil, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryUpdateAssignment(t *testing.T) {
	repo, mock := newSlotRepository(t)
	mock.ExpectExec("UPDATE schedule_slots").WillReturnResult(sqlmock.NewResult(0, 1))

	slot := &models.ScheduleSlot{ID: "sl-1", ActivityID: strPtr("a-swim"), StaffIDs: []string{"st-1"}}
	require.NoError(t, repo.UpdateAssignment(context.Background(), nil, slot))
	require.False(t, slot.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryUpdateAssignmentMissingSlot(t *testing.T) {
	repo, mock := newSlotRepository(t)
	mock.ExpectExec("UPDATE schedule_slots").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAssignment(context.Background(), nil, &models.ScheduleSlot{ID: "sl-ghost"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no rows affected")
}

func TestSlotRepositoryListBySessionAppliesFilter(t *testing.T) {
	repo, mock := newSlotRepository(t)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "session_id", "group_id", "slot_date", "start_time", "end_time", "activity_id", "facility_id", "staff_ids", "notes", "created_at", "updated_at"}).
		AddRow("sl-1", "sess-1", "g-red", "2026-07-06", "09:00", "10:30", "a-swim", "f-pool", "{st-1}", "", now, now)

	mock.ExpectQuery(`session_id = \$1 AND slot_date = \$2 AND group_id = \$3`).
		WithArgs("sess-1", "2026-07-06", "g-red").
		WillReturnRows(rows)

	slots, err := repo.ListBySession(context.Background(), "sess-1", dto.SlotFilter{Date: "2026-07-06", GroupID: "g-red"})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	require.Equal(t, "sl-1", slots[0].ID)
	require.Equal(t, "a-swim", *slots[0].ActivityID)
	require.Equal(t, []string{"st-1"}, []string(slots[0].StaffIDs))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotRepositoryFindByIDNotFound(t *testing.T) {
	repo, mock := newSlotRepository(t)
	mock.ExpectQuery("FROM schedule_slots").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "sl-ghost")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSlotRepositoryDeleteBySession(t *testing.T) {
	repo, mock := newSlotRepository(t)
	mock.ExpectExec("DELETE FROM schedule_slots").
		WithArgs("sess-1").
		WillReturnResult(sqlmock.NewResult(0, 6))

	require.NoError(t, repo.DeleteBySession(context.Background(), nil, "sess-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
