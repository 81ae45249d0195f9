package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
)

// SlotRepository manages the schedule grid. The (group, date, start time)
// uniqueness invariant is enforced here with an upsert so concurrent builds
// cannot duplicate cells.
type SlotRepository struct {
	db *sqlx.DB
}

// NewSlotRepository builds repository.
func NewSlotRepository(db *sqlx.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

func (r *SlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const slotColumns = `id, session_id, group_id, slot_date, start_time, end_time, activity_id, facility_id, staff_ids, notes, created_at, updated_at`

// UpsertBatch inserts slots, leaving existing identity triples untouched.
func (r *SlotRepository) UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.ScheduleSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO schedule_slots (id, session_id, group_id, slot_date, start_time, end_time, activity_id, facility_id, staff_ids, notes, created_at, updated_at)
VALUES (:id, :session_id, :group_id, :slot_date, :start_time, :end_time, :activity_id, :facility_id, :staff_ids, :notes, :created_at, :updated_at)
ON CONFLICT (group_id, slot_date, start_time) DO NOTHING`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		slot.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, slot); err != nil {
			return fmt.Errorf("upsert schedule slot: %w", err)
		}
	}
	return nil
}

// UpdateAssignment rewrites the assignment columns of one slot.
func (r *SlotRepository) UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, slot *models.ScheduleSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE schedule_slots
SET activity_id = :activity_id, facility_id = :facility_id, staff_ids = :staff_ids, notes = :notes, updated_at = :updated_at
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, slot)
	if err != nil {
		return fmt.Errorf("update slot assignment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update slot %s: no rows affected", slot.ID)
	}
	return nil
}

// FindByID returns one slot.
func (r *SlotRepository) FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM schedule_slots WHERE id = $1`
	var slot models.ScheduleSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListBySession returns the session grid in deterministic order, optionally
// narrowed by the filter.
func (r *SlotRepository) ListBySession(ctx context.Context, sessionID string, filter dto.SlotFilter) ([]models.ScheduleSlot, error) {
	conditions := []string{"session_id = $1"}
	args := []interface{}{sessionID}
	if filter.Date != "" {
		args = append(args, filter.Date)
		conditions = append(conditions, fmt.Sprintf("slot_date = $%d", len(args)))
	}
	if filter.GroupID != "" {
		args = append(args, filter.GroupID)
		conditions = append(conditions, fmt.Sprintf("group_id = $%d", len(args)))
	}
	if filter.FacilityID != "" {
		args = append(args, filter.FacilityID)
		conditions = append(conditions, fmt.Sprintf("facility_id = $%d", len(args)))
	}
	query := `SELECT ` + slotColumns + ` FROM schedule_slots WHERE ` + strings.Join(conditions, " AND ") +
		" ORDER BY slot_date ASC, start_time ASC, group_id ASC"

	var slots []models.ScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule slots: %w", err)
	}
	return slots, nil
}

// DeleteBySession clears the session grid.
func (r *SlotRepository) DeleteBySession(ctx context.Context, exec sqlx.ExtContext, sessionID string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM schedule_slots WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session slots: %w", err)
	}
	return nil
}
