package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// GroupRepository manages camper groups within a session.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository builds repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a group.
func (r *GroupRepository) Create(ctx context.Context, exec sqlx.ExtContext, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	const query = `
INSERT INTO groups (id, session_id, name, color, capacity, current_count, age_min, age_max, gender, sort_order, created_at, updated_at)
VALUES (:id, :session_id, :name, :color, :capacity, :current_count, :age_min, :age_max, :gender, :sort_order, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, group); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// FindByID returns one group.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, session_id, name, color, capacity, current_count, age_min, age_max, gender, sort_order, created_at, updated_at
FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListBySession returns the session's groups in display order.
func (r *GroupRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Group, error) {
	const query = `SELECT id, session_id, name, color, capacity, current_count, age_min, age_max, gender, sort_order, created_at, updated_at
FROM groups WHERE session_id = $1 ORDER BY sort_order ASC, name ASC`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, sessionID); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Update rewrites mutable group fields.
func (r *GroupRepository) Update(ctx context.Context, exec sqlx.ExtContext, group *models.Group) error {
	group.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE groups
SET name = :name, color = :color, capacity = :capacity, current_count = :current_count,
    age_min = :age_min, age_max = :age_max, gender = :gender, sort_order = :sort_order, updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, group); err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return nil
}

// Delete removes a group and its slots.
func (r *GroupRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM schedule_slots WHERE group_id = $1`, id); err != nil {
		return fmt.Errorf("delete group slots: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}
