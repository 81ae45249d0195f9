package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// SessionRepository manages camp sessions. Deletes are soft: rows keep their
// history and cascade tombstones to groups and slots inside one transaction.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository builds repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a session.
func (r *SessionRepository) Create(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = models.SessionStatusDraft
	}

	const query = `
INSERT INTO sessions (id, organization_id, name, start_date, end_date, status, max_campers, current_campers, created_at, updated_at)
VALUES (:id, :organization_id, :name, :start_date, :end_date, :status, :max_campers, :current_campers, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// FindByID returns a non-deleted session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	const query = `SELECT id, organization_id, name, start_date, end_date, status, max_campers, current_campers, deleted_at, created_at, updated_at
FROM sessions WHERE id = $1 AND deleted_at IS NULL`
	var session models.Session
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns sessions matching the filter with a total count for paging.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error) {
	conditions := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	if filter.OrganizationID != "" {
		args = append(args, filter.OrganizationID)
		conditions = append(conditions, fmt.Sprintf("organization_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM sessions WHERE " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	query := `SELECT id, organization_id, name, start_date, end_date, status, max_campers, current_campers, deleted_at, created_at, updated_at
FROM sessions WHERE ` + where + " ORDER BY start_date DESC, name ASC"
	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.PageSize, offset)
	}

	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// Update rewrites mutable session fields.
func (r *SessionRepository) Update(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE sessions
SET name = :name, start_date = :start_date, end_date = :end_date, max_campers = :max_campers,
    current_campers = :current_campers, updated_at = :updated_at
WHERE id = :id AND deleted_at IS NULL`
	result, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, session)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update session %s: no rows affected", session.ID)
	}
	return nil
}

// UpdateStatus moves the session to a new lifecycle status.
func (r *SessionRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.SessionStatus) error {
	const query = `UPDATE sessions SET status = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`
	if _, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// SoftDelete tombstones the session and cascades to its groups and slots.
func (r *SessionRepository) SoftDelete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	now := time.Now().UTC()
	if _, err := target.ExecContext(ctx, `UPDATE sessions SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`, now, id); err != nil {
		return fmt.Errorf("soft delete session: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM schedule_slots WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete session slots: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM groups WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete session groups: %w", err)
	}
	return nil
}
