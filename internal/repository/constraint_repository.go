package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// ConstraintRepository manages scheduling rules.
type ConstraintRepository struct {
	db *sqlx.DB
}

// NewConstraintRepository builds repository.
func NewConstraintRepository(db *sqlx.DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

func (r *ConstraintRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a constraint.
func (r *ConstraintRepository) Create(ctx context.Context, exec sqlx.ExtContext, constraint *models.Constraint) error {
	if constraint.ID == "" {
		constraint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	constraint.CreatedAt = now
	constraint.UpdatedAt = now

	const query = `
INSERT INTO constraints (id, organization_id, session_id, kind, activity_id, facility_id, group_id, staff_id, params, severity, is_active, created_at, updated_at)
VALUES (:id, :organization_id, :session_id, :kind, :activity_id, :facility_id, :group_id, :staff_id, :params, :severity, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, constraint); err != nil {
		return fmt.Errorf("create constraint: %w", err)
	}
	return nil
}

// FindByID returns one constraint.
func (r *ConstraintRepository) FindByID(ctx context.Context, id string) (*models.Constraint, error) {
	const query = `SELECT id, organization_id, session_id, kind, activity_id, facility_id, group_id, staff_id, params, severity, is_active, created_at, updated_at
FROM constraints WHERE id = $1`
	var constraint models.Constraint
	if err := r.db.GetContext(ctx, &constraint, query, id); err != nil {
		return nil, err
	}
	return &constraint, nil
}

// ListForSession returns organization-wide rules plus those scoped to the
// session.
func (r *ConstraintRepository) ListForSession(ctx context.Context, organizationID, sessionID string) ([]models.Constraint, error) {
	const query = `SELECT id, organization_id, session_id, kind, activity_id, facility_id, group_id, staff_id, params, severity, is_active, created_at, updated_at
FROM constraints
WHERE organization_id = $1 AND (session_id IS NULL OR session_id = $2)
ORDER BY severity ASC, kind ASC, id ASC`
	var constraints []models.Constraint
	if err := r.db.SelectContext(ctx, &constraints, query, organizationID, sessionID); err != nil {
		return nil, fmt.Errorf("list constraints: %w", err)
	}
	return constraints, nil
}

// Update rewrites mutable constraint fields.
func (r *ConstraintRepository) Update(ctx context.Context, exec sqlx.ExtContext, constraint *models.Constraint) error {
	constraint.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE constraints
SET session_id = :session_id, kind = :kind, activity_id = :activity_id, facility_id = :facility_id,
    group_id = :group_id, staff_id = :staff_id, params = :params, severity = :severity,
    is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, constraint); err != nil {
		return fmt.Errorf("update constraint: %w", err)
	}
	return nil
}

// Delete removes a constraint.
func (r *ConstraintRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	if _, err := r.exec(exec).ExecContext(ctx, `DELETE FROM constraints WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete constraint: %w", err)
	}
	return nil
}
