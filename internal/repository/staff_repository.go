package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// StaffRepository manages the organization staff roster.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository builds repository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a staff member.
func (r *StaffRepository) Create(ctx context.Context, exec sqlx.ExtContext, staff *models.Staff) error {
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	const query = `
INSERT INTO staff (id, organization_id, first_name, last_name, role, specialties, is_active, created_at, updated_at)
VALUES (:id, :organization_id, :first_name, :last_name, :role, :specialties, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, staff); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// FindByID returns one staff member.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	const query = `SELECT id, organization_id, first_name, last_name, role, specialties, is_active, created_at, updated_at
FROM staff WHERE id = $1`
	var staff models.Staff
	if err := r.db.GetContext(ctx, &staff, query, id); err != nil {
		return nil, err
	}
	return &staff, nil
}

// ListByOrganization returns the roster, optionally active only.
func (r *StaffRepository) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Staff, error) {
	query := `SELECT id, organization_id, first_name, last_name, role, specialties, is_active, created_at, updated_at
FROM staff WHERE organization_id = $1`
	if activeOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY last_name ASC, first_name ASC, id ASC"
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, organizationID); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return staff, nil
}

// Update rewrites mutable staff fields.
func (r *StaffRepository) Update(ctx context.Context, exec sqlx.ExtContext, staff *models.Staff) error {
	staff.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE staff
SET first_name = :first_name, last_name = :last_name, role = :role,
    specialties = :specialties, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, staff); err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return nil
}
