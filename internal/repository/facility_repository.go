package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// FacilityRepository manages bookable venues.
type FacilityRepository struct {
	db *sqlx.DB
}

// NewFacilityRepository builds repository.
func NewFacilityRepository(db *sqlx.DB) *FacilityRepository {
	return &FacilityRepository{db: db}
}

func (r *FacilityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a facility.
func (r *FacilityRepository) Create(ctx context.Context, exec sqlx.ExtContext, facility *models.Facility) error {
	if facility.ID == "" {
		facility.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	facility.CreatedAt = now
	facility.UpdatedAt = now

	const query = `
INSERT INTO facilities (id, organization_id, name, capacity, indoor, is_active, created_at, updated_at)
VALUES (:id, :organization_id, :name, :capacity, :indoor, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, facility); err != nil {
		return fmt.Errorf("create facility: %w", err)
	}
	return nil
}

// FindByID returns one facility.
func (r *FacilityRepository) FindByID(ctx context.Context, id string) (*models.Facility, error) {
	const query = `SELECT id, organization_id, name, capacity, indoor, is_active, created_at, updated_at
FROM facilities WHERE id = $1`
	var facility models.Facility
	if err := r.db.GetContext(ctx, &facility, query, id); err != nil {
		return nil, err
	}
	return &facility, nil
}

// ListByOrganization returns venues, optionally active only.
func (r *FacilityRepository) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Facility, error) {
	query := `SELECT id, organization_id, name, capacity, indoor, is_active, created_at, updated_at
FROM facilities WHERE organization_id = $1`
	if activeOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY name ASC, id ASC"
	var facilities []models.Facility
	if err := r.db.SelectContext(ctx, &facilities, query, organizationID); err != nil {
		return nil, fmt.Errorf("list facilities: %w", err)
	}
	return facilities, nil
}

// Update rewrites mutable facility fields.
func (r *FacilityRepository) Update(ctx context.Context, exec sqlx.ExtContext, facility *models.Facility) error {
	facility.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE facilities
SET name = :name, capacity = :capacity, indoor = :indoor, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, facility); err != nil {
		return fmt.Errorf("update facility: %w", err)
	}
	return nil
}
