package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// ActivityRepository manages the organization activity catalog.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository builds repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts an activity.
func (r *ActivityRepository) Create(ctx context.Context, exec sqlx.ExtContext, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	const query = `
INSERT INTO activities (id, organization_id, name, duration_minutes, min_participants, max_participants,
    min_age, max_age, required_staff_count, weather_dependent, allowed_weather, tags, is_active, created_at, updated_at)
VALUES (:id, :organization_id, :name, :duration_minutes, :min_participants, :max_participants,
    :min_age, :max_age, :required_staff_count, :weather_dependent, :allowed_weather, :tags, :is_active, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

// FindByID returns one activity.
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*models.Activity, error) {
	const query = `SELECT id, organization_id, name, duration_minutes, min_participants, max_participants,
    min_age, max_age, required_staff_count, weather_dependent, allowed_weather, tags, is_active, created_at, updated_at
FROM activities WHERE id = $1`
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// ListByOrganization returns the catalog, optionally restricted to active
// entries.
func (r *ActivityRepository) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Activity, error) {
	query := `SELECT id, organization_id, name, duration_minutes, min_participants, max_participants,
    min_age, max_age, required_staff_count, weather_dependent, allowed_weather, tags, is_active, created_at, updated_at
FROM activities WHERE organization_id = $1`
	if activeOnly {
		query += " AND is_active = TRUE"
	}
	query += " ORDER BY name ASC, id ASC"
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, organizationID); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}

// Update rewrites mutable activity fields.
func (r *ActivityRepository) Update(ctx context.Context, exec sqlx.ExtContext, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE activities
SET name = :name, duration_minutes = :duration_minutes, min_participants = :min_participants,
    max_participants = :max_participants, min_age = :min_age, max_age = :max_age,
    required_staff_count = :required_staff_count, weather_dependent = :weather_dependent,
    allowed_weather = :allowed_weather, tags = :tags, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, activity); err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	return nil
}
