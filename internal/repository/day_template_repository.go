package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/camp-ops-api/internal/models"
)

// DayTemplateRepository manages reusable daily skeletons and their ranges.
type DayTemplateRepository struct {
	db *sqlx.DB
}

// NewDayTemplateRepository builds repository.
func NewDayTemplateRepository(db *sqlx.DB) *DayTemplateRepository {
	return &DayTemplateRepository{db: db}
}

func (r *DayTemplateRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// Create inserts a template together with its slot ranges.
func (r *DayTemplateRepository) Create(ctx context.Context, exec sqlx.ExtContext, template *models.DayTemplate) error {
	if template.ID == "" {
		template.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now
	target := r.exec(exec)

	const query = `
INSERT INTO day_templates (id, organization_id, name, created_at, updated_at)
VALUES (:id, :organization_id, :name, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, query, template); err != nil {
		return fmt.Errorf("create day template: %w", err)
	}

	const slotQuery = `
INSERT INTO day_template_slots (id, day_template_id, sort_order, start_time, end_time, slot_type, is_schedulable)
VALUES (:id, :day_template_id, :sort_order, :start_time, :end_time, :slot_type, :is_schedulable)`
	for i := range template.Slots {
		slot := &template.Slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		slot.DayTemplateID = template.ID
		if _, err := sqlx.NamedExecContext(ctx, target, slotQuery, slot); err != nil {
			return fmt.Errorf("create day template slot: %w", err)
		}
	}
	return nil
}

// FindByID returns a template with its ranges loaded.
func (r *DayTemplateRepository) FindByID(ctx context.Context, id string) (*models.DayTemplate, error) {
	const query = `SELECT id, organization_id, name, created_at, updated_at FROM day_templates WHERE id = $1`
	var template models.DayTemplate
	if err := r.db.GetContext(ctx, &template, query, id); err != nil {
		return nil, err
	}
	const slotQuery = `SELECT id, day_template_id, sort_order, start_time, end_time, slot_type, is_schedulable
FROM day_template_slots WHERE day_template_id = $1 ORDER BY sort_order ASC, start_time ASC`
	if err := r.db.SelectContext(ctx, &template.Slots, slotQuery, id); err != nil {
		return nil, fmt.Errorf("load day template slots: %w", err)
	}
	return &template, nil
}

// ListByOrganization returns template headers without ranges.
func (r *DayTemplateRepository) ListByOrganization(ctx context.Context, organizationID string) ([]models.DayTemplate, error) {
	const query = `SELECT id, organization_id, name, created_at, updated_at
FROM day_templates WHERE organization_id = $1 ORDER BY name ASC, id ASC`
	var templates []models.DayTemplate
	if err := r.db.SelectContext(ctx, &templates, query, organizationID); err != nil {
		return nil, fmt.Errorf("list day templates: %w", err)
	}
	return templates, nil
}

// Delete removes a template and its ranges.
func (r *DayTemplateRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id string) error {
	target := r.exec(exec)
	if _, err := target.ExecContext(ctx, `DELETE FROM day_template_slots WHERE day_template_id = $1`, id); err != nil {
		return fmt.Errorf("delete day template slots: %w", err)
	}
	if _, err := target.ExecContext(ctx, `DELETE FROM day_templates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete day template: %w", err)
	}
	return nil
}
