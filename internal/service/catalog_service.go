package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

type activityStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, activity *models.Activity) error
	FindByID(ctx context.Context, id string) (*models.Activity, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Activity, error)
	Update(ctx context.Context, exec sqlx.ExtContext, activity *models.Activity) error
}

type facilityStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, facility *models.Facility) error
	FindByID(ctx context.Context, id string) (*models.Facility, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Facility, error)
	Update(ctx context.Context, exec sqlx.ExtContext, facility *models.Facility) error
}

type staffStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, staff *models.Staff) error
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Staff, error)
	Update(ctx context.Context, exec sqlx.ExtContext, staff *models.Staff) error
}

type constraintStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, constraint *models.Constraint) error
	FindByID(ctx context.Context, id string) (*models.Constraint, error)
	ListForSession(ctx context.Context, organizationID, sessionID string) ([]models.Constraint, error)
	Update(ctx context.Context, exec sqlx.ExtContext, constraint *models.Constraint) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type dayTemplateStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, template *models.DayTemplate) error
	FindByID(ctx context.Context, id string) (*models.DayTemplate, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]models.DayTemplate, error)
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// CatalogService manages the organization-level resources the scheduler
// draws from: activities, facilities, staff, constraints, day templates.
type CatalogService struct {
	activities  activityStore
	facilities  facilityStore
	staff       staffStore
	constraints constraintStore
	templates   dayTemplateStore
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService wires catalog dependencies.
func NewCatalogService(
	activities activityStore,
	facilities facilityStore,
	staff staffStore,
	constraints constraintStore,
	templates dayTemplateStore,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		activities:  activities,
		facilities:  facilities,
		staff:       staff,
		constraints: constraints,
		templates:   templates,
		tx:          tx,
		validator:   validate,
		logger:      logger,
	}
}

// CreateActivity registers an activity.
func (s *CatalogService) CreateActivity(ctx context.Context, req dto.CreateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	if req.MaxParticipants > 0 && req.MinParticipants > req.MaxParticipants {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minParticipants exceeds maxParticipants")
	}
	if req.MaxAge > 0 && req.MinAge > req.MaxAge {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minAge exceeds maxAge")
	}

	activity := &models.Activity{
		OrganizationID:     req.OrganizationID,
		Name:               req.Name,
		DurationMinutes:    req.DurationMinutes,
		MinParticipants:    req.MinParticipants,
		MaxParticipants:    req.MaxParticipants,
		MinAge:             req.MinAge,
		MaxAge:             req.MaxAge,
		RequiredStaffCount: req.RequiredStaffCount,
		WeatherDependent:   req.WeatherDependent,
		AllowedWeather:     req.AllowedWeather,
		Tags:               req.Tags,
		IsActive:           true,
	}
	if err := s.activities.Create(ctx, nil, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	s.logger.Info("activity created", zap.String("activityId", activity.ID), zap.String("name", activity.Name))
	return activity, nil
}

// ListActivities returns the organization catalog.
func (s *CatalogService) ListActivities(ctx context.Context, organizationID string, activeOnly bool) ([]models.Activity, error) {
	if organizationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "organizationId is required")
	}
	activities, err := s.activities.ListByOrganization(ctx, organizationID, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, nil
}

// UpdateActivity edits an activity. Deactivated activities are never picked
// by the solver but keep existing assignments intact.
func (s *CatalogService) UpdateActivity(ctx context.Context, id string, req dto.UpdateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity payload")
	}
	activity, err := s.activities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	if req.Name != nil {
		activity.Name = *req.Name
	}
	if req.DurationMinutes != nil {
		activity.DurationMinutes = *req.DurationMinutes
	}
	if req.MinParticipants != nil {
		activity.MinParticipants = *req.MinParticipants
	}
	if req.MaxParticipants != nil {
		activity.MaxParticipants = *req.MaxParticipants
	}
	if req.MinAge != nil {
		activity.MinAge = *req.MinAge
	}
	if req.MaxAge != nil {
		activity.MaxAge = *req.MaxAge
	}
	if req.RequiredStaffCount != nil {
		activity.RequiredStaffCount = *req.RequiredStaffCount
	}
	if req.WeatherDependent != nil {
		activity.WeatherDependent = *req.WeatherDependent
	}
	if req.AllowedWeather != nil {
		activity.AllowedWeather = req.AllowedWeather
	}
	if req.Tags != nil {
		activity.Tags = req.Tags
	}
	if req.IsActive != nil {
		activity.IsActive = *req.IsActive
	}
	if activity.MaxParticipants > 0 && activity.MinParticipants > activity.MaxParticipants {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minParticipants exceeds maxParticipants")
	}
	if activity.MaxAge > 0 && activity.MinAge > activity.MaxAge {
		return nil, appErrors.Clone(appErrors.ErrValidation, "minAge exceeds maxAge")
	}

	if err := s.activities.Update(ctx, nil, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}
	return activity, nil
}

// CreateFacility registers a venue.
func (s *CatalogService) CreateFacility(ctx context.Context, req dto.CreateFacilityRequest) (*models.Facility, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid facility payload")
	}
	facility := &models.Facility{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Capacity:       req.Capacity,
		Indoor:         req.Indoor,
		IsActive:       true,
	}
	if err := s.facilities.Create(ctx, nil, facility); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create facility")
	}
	s.logger.Info("facility created", zap.String("facilityId", facility.ID), zap.String("name", facility.Name))
	return facility, nil
}

// ListFacilities returns the organization venues.
func (s *CatalogService) ListFacilities(ctx context.Context, organizationID string, activeOnly bool) ([]models.Facility, error) {
	if organizationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "organizationId is required")
	}
	facilities, err := s.facilities.ListByOrganization(ctx, organizationID, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list facilities")
	}
	return facilities, nil
}

// UpdateFacility edits a venue.
func (s *CatalogService) UpdateFacility(ctx context.Context, id string, req dto.UpdateFacilityRequest) (*models.Facility, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid facility payload")
	}
	facility, err := s.facilities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "facility not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load facility")
	}

	if req.Name != nil {
		facility.Name = *req.Name
	}
	if req.Capacity != nil {
		facility.Capacity = *req.Capacity
	}
	if req.Indoor != nil {
		facility.Indoor = *req.Indoor
	}
	if req.IsActive != nil {
		facility.IsActive = *req.IsActive
	}

	if err := s.facilities.Update(ctx, nil, facility); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update facility")
	}
	return facility, nil
}

// CreateStaff registers a team member.
func (s *CatalogService) CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	member := &models.Staff{
		OrganizationID: req.OrganizationID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Role:           req.Role,
		Specialties:    req.Specialties,
		IsActive:       true,
	}
	if err := s.staff.Create(ctx, nil, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create staff member")
	}
	return member, nil
}

// ListStaff returns the organization team.
func (s *CatalogService) ListStaff(ctx context.Context, organizationID string, activeOnly bool) ([]models.Staff, error) {
	if organizationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "organizationId is required")
	}
	staff, err := s.staff.ListByOrganization(ctx, organizationID, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list staff")
	}
	return staff, nil
}

// UpdateStaff edits a team member.
func (s *CatalogService) UpdateStaff(ctx context.Context, id string, req dto.UpdateStaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid staff payload")
	}
	member, err := s.staff.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "staff member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff member")
	}

	if req.FirstName != nil {
		member.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		member.LastName = *req.LastName
	}
	if req.Role != nil {
		member.Role = *req.Role
	}
	if req.Specialties != nil {
		member.Specialties = req.Specialties
	}
	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}

	if err := s.staff.Update(ctx, nil, member); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update staff member")
	}
	return member, nil
}

// CreateConstraint registers a scheduling rule. The params payload must
// decode against the declared kind before anything is written.
func (s *CatalogService) CreateConstraint(ctx context.Context, req dto.CreateConstraintRequest) (*models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid constraint payload")
	}

	constraint := &models.Constraint{
		OrganizationID: req.OrganizationID,
		SessionID:      req.SessionID,
		Kind:           models.ConstraintKind(req.Kind),
		ActivityID:     req.ActivityID,
		FacilityID:     req.FacilityID,
		GroupID:        req.GroupID,
		StaffID:        req.StaffID,
		Params:         []byte(req.Params),
		Severity:       models.ConstraintSeverity(req.Severity),
		IsActive:       true,
	}
	if _, err := constraint.DecodeParams(); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("constraint params do not match kind %s", req.Kind))
	}
	if err := s.constraints.Create(ctx, nil, constraint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create constraint")
	}
	s.logger.Info("constraint created",
		zap.String("constraintId", constraint.ID),
		zap.String("kind", string(constraint.Kind)),
		zap.String("severity", string(constraint.Severity)))
	return constraint, nil
}

// ListConstraints returns the rules visible to a session: organization-wide
// ones plus those scoped to the session. An empty sessionID returns only the
// organization-wide set.
func (s *CatalogService) ListConstraints(ctx context.Context, organizationID, sessionID string) ([]models.Constraint, error) {
	if organizationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "organizationId is required")
	}
	constraints, err := s.constraints.ListForSession(ctx, organizationID, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list constraints")
	}
	return constraints, nil
}

// UpdateConstraint edits a rule's payload, severity, or active flag.
func (s *CatalogService) UpdateConstraint(ctx context.Context, id string, req dto.UpdateConstraintRequest) (*models.Constraint, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid constraint payload")
	}
	constraint, err := s.constraints.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "constraint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraint")
	}

	if len(req.Params) > 0 {
		constraint.Params = []byte(req.Params)
		if _, err := constraint.DecodeParams(); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("constraint params do not match kind %s", constraint.Kind))
		}
	}
	if req.Severity != nil {
		constraint.Severity = models.ConstraintSeverity(*req.Severity)
	}
	if req.IsActive != nil {
		constraint.IsActive = *req.IsActive
	}

	if err := s.constraints.Update(ctx, nil, constraint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update constraint")
	}
	return constraint, nil
}

// DeleteConstraint removes a rule.
func (s *CatalogService) DeleteConstraint(ctx context.Context, id string) error {
	if _, err := s.constraints.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "constraint not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraint")
	}
	if err := s.constraints.Delete(ctx, nil, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete constraint")
	}
	return nil
}

// CreateDayTemplate registers a daily skeleton with its time ranges. Ranges
// must be well-formed HH:MM spans and must not overlap.
func (s *CatalogService) CreateDayTemplate(ctx context.Context, req dto.CreateDayTemplateRequest) (*models.DayTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid day template payload")
	}

	slots := make([]models.DayTemplateSlot, 0, len(req.Slots))
	prevEnd := -1
	for i, slot := range req.Slots {
		start := models.MinutesOfDay(slot.StartTime)
		end := models.MinutesOfDay(slot.EndTime)
		if start < 0 || end < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot %d has a malformed time", i))
		}
		if end <= start {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot %d ends before it starts", i))
		}
		if start < prevEnd {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("slot %d overlaps the previous range", i))
		}
		prevEnd = end

		schedulable := slot.SlotType == string(models.SlotTypeActivity)
		if slot.IsSchedulable != nil {
			schedulable = *slot.IsSchedulable
		}
		slots = append(slots, models.DayTemplateSlot{
			SortOrder:     i,
			StartTime:     slot.StartTime,
			EndTime:       slot.EndTime,
			SlotType:      models.SlotType(slot.SlotType),
			IsSchedulable: schedulable,
		})
	}

	template := &models.DayTemplate{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		Slots:          slots,
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.templates.Create(ctx, tx, template); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create day template")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit day template")
		return nil, err
	}
	s.logger.Info("day template created", zap.String("templateId", template.ID), zap.Int("slots", len(template.Slots)))
	return template, nil
}

// GetDayTemplate returns one template with its ranges.
func (s *CatalogService) GetDayTemplate(ctx context.Context, id string) (*models.DayTemplate, error) {
	template, err := s.templates.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "day template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day template")
	}
	return template, nil
}

// ListDayTemplates returns the organization's templates.
func (s *CatalogService) ListDayTemplates(ctx context.Context, organizationID string) ([]models.DayTemplate, error) {
	if organizationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "organizationId is required")
	}
	templates, err := s.templates.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list day templates")
	}
	return templates, nil
}

// DeleteDayTemplate removes a template and its ranges.
func (s *CatalogService) DeleteDayTemplate(ctx context.Context, id string) error {
	if _, err := s.GetDayTemplate(ctx, id); err != nil {
		return err
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.templates.Delete(ctx, tx, id); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete day template")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit day template delete")
		return err
	}
	return nil
}
