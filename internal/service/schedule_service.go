package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

type sessionReader interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
}

type groupLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Group, error)
}

type activityLister interface {
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Activity, error)
}

type facilityLister interface {
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Facility, error)
}

type staffLister interface {
	ListByOrganization(ctx context.Context, organizationID string, activeOnly bool) ([]models.Staff, error)
}

type constraintLister interface {
	ListForSession(ctx context.Context, organizationID, sessionID string) ([]models.Constraint, error)
}

type dayTemplateReader interface {
	FindByID(ctx context.Context, id string) (*models.DayTemplate, error)
}

type slotStore interface {
	UpsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.ScheduleSlot) error
	UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, slot *models.ScheduleSlot) error
	FindByID(ctx context.Context, id string) (*models.ScheduleSlot, error)
	ListBySession(ctx context.Context, sessionID string, filter dto.SlotFilter) ([]models.ScheduleSlot, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// sessionLocks serialises writes per session. Reads stay lock-free; the
// engines work on snapshots, so a concurrent read sees a consistent grid.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *sessionLocks) lock(sessionID string) *sync.Mutex {
	l.mu.Lock()
	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m
}

// ScheduleServiceConfig governs engine bounds.
type ScheduleServiceConfig struct {
	MaxGridDays          int
	MaxAttemptsPerSlot   int
	DurationToleranceMin int
}

// ScheduleService orchestrates the grid builder, solver, conflict detector
// and weather engine over persisted sessions. All mutations run under the
// session lock and inside one transaction.
type ScheduleService struct {
	sessions    sessionReader
	groups      groupLister
	activities  activityLister
	facilities  facilityLister
	staff       staffLister
	constraints constraintLister
	templates   dayTemplateReader
	slots       slotStore
	tx          txProvider
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService
	cache       *CacheService

	builder  *GridBuilder
	detector *ConflictDetector
	weather  *WeatherEngine
	locks    *sessionLocks
	cfg      ScheduleServiceConfig
}

// NewScheduleService wires the scheduling pipeline.
func NewScheduleService(
	sessions sessionReader,
	groups groupLister,
	activities activityLister,
	facilities facilityLister,
	staff staffLister,
	constraints constraintLister,
	templates dayTemplateReader,
	slots slotStore,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cache *CacheService,
	cfg ScheduleServiceConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		sessions:    sessions,
		groups:      groups,
		activities:  activities,
		facilities:  facilities,
		staff:       staff,
		constraints: constraints,
		templates:   templates,
		slots:       slots,
		tx:          tx,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		cache:       cache,
		builder:     NewGridBuilder(cfg.MaxGridDays),
		detector:    NewConflictDetector(),
		weather:     NewWeatherEngine(cfg.DurationToleranceMin),
		locks:       newSessionLocks(),
		cfg:         cfg,
	}
}

// loadSnapshot assembles the in-memory view the engines operate on.
func (s *ScheduleService) loadSnapshot(ctx context.Context, sessionID string) (*ScheduleSnapshot, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	groups, err := s.groups.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load groups")
	}
	activities, err := s.activities.ListByOrganization(ctx, session.OrganizationID, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities")
	}
	facilities, err := s.facilities.ListByOrganization(ctx, session.OrganizationID, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load facilities")
	}
	staff, err := s.staff.ListByOrganization(ctx, session.OrganizationID, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load staff")
	}
	constraints, err := s.constraints.ListForSession(ctx, session.OrganizationID, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load constraints")
	}
	slots, err := s.slots.ListBySession(ctx, sessionID, dto.SlotFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule slots")
	}

	snap := &ScheduleSnapshot{
		Session:     *session,
		Groups:      groups,
		Activities:  activities,
		Facilities:  facilities,
		Staff:       staff,
		Constraints: constraints,
		Slots:       slots,
	}
	snap.Index()
	return snap, nil
}

func (s *ScheduleService) ensureEditable(session models.Session) error {
	switch session.Status {
	case models.SessionStatusCompleted, models.SessionStatusCancelled:
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("session is %s and no longer editable", session.Status))
	}
	return nil
}

func (s *ScheduleService) invalidateAnalytics(ctx context.Context, sessionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "analytics:session:"+sessionID+"*"); err != nil {
		s.logger.Warn("analytics cache invalidation failed", zap.String("sessionId", sessionID), zap.Error(err))
	}
}

// BuildGrid expands the day template into empty slots for every group and
// date of the session. Re-running skips existing identity triples.
func (s *ScheduleService) BuildGrid(ctx context.Context, sessionID string, req dto.BuildGridRequest) (*dto.BuildGridResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grid build payload")
	}
	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	snap, err := s.loadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEditable(snap.Session); err != nil {
		return nil, err
	}

	template, err := s.templates.FindByID(ctx, req.DayTemplateID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "day template not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day template")
	}

	overrides := make(map[string]*models.DayTemplate, len(req.TemplateByDate))
	for date, templateID := range req.TemplateByDate {
		if templateID == "" {
			overrides[date] = nil
			continue
		}
		override, err := s.templates.FindByID(ctx, templateID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("day template %s not found", templateID))
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day template override")
		}
		overrides[date] = override
	}

	created, summary, err := s.builder.Build(snap.Session, snap.Groups, template, overrides, snap.Slots)
	if err != nil {
		return nil, err
	}

	if len(created) > 0 {
		tx, err := s.tx.BeginTxx(ctx, nil)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()
		if err = s.slots.UpsertBatch(ctx, tx, created); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule slots")
			return nil, err
		}
		if err = tx.Commit(); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit grid build")
			return nil, err
		}
	}

	s.invalidateAnalytics(ctx, sessionID)
	s.logger.Info("schedule grid built",
		zap.String("sessionId", sessionID),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped))

	return &dto.BuildGridResponse{Created: summary.Created, Skipped: summary.Skipped, Slots: created}, nil
}

// AutoSchedule runs the greedy solver over the unassigned slots and persists
// the assignments it finds. Pre-filled slots are never rewritten.
func (s *ScheduleService) AutoSchedule(ctx context.Context, sessionID string, req dto.AutoScheduleRequest) (*dto.AutoScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid auto-schedule payload")
	}
	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	snap, err := s.loadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEditable(snap.Session); err != nil {
		return nil, err
	}

	attempts := req.MaxAttemptsPerSlot
	if attempts <= 0 {
		attempts = s.cfg.MaxAttemptsPerSlot
	}
	started := time.Now()
	result, err := NewSolver(attempts).Solve(snap)
	if err != nil {
		return nil, err
	}

	if len(result.Slots) > 0 {
		tx, txErr := s.tx.BeginTxx(ctx, nil)
		if txErr != nil {
			return nil, appErrors.Wrap(txErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()
		for i := range result.Slots {
			if err = s.slots.UpdateAssignment(ctx, tx, &result.Slots[i]); err != nil {
				err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist slot assignment")
				return nil, err
			}
		}
		if err = tx.Commit(); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit auto-schedule")
			return nil, err
		}
	}

	s.metrics.RecordSolverRun(result.Filled, time.Since(started))
	s.invalidateAnalytics(ctx, sessionID)
	s.logger.Info("auto-schedule completed",
		zap.String("sessionId", sessionID),
		zap.Int("filled", result.Filled),
		zap.Int("unfillable", len(result.Unfillable)),
		zap.Int("understaffed", result.Understaffed))

	return &dto.AutoScheduleResponse{
		Filled:       result.Filled,
		Understaffed: result.Understaffed,
		Unfillable:   result.Unfillable,
		SoftWarnings: result.SoftWarnings,
		Slots:        result.Slots,
	}, nil
}

// DetectConflicts re-computes the conflict report for the session grid.
func (s *ScheduleService) DetectConflicts(ctx context.Context, sessionID string) (*dto.ConflictReport, error) {
	snap, err := s.loadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	conflicts := s.detector.Detect(snap)
	s.metrics.RecordConflictsDetected(len(conflicts))

	report := &dto.ConflictReport{SessionID: sessionID, Conflicts: conflicts}
	for _, conflict := range conflicts {
		switch conflict.Severity {
		case models.ConflictCritical:
			report.Critical++
		case models.ConflictWarning:
			report.Warnings++
		default:
			report.Info++
		}
	}
	return report, nil
}

// ListSlots returns the session grid, optionally filtered.
func (s *ScheduleService) ListSlots(ctx context.Context, sessionID string, filter dto.SlotFilter) ([]models.ScheduleSlot, error) {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	slots, err := s.slots.ListBySession(ctx, sessionID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule slots")
	}
	return slots, nil
}

// UpdateSlot applies a manual edit to one slot. Hard constraints block the
// edit; soft violations pass with the assignment recorded.
func (s *ScheduleService) UpdateSlot(ctx context.Context, sessionID, slotID string, req dto.UpdateSlotRequest) (*models.ScheduleSlot, error) {
	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	snap, err := s.loadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEditable(snap.Session); err != nil {
		return nil, err
	}

	var target *models.ScheduleSlot
	for i := range snap.Slots {
		if snap.Slots[i].ID == slotID {
			target = &snap.Slots[i]
			break
		}
	}
	if target == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule slot not found in this session")
	}

	if req.ActivityID != nil && *req.ActivityID != "" {
		if _, ok := snap.Activity(*req.ActivityID); !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("activity %s not found", *req.ActivityID))
		}
		if req.FacilityID != nil && *req.FacilityID != "" {
			if _, ok := snap.Facility(*req.FacilityID); !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("facility %s not found", *req.FacilityID))
			}
		}
		for _, staffID := range req.StaffIDs {
			if _, ok := snap.StaffMember(staffID); !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("staff member %s not found", staffID))
			}
		}
		candidate := Assignment{Slot: *target, ActivityID: *req.ActivityID, FacilityID: req.FacilityID, StaffIDs: req.StaffIDs}
		verdict := EvaluateAssignment(candidate, snap, snap.Constraints)
		if !verdict.Allowed() {
			return nil, appErrors.Clone(appErrors.ErrConflict, verdict.Hard[0])
		}
	}

	target.ActivityID = req.ActivityID
	target.FacilityID = req.FacilityID
	target.StaffIDs = req.StaffIDs
	target.Notes = req.Notes
	if err := s.slots.UpdateAssignment(ctx, nil, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update slot")
	}

	s.invalidateAnalytics(ctx, sessionID)
	return target, nil
}

// WeatherImpact evaluates a supplied forecast against the grid and proposes
// substitutions without mutating anything.
func (s *ScheduleService) WeatherImpact(ctx context.Context, sessionID string, req dto.WeatherImpactRequest) (*dto.WeatherImpactResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weather payload")
	}
	snap, err := s.loadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.weather.CheckImpact(snap, req.Weather)
}

// ApplySubstitutions writes a selected set of weather substitutions in one
// transaction and returns the refreshed conflict report. Any invalid
// selection rejects the whole batch.
func (s *ScheduleService) ApplySubstitutions(ctx context.Context, sessionID string, req dto.ApplySubstitutionsRequest) (*dto.ApplySubstitutionsResponse, []dto.SubstitutionFailure, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid substitution payload")
	}
	lock := s.locks.lock(sessionID)
	defer lock.Unlock()

	snap, err := s.loadSnapshot(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureEditable(snap.Session); err != nil {
		return nil, nil, err
	}

	updated, failures, err := s.weather.ApplySubstitutions(snap, req.Substitutions)
	if err != nil {
		return nil, nil, err
	}
	if len(failures) > 0 {
		return nil, failures, nil
	}

	sort.Slice(updated, func(i, j int) bool { return updated[i].ID < updated[j].ID })

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for i := range updated {
		if err = s.slots.UpdateAssignment(ctx, tx, &updated[i]); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist substitution")
			return nil, nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit substitutions")
		return nil, nil, err
	}

	conflicts := s.detector.Detect(snap)
	s.metrics.RecordConflictsDetected(len(conflicts))
	s.invalidateAnalytics(ctx, sessionID)
	s.logger.Info("weather substitutions applied",
		zap.String("sessionId", sessionID),
		zap.Int("applied", len(updated)))

	return &dto.ApplySubstitutionsResponse{Applied: len(updated), Conflicts: conflicts}, nil, nil
}
