package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

type sessionStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.Session, int, error)
	Update(ctx context.Context, exec sqlx.ExtContext, session *models.Session) error
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.SessionStatus) error
	SoftDelete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

type groupStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, group *models.Group) error
	FindByID(ctx context.Context, id string) (*models.Group, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Group, error)
	Update(ctx context.Context, exec sqlx.ExtContext, group *models.Group) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id string) error
}

// SessionService manages session lifecycle and the groups inside a session.
// Deleting a session is soft and cascades to groups and slots so the grid
// never outlives its owner.
type SessionService struct {
	sessions  sessionStore
	groups    groupStore
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService wires session dependencies.
func NewSessionService(sessions sessionStore, groups groupStore, tx txProvider, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{sessions: sessions, groups: groups, tx: tx, validator: validate, logger: logger}
}

// Create opens a new draft session.
func (s *SessionService) Create(ctx context.Context, req dto.CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if req.EndDate < req.StartDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate precedes startDate")
	}

	session := &models.Session{
		OrganizationID: req.OrganizationID,
		Name:           req.Name,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         models.SessionStatusDraft,
		MaxCampers:     req.MaxCampers,
	}
	if err := s.sessions.Create(ctx, nil, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.logger.Info("session created", zap.String("sessionId", session.ID), zap.String("name", session.Name))
	return session, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// List returns sessions with pagination info.
func (s *SessionService) List(ctx context.Context, query dto.SessionListQuery) ([]models.Session, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session query")
	}
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	sessions, total, err := s.sessions.List(ctx, models.SessionFilter{
		OrganizationID: query.OrganizationID,
		Status:         query.Status,
		Page:           page,
		PageSize:       pageSize,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, models.NewPagination(page, pageSize, total), nil
}

// Update edits session header fields. Date changes are rejected once the
// session is active, since the grid depends on the date span.
func (s *SessionService) Update(ctx context.Context, id string, req dto.UpdateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	datesChanging := (req.StartDate != "" && req.StartDate != session.StartDate) ||
		(req.EndDate != "" && req.EndDate != session.EndDate)
	if datesChanging && session.Status != models.SessionStatusDraft && session.Status != models.SessionStatusPlanning {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot change dates of a %s session", session.Status))
	}

	if req.Name != "" {
		session.Name = req.Name
	}
	if req.StartDate != "" {
		session.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		session.EndDate = req.EndDate
	}
	if session.EndDate < session.StartDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate precedes startDate")
	}
	if req.MaxCampers > 0 {
		session.MaxCampers = req.MaxCampers
	}
	if req.CurrentCampers > 0 {
		session.CurrentCampers = req.CurrentCampers
	}

	if err := s.sessions.Update(ctx, nil, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	return session, nil
}

// UpdateStatus advances the lifecycle. Transitions are forward-only, with
// cancellation allowed from any non-terminal status.
func (s *SessionService) UpdateStatus(ctx context.Context, id string, req dto.UpdateSessionStatusRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.SessionStatus(req.Status)
	if !session.Status.CanTransition(next) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot move session from %s to %s", session.Status, next))
	}
	if err := s.sessions.UpdateStatus(ctx, nil, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}
	session.Status = next
	session.UpdatedAt = time.Now().UTC()
	s.logger.Info("session status changed", zap.String("sessionId", id), zap.String("status", string(next)))
	return session, nil
}

// Delete tombstones the session and removes its groups and slots in one
// transaction.
func (s *SessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
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
	if err = s.sessions.SoftDelete(ctx, tx, id); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit session delete")
		return err
	}
	s.logger.Info("session deleted", zap.String("sessionId", id))
	return nil
}

// CreateGroup adds a group to the session.
func (s *SessionService) CreateGroup(ctx context.Context, sessionID string, req dto.CreateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}

	gender := models.GroupGender(req.Gender)
	if gender == "" {
		gender = models.GroupGenderMixed
	}
	group := &models.Group{
		SessionID:    sessionID,
		Name:         req.Name,
		Color:        req.Color,
		Capacity:     req.Capacity,
		CurrentCount: req.CurrentCount,
		AgeMin:       req.AgeMin,
		AgeMax:       req.AgeMax,
		Gender:       gender,
		SortOrder:    req.SortOrder,
	}
	if err := s.groups.Create(ctx, nil, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	return group, nil
}

// ListGroups returns the session's groups in display order.
func (s *SessionService) ListGroups(ctx context.Context, sessionID string) ([]models.Group, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	groups, err := s.groups.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, nil
}

// UpdateGroup edits a group in the session.
func (s *SessionService) UpdateGroup(ctx context.Context, sessionID, groupID string, req dto.UpdateGroupRequest) (*models.Group, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group.SessionID != sessionID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found in this session")
	}

	if req.Name != "" {
		group.Name = req.Name
	}
	if req.Color != "" {
		group.Color = req.Color
	}
	if req.Capacity > 0 {
		group.Capacity = req.Capacity
	}
	if req.CurrentCount > 0 {
		group.CurrentCount = req.CurrentCount
	}
	if req.AgeMin > 0 {
		group.AgeMin = req.AgeMin
	}
	if req.AgeMax > 0 {
		group.AgeMax = req.AgeMax
	}
	if group.AgeMax < group.AgeMin {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ageMax is below ageMin")
	}
	if req.Gender != "" {
		group.Gender = models.GroupGender(req.Gender)
	}
	if req.SortOrder > 0 {
		group.SortOrder = req.SortOrder
	}

	if err := s.groups.Update(ctx, nil, group); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update group")
	}
	return group, nil
}

// DeleteGroup removes a group and its slots.
func (s *SessionService) DeleteGroup(ctx context.Context, sessionID, groupID string) error {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	if group.SessionID != sessionID {
		return appErrors.Clone(appErrors.ErrNotFound, "group not found in this session")
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
	if err = s.groups.Delete(ctx, tx, groupID); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete group")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit group delete")
		return err
	}
	return nil
}
