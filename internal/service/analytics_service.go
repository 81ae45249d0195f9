package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/camp-ops-api/internal/dto"
	"github.com/noah-isme/camp-ops-api/internal/models"
)

// AnalyticsService derives read-only schedule aggregates from the grid with
// cache integration. Everything is computed from slot data; nothing here
// writes back.
type AnalyticsService struct {
	sessions   sessionReader
	groups     groupLister
	activities activityLister
	facilities facilityLister
	slots      slotStore
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(
	sessions sessionReader,
	groups groupLister,
	activities activityLister,
	facilities facilityLister,
	slots slotStore,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{
		sessions:   sessions,
		groups:     groups,
		activities: activities,
		facilities: facilities,
		slots:      slots,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
	}
}

// ScheduleAnalytics returns session grid aggregates. The boolean indicates
// whether data originated from cache.
func (s *AnalyticsService) ScheduleAnalytics(ctx context.Context, sessionID string) (*models.ScheduleAnalytics, bool, error) {
	cacheKey := makeAnalyticsCacheKey("session", sessionID, "schedule")
	var cached models.ScheduleAnalytics
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, false, err
	}
	slots, err := s.slots.ListBySession(ctx, sessionID, dto.SlotFilter{})
	if err != nil {
		return nil, false, err
	}
	activities, err := s.activities.ListByOrganization(ctx, session.OrganizationID, false)
	if err != nil {
		return nil, false, err
	}
	facilities, err := s.facilities.ListByOrganization(ctx, session.OrganizationID, false)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_schedule", time.Since(start))
	}

	analytics := computeScheduleAnalytics(sessionID, slots, activities, facilities)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, analytics, 0); err != nil {
			s.logger.Warn("cache schedule analytics", zap.Error(err))
		}
	}
	return analytics, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.AnalyticsSystemMetrics {
	if s.metrics == nil {
		return models.AnalyticsSystemMetrics{}
	}
	return s.metrics.Snapshot()
}

// computeScheduleAnalytics is the pure aggregation core. Facility utilization
// counts actual bookings against the grid's distinct time windows; activity
// share is over assigned slots.
func computeScheduleAnalytics(sessionID string, slots []models.ScheduleSlot, activities []models.Activity, facilities []models.Facility) *models.ScheduleAnalytics {
	activityNames := make(map[string]string, len(activities))
	requiredStaff := make(map[string]int, len(activities))
	for _, activity := range activities {
		activityNames[activity.ID] = activity.Name
		requiredStaff[activity.ID] = activity.RequiredStaffCount
	}

	windows := make(map[string]struct{})
	facilityBookings := make(map[string]int)
	activityCounts := make(map[string]int)
	assigned := 0
	understaffed := 0
	for _, slot := range slots {
		windows[slot.Date+"T"+slot.StartTime] = struct{}{}
		if !slot.IsAssigned() {
			continue
		}
		assigned++
		activityCounts[*slot.ActivityID]++
		if slot.FacilityID != nil && *slot.FacilityID != "" {
			facilityBookings[*slot.FacilityID]++
		}
		if need := requiredStaff[*slot.ActivityID]; need > 0 && len(slot.StaffIDs) < need {
			understaffed++
		}
	}

	analytics := &models.ScheduleAnalytics{
		SessionID:         sessionID,
		TotalSlots:        len(slots),
		AssignedSlots:     assigned,
		UnderstaffedSlots: understaffed,
		Facilities:        []models.FacilityUtilization{},
		Activities:        []models.ActivityDistribution{},
		GeneratedAt:       time.Now().UTC(),
	}
	if len(slots) > 0 {
		analytics.CompletionRate = float64(assigned) / float64(len(slots))
	}

	windowCount := len(windows)
	for _, facility := range facilities {
		bookings := facilityBookings[facility.ID]
		utilization := models.FacilityUtilization{
			FacilityID:   facility.ID,
			FacilityName: facility.Name,
			Bookings:     bookings,
			Windows:      windowCount,
		}
		if windowCount > 0 {
			utilization.Utilization = float64(bookings) / float64(windowCount)
		}
		analytics.Facilities = append(analytics.Facilities, utilization)
	}
	sort.Slice(analytics.Facilities, func(i, j int) bool {
		if analytics.Facilities[i].Bookings != analytics.Facilities[j].Bookings {
			return analytics.Facilities[i].Bookings > analytics.Facilities[j].Bookings
		}
		return analytics.Facilities[i].FacilityName < analytics.Facilities[j].FacilityName
	})

	for activityID, count := range activityCounts {
		distribution := models.ActivityDistribution{
			ActivityID:   activityID,
			ActivityName: activityNames[activityID],
			Count:        count,
		}
		if assigned > 0 {
			distribution.Share = float64(count) / float64(assigned)
		}
		analytics.Activities = append(analytics.Activities, distribution)
	}
	sort.Slice(analytics.Activities, func(i, j int) bool {
		if analytics.Activities[i].Count != analytics.Activities[j].Count {
			return analytics.Activities[i].Count > analytics.Activities[j].Count
		}
		return analytics.Activities[i].ActivityName < analytics.Activities[j].ActivityName
	})
	return analytics
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
