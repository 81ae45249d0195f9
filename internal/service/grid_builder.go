package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/camp-ops-api/internal/models"
	appErrors "github.com/noah-isme/camp-ops-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// GridBuilder expands a day template into concrete dated schedule slots for
// a session. Building is idempotent with respect to slot identity: triples
// already present in the existing grid are skipped, never duplicated.
type GridBuilder struct {
	maxGridDays int
}

// NewGridBuilder constructs a grid builder. maxGridDays bounds the session
// span; zero falls back to 180.
func NewGridBuilder(maxGridDays int) *GridBuilder {
	if maxGridDays <= 0 {
		maxGridDays = 180
	}
	return &GridBuilder{maxGridDays: maxGridDays}
}

// BuildSummary reports what a build produced.
type BuildSummary struct {
	Created int
	Skipped int
}

// Build produces one empty slot per (date × group × schedulable template
// slot). A date mapped to nil in overrides is a free day and produces no
// slots. The returned slice contains only newly created slots, ordered by
// (date, group sort order, start time).
func (b *GridBuilder) Build(
	session models.Session,
	groups []models.Group,
	template *models.DayTemplate,
	overrides map[string]*models.DayTemplate,
	existing []models.ScheduleSlot,
) ([]models.ScheduleSlot, BuildSummary, error) {
	var summary BuildSummary

	start, err := time.Parse(dateLayout, session.StartDate)
	if err != nil {
		return nil, summary, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid session start date %q", session.StartDate))
	}
	end, err := time.Parse(dateLayout, session.EndDate)
	if err != nil {
		return nil, summary, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid session end date %q", session.EndDate))
	}
	if end.Before(start) {
		return nil, summary, appErrors.Clone(appErrors.ErrValidation, "session end date precedes start date")
	}
	days := int(end.Sub(start).Hours()/24) + 1
	if days > b.maxGridDays {
		return nil, summary, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session spans %d days, exceeding the %d day limit", days, b.maxGridDays))
	}
	if len(groups) == 0 {
		return nil, summary, appErrors.Clone(appErrors.ErrValidation, "session has no groups to schedule")
	}
	if template == nil || len(template.SchedulableSlots()) == 0 {
		return nil, summary, appErrors.Clone(appErrors.ErrValidation, "day template has no schedulable slots")
	}

	ordered := make([]models.Group, len(groups))
	copy(ordered, groups)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].SortOrder != ordered[j].SortOrder {
			return ordered[i].SortOrder < ordered[j].SortOrder
		}
		return ordered[i].ID < ordered[j].ID
	})

	seen := make(map[models.SlotKey]struct{}, len(existing))
	for _, slot := range existing {
		seen[slot.Key()] = struct{}{}
	}

	var created []models.ScheduleSlot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		dayTemplate := template
		if override, ok := overrides[date]; ok {
			dayTemplate = override
		}
		if dayTemplate == nil {
			// Unstructured day: no slots, not an error.
			continue
		}
		ranges := dayTemplate.SchedulableSlots()
		sort.Slice(ranges, func(i, j int) bool {
			if ranges[i].SortOrder != ranges[j].SortOrder {
				return ranges[i].SortOrder < ranges[j].SortOrder
			}
			return ranges[i].StartTime < ranges[j].StartTime
		})
		for _, group := range ordered {
			for _, tr := range ranges {
				key := models.SlotKey{GroupID: group.ID, Date: date, StartTime: tr.StartTime}
				if _, ok := seen[key]; ok {
					summary.Skipped++
					continue
				}
				seen[key] = struct{}{}
				created = append(created, models.ScheduleSlot{
					ID:        uuid.NewString(),
					SessionID: session.ID,
					GroupID:   group.ID,
					Date:      date,
					StartTime: tr.StartTime,
					EndTime:   tr.EndTime,
				})
				summary.Created++
			}
		}
	}
	return created, summary, nil
}
