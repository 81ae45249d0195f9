package models

import (
	"time"

	"github.com/lib/pq"
)

// ScheduleSlot is the mutable unit the solver and conflict detector operate
// on: one (group, date, time-range) cell, optionally bound to an activity,
// facility and staff. Dates are calendar dates (YYYY-MM-DD) and times local
// wall-clock HH:MM strings, both without time-zone shift.
type ScheduleSlot struct {
	ID         string         `db:"id" json:"id"`
	SessionID  string         `db:"session_id" json:"session_id"`
	GroupID    string         `db:"group_id" json:"group_id"`
	Date       string         `db:"slot_date" json:"date"`
	StartTime  string         `db:"start_time" json:"start_time"`
	EndTime    string         `db:"end_time" json:"end_time"`
	ActivityID *string        `db:"activity_id" json:"activity_id,omitempty"`
	FacilityID *string        `db:"facility_id" json:"facility_id,omitempty"`
	StaffIDs   pq.StringArray `db:"staff_ids" json:"staff_ids"`
	Notes      string         `db:"notes" json:"notes"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// SlotKey identifies a slot by its uniqueness invariant: no two slots may
// share (group, date, start_time).
type SlotKey struct {
	GroupID   string
	Date      string
	StartTime string
}

// Key returns the identity triple of the slot.
func (s ScheduleSlot) Key() SlotKey {
	return SlotKey{GroupID: s.GroupID, Date: s.Date, StartTime: s.StartTime}
}

// IsAssigned reports whether the slot carries an activity.
func (s ScheduleSlot) IsAssigned() bool {
	return s.ActivityID != nil && *s.ActivityID != ""
}

// Overlaps reports whether two slots on the same date intersect in time.
// Malformed times never overlap.
func (s ScheduleSlot) Overlaps(other ScheduleSlot) bool {
	if s.Date != other.Date {
		return false
	}
	aStart, aEnd := MinutesOfDay(s.StartTime), MinutesOfDay(s.EndTime)
	bStart, bEnd := MinutesOfDay(other.StartTime), MinutesOfDay(other.EndTime)
	if aStart < 0 || aEnd < 0 || bStart < 0 || bEnd < 0 {
		return false
	}
	return aStart < bEnd && bStart < aEnd
}

// MinutesOfDay parses a wall-clock HH:MM string into minutes since midnight,
// returning -1 on malformed input.
func MinutesOfDay(hhmm string) int {
	if len(hhmm) < 5 || hhmm[2] != ':' {
		return -1
	}
	h := int(hhmm[0]-'0')*10 + int(hhmm[1]-'0')
	m := int(hhmm[3]-'0')*10 + int(hhmm[4]-'0')
	if h < 0 || h > 23 || m < 0 || m > 59 ||
		hhmm[0] < '0' || hhmm[0] > '9' || hhmm[1] < '0' || hhmm[1] > '9' ||
		hhmm[3] < '0' || hhmm[3] > '9' || hhmm[4] < '0' || hhmm[4] > '9' {
		return -1
	}
	return h*60 + m
}
