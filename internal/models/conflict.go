package models

// ConflictSeverity grades how broken the schedule is.
type ConflictSeverity string

const (
	ConflictCritical ConflictSeverity = "critical"
	ConflictWarning  ConflictSeverity = "warning"
	ConflictInfo     ConflictSeverity = "info"
)

// ConflictKind names the detection rule that produced a conflict.
type ConflictKind string

const (
	ConflictGroupDoubleBooking    ConflictKind = "group_double_booking"
	ConflictFacilityDoubleBooking ConflictKind = "facility_double_booking"
	ConflictStaffDoubleBooking    ConflictKind = "staff_double_booking"
	ConflictConstraintViolation   ConflictKind = "constraint_violation"
	ConflictUnderstaffed          ConflictKind = "understaffed"
	ConflictAgeMismatch           ConflictKind = "age_mismatch"
	ConflictCapacityExceeded      ConflictKind = "capacity_exceeded"
)

// Conflict is a derived, re-computable finding about the grid's validity.
// It is never persisted; the slot grid stays the source of truth.
type Conflict struct {
	ID          string           `json:"id"`
	Kind        ConflictKind     `json:"kind"`
	Severity    ConflictSeverity `json:"severity"`
	Message     string           `json:"message"`
	Description string           `json:"description,omitempty"`
	Suggestion  string           `json:"suggestion,omitempty"`
	SlotIDs     []string         `json:"slot_ids"`
}

// severityRank orders severities for stable reporting.
var severityRank = map[ConflictSeverity]int{
	ConflictCritical: 0,
	ConflictWarning:  1,
	ConflictInfo:     2,
}

// SeverityRank returns a sortable rank (critical first).
func (s ConflictSeverity) SeverityRank() int {
	if rank, ok := severityRank[s]; ok {
		return rank
	}
	return len(severityRank)
}
