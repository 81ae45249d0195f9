package models

import "time"

// ScheduleAnalytics aggregates completion, utilization and distribution for
// one session's grid. Read-only and derived; never solved further.
type ScheduleAnalytics struct {
	SessionID         string                 `json:"session_id"`
	TotalSlots        int                    `json:"total_slots"`
	AssignedSlots     int                    `json:"assigned_slots"`
	CompletionRate    float64                `json:"completion_rate"`
	UnderstaffedSlots int                    `json:"understaffed_slots"`
	Facilities        []FacilityUtilization  `json:"facilities"`
	Activities        []ActivityDistribution `json:"activities"`
	GeneratedAt       time.Time              `json:"generated_at"`
}

// FacilityUtilization reports actual bookings per facility against the
// distinct time windows of the grid.
type FacilityUtilization struct {
	FacilityID   string  `json:"facility_id"`
	FacilityName string  `json:"facility_name"`
	Bookings     int     `json:"bookings"`
	Windows      int     `json:"windows"`
	Utilization  float64 `json:"utilization"`
}

// ActivityDistribution counts how often each activity appears in the grid.
type ActivityDistribution struct {
	ActivityID   string  `json:"activity_id"`
	ActivityName string  `json:"activity_name"`
	Count        int     `json:"count"`
	Share        float64 `json:"share"`
}

// AnalyticsSystemMetrics is a lightweight instrumentation snapshot exposed
// through the analytics API.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"avg_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"avg_db_query_duration_ms"`
	SolverRuns               uint64    `json:"solver_runs"`
	ConflictsDetected        uint64    `json:"conflicts_detected"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
