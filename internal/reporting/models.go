package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummaryRequest requests aggregated call metrics for one user.

type CallsSummaryRequest struct {
	UserID string    `json:"user_id"`
	Range  TimeRange `json:"range"`
}

type CallsSummary struct {
	UserID string `json:"user_id"`

	TotalCalls      int `json:"total_calls"`
	CompletedCalls  int `json:"completed_calls"`
	MissedCalls     int `json:"missed_calls"`
	InProgressCalls int `json:"in_progress_calls"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	RecordedCalls int `json:"recorded_calls"`
}

// AttendanceRequest requests session attendance metrics, optionally
// narrowed to a single call type.

type AttendanceRequest struct {
	UserID   string    `json:"user_id"`
	Range    TimeRange `json:"range"`
	CallType string    `json:"call_type,omitempty"`
}

// AttendanceSummary measures how reliably scheduled calls actually
// happen. AttendanceRate relates completed sessions to all sessions
// that reached a terminal state.
type AttendanceSummary struct {
	UserID   string `json:"user_id"`
	CallType string `json:"call_type,omitempty"`

	TotalSessions     int `json:"total_sessions"`
	CompletedSessions int `json:"completed_sessions"`
	MissedSessions    int `json:"missed_sessions"`
	FailedSessions    int `json:"failed_sessions"`
	PendingSessions   int `json:"pending_sessions"`

	AttendanceRate float64 `json:"attendance_rate"`
}
