package coaching

import (
	"time"

	"coaching-platform/internal/session"
)

// The records in this package are the structured artifacts a coaching
// call produces. All writes are upserts keyed by a natural key (user,
// user+week, user+date): a second call for the same period patches the
// existing row instead of inserting a duplicate. Call summaries are the
// exception; they are immutable audit rows, one per processed report.

// VisionProfile captures the onboarding call's output. One per user.
type VisionProfile struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	VisionSummary         string   `json:"vision_summary" db:"vision_summary"`
	Motivations           []string `json:"motivations" db:"motivations"`
	CostOfInaction        string   `json:"cost_of_inaction" db:"cost_of_inaction"`
	CommitmentDeclaration string   `json:"commitment_declaration" db:"commitment_declaration"`
	RawOnboardingNotes    string   `json:"raw_onboarding_notes,omitempty" db:"raw_onboarding_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WeeklyObjective is the weekly planning call's output, one per
// (user, week start date).
type WeeklyObjective struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// WeekStartDate is the ISO date (YYYY-MM-DD) of the week's Sunday.
	WeekStartDate string `json:"week_start_date" db:"week_start_date"`

	Objective   string   `json:"objective" db:"objective"`
	Bottlenecks []string `json:"bottlenecks" db:"bottlenecks"`
	Actions     []string `json:"actions" db:"actions"`

	StopList     []string `json:"stop_list" db:"stop_list"`
	StartList    []string `json:"start_list" db:"start_list"`
	ContinueList []string `json:"continue_list" db:"continue_list"`

	CommitmentLevel int `json:"commitment_level,omitempty" db:"commitment_level"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PlanAction is one of the (nominally three) actions in a daily plan.
type PlanAction struct {
	Text      string `json:"text"`
	Why       string `json:"why,omitempty"`
	Completed bool   `json:"completed"`
}

// DailyPlan is the evening call's output for a given date, one per
// (user, date). The evening call plans tomorrow, so the date is the
// day the actions are for, not the day of the call.
type DailyPlan struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// Date is ISO YYYY-MM-DD.
	Date    string       `json:"date" db:"date"`
	Actions []PlanAction `json:"actions" db:"actions"`

	// StartTime is the committed start for action #1, HH:MM.
	StartTime string `json:"start_time,omitempty" db:"start_time"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CommitmentLog is an append-only trace of spoken commitments.
type CommitmentLog struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	Date string `json:"date" db:"date"`
	// Type is "weekly" or "daily".
	Type string `json:"type" db:"type"`
	Text string `json:"text" db:"text"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CallSummary is the immutable audit row for one processed end-of-call
// report: the raw summary text plus the extracted JSON exactly as the
// provider sent it. Users may append an edit until they lock it.
type CallSummary struct {
	ID            string           `json:"id" db:"id"`
	UserID        string           `json:"user_id" db:"user_id"`
	CallSessionID string           `json:"call_session_id" db:"call_session_id"`
	CallType      session.CallType `json:"call_type" db:"call_type"`

	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	SummaryText string    `json:"summary_text" db:"summary_text"`

	// ExtractedData is the provider's structured payload, stored
	// verbatim as JSON for audit.
	ExtractedData []byte `json:"extracted_data,omitempty" db:"extracted_data"`

	UserEditsText string `json:"user_edits_text,omitempty" db:"user_edits_text"`
	Locked        bool   `json:"locked" db:"locked"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CompletionStats aggregates daily plan completion for the dashboard.
type CompletionStats struct {
	TotalPlans     int     `json:"total_plans"`
	CompletedPlans int     `json:"completed_plans"`
	CompletionRate float64 `json:"completion_rate"`
	StreakDays     int     `json:"streak_days"`
}
