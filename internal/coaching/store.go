package coaching

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("coaching: not found")
	ErrInvalidArgument = errors.New("coaching: invalid argument")
	// ErrSummaryLocked is returned when editing a summary the user has
	// already locked.
	ErrSummaryLocked = errors.New("coaching: summary is locked")
)

// Store persists coaching artifacts.
//
// Upsert methods key on the natural key named in the model doc. The
// summary append methods are insert-only.
//
// Required indexes: vision_profiles (user_id) unique;
// weekly_objectives (user_id, week_start_date) unique; daily_plans
// (user_id, date) unique; commitment_logs (user_id, date);
// call_summaries (user_id), (call_session_id).
type Store interface {
	UpsertVision(ctx context.Context, v VisionProfile) (VisionProfile, error)
	GetVision(ctx context.Context, userID string) (VisionProfile, error)

	UpsertWeekly(ctx context.Context, o WeeklyObjective) (WeeklyObjective, error)
	GetWeekly(ctx context.Context, userID, weekStartDate string) (WeeklyObjective, error)
	ListWeekly(ctx context.Context, userID string, limit int) ([]WeeklyObjective, error)

	UpsertDaily(ctx context.Context, p DailyPlan) (DailyPlan, error)
	GetDaily(ctx context.Context, userID, date string) (DailyPlan, error)
	GetDailyByID(ctx context.Context, id string) (DailyPlan, error)
	ListDailyRange(ctx context.Context, userID, startDate, endDate string) ([]DailyPlan, error)

	AppendCommitment(ctx context.Context, c CommitmentLog) (string, error)
	ListCommitments(ctx context.Context, userID string, limit int) ([]CommitmentLog, error)

	InsertSummary(ctx context.Context, s CallSummary) (string, error)
	GetSummary(ctx context.Context, id string) (CallSummary, error)
	GetSummaryBySession(ctx context.Context, sessionID string) (CallSummary, bool, error)
	ListSummaries(ctx context.Context, userID string, limit int) ([]CallSummary, error)
	UpdateSummaryEdits(ctx context.Context, id, userEditsText string, lock bool) error
}
