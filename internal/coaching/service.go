package coaching

import (
	"context"
	"time"
)

// Service wraps the store with the date arithmetic the call workflow
// needs: which week a weekly objective belongs to, which date an
// evening call is planning for, and plan completion stats.
type Service struct {
	store Store
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// WithClock overrides the time source. Test hook.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// WeekStart returns the ISO date of the most recent Sunday at or
// before t. A weekly objective recorded any day of the week lands on
// the same row.
func WeekStart(t time.Time) string {
	t = t.UTC()
	return t.AddDate(0, 0, -int(t.Weekday())).Format("2006-01-02")
}

// TomorrowDate returns the ISO date of the day after t. The evening
// call plans tomorrow.
func TomorrowDate(t time.Time) string {
	return t.UTC().AddDate(0, 0, 1).Format("2006-01-02")
}

func (s *Service) SaveVision(ctx context.Context, v VisionProfile) (VisionProfile, error) {
	return s.store.UpsertVision(ctx, v)
}

func (s *Service) Vision(ctx context.Context, userID string) (VisionProfile, error) {
	return s.store.GetVision(ctx, userID)
}

// SaveWeekly upserts the objective for the week containing now when
// the caller did not pin a week explicitly.
func (s *Service) SaveWeekly(ctx context.Context, o WeeklyObjective) (WeeklyObjective, error) {
	if o.WeekStartDate == "" {
		o.WeekStartDate = WeekStart(s.clock())
	}
	return s.store.UpsertWeekly(ctx, o)
}

// CurrentWeekly returns the objective for the week containing now.
func (s *Service) CurrentWeekly(ctx context.Context, userID string) (WeeklyObjective, error) {
	return s.store.GetWeekly(ctx, userID, WeekStart(s.clock()))
}

func (s *Service) ListWeekly(ctx context.Context, userID string, limit int) ([]WeeklyObjective, error) {
	return s.store.ListWeekly(ctx, userID, limit)
}

// SaveDaily upserts tomorrow's plan when the caller did not pin a
// date explicitly.
func (s *Service) SaveDaily(ctx context.Context, p DailyPlan) (DailyPlan, error) {
	if p.Date == "" {
		p.Date = TomorrowDate(s.clock())
	}
	return s.store.UpsertDaily(ctx, p)
}

// PlanByID fetches a plan with ownership enforced.
func (s *Service) PlanByID(ctx context.Context, userID, planID string) (DailyPlan, error) {
	p, err := s.store.GetDailyByID(ctx, planID)
	if err != nil {
		return DailyPlan{}, err
	}
	if p.UserID != userID {
		return DailyPlan{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) DailyForDate(ctx context.Context, userID, date string) (DailyPlan, error) {
	return s.store.GetDaily(ctx, userID, date)
}

func (s *Service) ListDaily(ctx context.Context, userID, startDate, endDate string) ([]DailyPlan, error) {
	return s.store.ListDailyRange(ctx, userID, startDate, endDate)
}

// ToggleAction flips the completed flag on one action of a plan.
func (s *Service) ToggleAction(ctx context.Context, planID string, index int) (DailyPlan, error) {
	p, err := s.store.GetDailyByID(ctx, planID)
	if err != nil {
		return DailyPlan{}, err
	}
	if index < 0 || index >= len(p.Actions) {
		return DailyPlan{}, ErrInvalidArgument
	}
	p.Actions[index].Completed = !p.Actions[index].Completed
	return s.store.UpsertDaily(ctx, p)
}

func (s *Service) LogCommitment(ctx context.Context, c CommitmentLog) (string, error) {
	if c.Date == "" {
		c.Date = s.clock().UTC().Format("2006-01-02")
	}
	return s.store.AppendCommitment(ctx, c)
}

func (s *Service) Commitments(ctx context.Context, userID string, limit int) ([]CommitmentLog, error) {
	return s.store.ListCommitments(ctx, userID, limit)
}

func (s *Service) RecordSummary(ctx context.Context, sum CallSummary) (string, error) {
	if sum.Timestamp.IsZero() {
		sum.Timestamp = s.clock().UTC()
	}
	return s.store.InsertSummary(ctx, sum)
}

func (s *Service) Summaries(ctx context.Context, userID string, limit int) ([]CallSummary, error) {
	return s.store.ListSummaries(ctx, userID, limit)
}

// SummaryForSession returns the summary recorded for a call session,
// if one exists. Ownership is enforced here so handlers can pass the
// authenticated user straight through.
func (s *Service) SummaryForSession(ctx context.Context, userID, sessionID string) (CallSummary, bool, error) {
	sum, found, err := s.store.GetSummaryBySession(ctx, sessionID)
	if err != nil || !found {
		return CallSummary{}, false, err
	}
	if sum.UserID != userID {
		return CallSummary{}, false, nil
	}
	return sum, true, nil
}

// EditSummary records the user's correction text on a summary, and
// optionally locks it against further edits. Editing a locked summary
// returns ErrSummaryLocked.
func (s *Service) EditSummary(ctx context.Context, userID, summaryID, editsText string, lock bool) error {
	sum, err := s.store.GetSummary(ctx, summaryID)
	if err != nil {
		return err
	}
	if sum.UserID != userID {
		return ErrNotFound
	}
	return s.store.UpdateSummaryEdits(ctx, summaryID, editsText, lock)
}

// Stats aggregates plan completion over the trailing window days,
// ending today. A plan counts as completed when every one of its
// actions is done. The streak counts consecutive completed days
// walking back from today, today itself allowed to be missing.
func (s *Service) Stats(ctx context.Context, userID string, window int) (CompletionStats, error) {
	if window <= 0 {
		window = 30
	}
	now := s.clock().UTC()
	end := now.Format("2006-01-02")
	start := now.AddDate(0, 0, -(window - 1)).Format("2006-01-02")

	plans, err := s.store.ListDailyRange(ctx, userID, start, end)
	if err != nil {
		return CompletionStats{}, err
	}

	byDate := make(map[string]bool, len(plans))
	stats := CompletionStats{TotalPlans: len(plans)}
	for _, p := range plans {
		done := len(p.Actions) > 0
		for _, a := range p.Actions {
			if !a.Completed {
				done = false
				break
			}
		}
		if done {
			stats.CompletedPlans++
		}
		byDate[p.Date] = done
	}
	if stats.TotalPlans > 0 {
		stats.CompletionRate = float64(stats.CompletedPlans) / float64(stats.TotalPlans)
	}

	day := now
	for i := 0; i < window; i++ {
		date := day.Format("2006-01-02")
		done, ok := byDate[date]
		if !ok {
			// Today may simply not be planned yet.
			if i == 0 {
				day = day.AddDate(0, 0, -1)
				continue
			}
			break
		}
		if !done {
			break
		}
		stats.StreakDays++
		day = day.AddDate(0, 0, -1)
	}
	return stats, nil
}
