// Package scheduler runs the periodic pass that turns user schedules
// into call sessions.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coaching-platform/internal/config"
	"coaching-platform/internal/notify"
	"coaching-platform/internal/schedule"
	"coaching-platform/internal/session"
	"coaching-platform/internal/users"
	"coaching-platform/pkg/utils"
)

const lockKey = "scheduler:calls:lock"

// Job scans every onboarded user's schedule and inserts a scheduled
// call session when a due time falls inside the tolerance window
// around now. At most one session per (user, call type, calendar date)
// is created; the guarantee comes from a query-then-insert idempotency
// check, so two overlapping runs can in rare cases both insert. The
// Redis single-flight lock in Run narrows that window but the check is
// what carries the guarantee.
type Job struct {
	users     users.Store
	schedules schedule.Store
	sessions  session.Store
	events    *notify.Publisher

	rdb *redis.Client
	cfg config.SchedulerConfig
	log *slog.Logger

	clock func() time.Time
}

func NewJob(
	users users.Store,
	schedules schedule.Store,
	sessions session.Store,
	events *notify.Publisher,
	rdb *redis.Client,
	cfg config.SchedulerConfig,
	log *slog.Logger,
) *Job {
	return &Job{
		users:     users,
		schedules: schedules,
		sessions:  sessions,
		events:    events,
		rdb:       rdb,
		cfg:       cfg,
		log:       log,
		clock:     time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (j *Job) WithClock(clock func() time.Time) *Job {
	j.clock = clock
	return j
}

// Run executes the job on a fixed interval until ctx is canceled. Each
// tick takes the single-flight lock when Redis is wired, so only one
// instance scans per interval.
func (j *Job) Run(ctx context.Context) {
	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	j.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.tick(ctx)
		}
	}
}

func (j *Job) tick(ctx context.Context) {
	if j.rdb != nil {
		token := uuid.NewString()
		ok, err := utils.AcquireJobLock(ctx, j.rdb, lockKey, token, j.cfg.Interval)
		if err != nil {
			j.log.Error("scheduler lock acquire failed", "error", err)
			return
		}
		if !ok {
			j.log.Debug("scheduler lock held elsewhere, skipping tick")
			return
		}
		defer func() {
			if err := utils.ReleaseJobLock(ctx, j.rdb, lockKey, token); err != nil {
				j.log.Warn("scheduler lock release failed", "error", err)
			}
		}()
	}
	j.RunOnce(ctx, j.clock().UTC())
}

// RunOnce performs one scheduling pass at the given instant. A failure
// on one user is logged and must not stop the pass for the rest.
func (j *Job) RunOnce(ctx context.Context, now time.Time) {
	now = now.UTC()
	j.log.Info("scheduling pass started", "now", now)

	candidates, err := j.users.ListOnboarded(ctx)
	if err != nil {
		j.log.Error("list onboarded users", "error", err)
		return
	}

	scheduled := 0
	for _, u := range candidates {
		n, err := j.evaluateUser(ctx, u.ID, now)
		if err != nil {
			j.log.Error("evaluate user schedule", "user_id", u.ID, "error", err)
			continue
		}
		scheduled += n
	}
	j.log.Info("scheduling pass finished", "users", len(candidates), "sessions_created", scheduled)
}

func (j *Job) evaluateUser(ctx context.Context, userID string, now time.Time) (int, error) {
	sched, err := j.schedules.GetByUser(ctx, userID)
	if errors.Is(err, schedule.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	created := 0
	if now.Weekday() == sched.WeeklyDay {
		n, err := j.maybeSchedule(ctx, userID, session.CallTypeWeekly, sched.WeeklyTime, now)
		if err != nil {
			return created, err
		}
		created += n
	}
	for _, day := range sched.EveningDays {
		if day != now.Weekday() {
			continue
		}
		n, err := j.maybeSchedule(ctx, userID, session.CallTypeDaily, sched.EveningTime, now)
		if err != nil {
			return created, err
		}
		created += n
		break
	}
	return created, nil
}

// maybeSchedule inserts a session for today's due time if now is
// inside the tolerance window, no session for (user, type, today)
// exists yet, and the due time is not more than the lookahead in the
// future.
func (j *Job) maybeSchedule(ctx context.Context, userID string, t session.CallType, hhmm string, now time.Time) (int, error) {
	hour, minute, err := schedule.ParseClock(hhmm)
	if err != nil {
		j.log.Warn("malformed schedule time, skipping", "user_id", userID, "call_type", t, "time", hhmm)
		return 0, nil
	}
	dueAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)

	if diff := now.Sub(dueAt); diff > j.cfg.Tolerance || diff < -j.cfg.Tolerance {
		return 0, nil
	}

	// Idempotency: one session per (user, type, calendar date).
	today := now.Format("2006-01-02")
	existing, err := j.sessions.ListByUserType(ctx, userID, t)
	if err != nil {
		return 0, err
	}
	for _, s := range existing {
		if s.ScheduledFor.UTC().Format("2006-01-02") == today {
			j.log.Debug("session already scheduled", "user_id", userID, "call_type", t, "date", today)
			return 0, nil
		}
	}

	// Future-dated due times past the lookahead are left for a later
	// pass, otherwise an early tick would create tomorrow's session a
	// window too soon.
	if dueAt.After(now.Add(j.cfg.Lookahead)) {
		return 0, nil
	}

	id, err := j.sessions.Insert(ctx, session.CallSession{
		UserID:       userID,
		Type:         t,
		ScheduledFor: dueAt,
		Status:       session.StatusScheduled,
	})
	if err != nil {
		return 0, err
	}
	j.log.Info("call session scheduled", "session_id", id, "user_id", userID, "call_type", t, "scheduled_for", dueAt)

	if j.events != nil {
		_ = j.events.CallScheduled(ctx, notify.CallEvent{
			UserID:       userID,
			CallType:     string(t),
			SessionID:    id,
			ScheduledFor: dueAt,
		})
	}
	return 1, nil
}
