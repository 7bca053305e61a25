package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"coaching-platform/internal/config"
	"coaching-platform/internal/schedule"
	"coaching-platform/internal/session"
	"coaching-platform/internal/users"
)

type fixture struct {
	users     *users.MemoryStore
	schedules *schedule.MemoryStore
	sessions  *session.MemoryStore
	job       *Job
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:     users.NewMemoryStore(),
		schedules: schedule.NewMemoryStore(),
		sessions:  session.NewMemoryStore(),
	}
	cfg := config.SchedulerConfig{Interval: time.Hour, Tolerance: time.Hour, Lookahead: time.Hour}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.job = NewJob(f.users, f.schedules, f.sessions, nil, nil, cfg, log)
	return f
}

func (f *fixture) addUser(t *testing.T, phone string, sched schedule.Schedule) string {
	t.Helper()
	ctx := context.Background()
	on := true
	id, err := f.users.Insert(ctx, users.User{Phone: phone, Timezone: "UTC"})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := f.users.Update(ctx, id, users.SettingsUpdate{Onboarded: &on}); err != nil {
		t.Fatalf("mark onboarded: %v", err)
	}
	sched.UserID = id
	if _, err := f.schedules.Insert(ctx, sched); err != nil {
		t.Fatalf("insert schedule: %v", err)
	}
	return id
}

func (f *fixture) sessionsFor(t *testing.T, userID string, ct session.CallType) []session.CallSession {
	t.Helper()
	out, err := f.sessions.ListByUserType(context.Background(), userID, ct)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	return out
}

// Wednesday 2026-01-07.
func wednesdayAt(hour, minute int) time.Time {
	return time.Date(2026, 1, 7, hour, minute, 0, 0, time.UTC)
}

func TestRunOnceSchedulesEveningInsideTolerance(t *testing.T) {
	f := newFixture(t)
	uid := f.addUser(t, "+15550000001", schedule.Default(""))

	// 16:30, evening call at 17:00 is 30m out and within the hour
	// lookahead.
	f.job.RunOnce(context.Background(), wednesdayAt(16, 30))

	got := f.sessionsFor(t, uid, session.CallTypeDaily)
	if len(got) != 1 {
		t.Fatalf("sessions = %d, want 1", len(got))
	}
	if got[0].Status != session.StatusScheduled {
		t.Fatalf("status = %s", got[0].Status)
	}
	if !got[0].ScheduledFor.Equal(wednesdayAt(17, 0)) {
		t.Fatalf("scheduled_for = %v", got[0].ScheduledFor)
	}
}

func TestRunOnceSkipsOutsideTolerance(t *testing.T) {
	f := newFixture(t)
	uid := f.addUser(t, "+15550000001", schedule.Default(""))

	// 15:30 is 90 minutes before the 17:00 evening call.
	f.job.RunOnce(context.Background(), wednesdayAt(15, 30))

	if got := f.sessionsFor(t, uid, session.CallTypeDaily); len(got) != 0 {
		t.Fatalf("sessions = %d, want 0", len(got))
	}
}

func TestRunOnceIdempotentPerDate(t *testing.T) {
	f := newFixture(t)
	uid := f.addUser(t, "+15550000001", schedule.Default(""))

	f.job.RunOnce(context.Background(), wednesdayAt(16, 30))
	// The window straddles the due time; the next pass sees it again.
	f.job.RunOnce(context.Background(), wednesdayAt(17, 30))

	if got := f.sessionsFor(t, uid, session.CallTypeDaily); len(got) != 1 {
		t.Fatalf("sessions = %d, want 1", len(got))
	}
}

func TestRunOnceWeeklyOnlyOnItsDay(t *testing.T) {
	f := newFixture(t)
	uid := f.addUser(t, "+15550000001", schedule.Default(""))

	// Wednesday morning must not create the Sunday 10:00 weekly.
	f.job.RunOnce(context.Background(), wednesdayAt(10, 0))
	if got := f.sessionsFor(t, uid, session.CallTypeWeekly); len(got) != 0 {
		t.Fatalf("weekly sessions on wrong day = %d", len(got))
	}

	// Sunday 2026-01-04 09:30.
	sunday := time.Date(2026, 1, 4, 9, 30, 0, 0, time.UTC)
	f.job.RunOnce(context.Background(), sunday)
	got := f.sessionsFor(t, uid, session.CallTypeWeekly)
	if len(got) != 1 {
		t.Fatalf("weekly sessions = %d, want 1", len(got))
	}
	if !got[0].ScheduledFor.Equal(time.Date(2026, 1, 4, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("scheduled_for = %v", got[0].ScheduledFor)
	}
}

func TestRunOnceRespectsLookahead(t *testing.T) {
	f := newFixture(t)
	f.job.cfg.Tolerance = 3 * time.Hour
	uid := f.addUser(t, "+15550000001", schedule.Default(""))

	// With a widened tolerance 14:30 would qualify, but 17:00 is past
	// the one-hour lookahead.
	f.job.RunOnce(context.Background(), wednesdayAt(14, 30))
	if got := f.sessionsFor(t, uid, session.CallTypeDaily); len(got) != 0 {
		t.Fatalf("sessions = %d, want 0", len(got))
	}

	// A due time in the recent past is never blocked by the lookahead.
	f.job.RunOnce(context.Background(), wednesdayAt(17, 45))
	if got := f.sessionsFor(t, uid, session.CallTypeDaily); len(got) != 1 {
		t.Fatalf("sessions = %d, want 1", len(got))
	}
}

func TestRunOnceSkipsNotOnboarded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.users.Insert(ctx, users.User{Phone: "+15550000001", Timezone: "UTC"})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	sched := schedule.Default(id)
	if _, err := f.schedules.Insert(ctx, sched); err != nil {
		t.Fatalf("insert schedule: %v", err)
	}

	f.job.RunOnce(ctx, wednesdayAt(16, 30))
	if got := f.sessionsFor(t, id, session.CallTypeDaily); len(got) != 0 {
		t.Fatalf("sessions for non-onboarded user = %d", len(got))
	}
}

func TestRunOnceMalformedTimeSkipsUserQuietly(t *testing.T) {
	f := newFixture(t)
	bad := schedule.Default("")
	bad.EveningTime = "never"
	uid := f.addUser(t, "+15550000001", bad)

	f.job.RunOnce(context.Background(), wednesdayAt(16, 30))
	if got := f.sessionsFor(t, uid, session.CallTypeDaily); len(got) != 0 {
		t.Fatalf("sessions = %d, want 0", len(got))
	}
}

func TestRunOnceIsolatesUserFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// First user is onboarded but has no schedule row; the pass must
	// still reach the second user.
	on := true
	orphan, err := f.users.Insert(ctx, users.User{Phone: "+15550000001", Timezone: "UTC"})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := f.users.Update(ctx, orphan, users.SettingsUpdate{Onboarded: &on}); err != nil {
		t.Fatalf("mark onboarded: %v", err)
	}

	uid := f.addUser(t, "+15550000002", schedule.Default(""))

	f.job.RunOnce(ctx, wednesdayAt(16, 30))
	if got := f.sessionsFor(t, uid, session.CallTypeDaily); len(got) != 1 {
		t.Fatalf("sessions = %d, want 1", len(got))
	}
}

func TestRunOnceSchedulesBothTypesWhenDue(t *testing.T) {
	f := newFixture(t)
	sched := schedule.Default("")
	sched.WeeklyDay = time.Wednesday
	sched.WeeklyTime = "17:30"
	uid := f.addUser(t, "+15550000001", sched)

	f.job.RunOnce(context.Background(), wednesdayAt(17, 0))

	if got := f.sessionsFor(t, uid, session.CallTypeDaily); len(got) != 1 {
		t.Fatalf("daily sessions = %d, want 1", len(got))
	}
	if got := f.sessionsFor(t, uid, session.CallTypeWeekly); len(got) != 1 {
		t.Fatalf("weekly sessions = %d, want 1", len(got))
	}
}
