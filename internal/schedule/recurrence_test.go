package schedule

import (
	"testing"
	"time"

	"coaching-platform/internal/session"
)

// Wednesday 2026-01-07 12:00 UTC.
var wednesdayNoon = time.Date(2026, 1, 7, 12, 0, 0, 0, time.UTC)

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("17:30")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if h != 17 || m != 30 {
		t.Fatalf("got %d:%d", h, m)
	}

	for _, bad := range []string{"", "25:00", "12:75", "noon", "-1:30"} {
		if _, _, err := ParseClock(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNextOccurrenceLaterToday(t *testing.T) {
	at, err := NextOccurrence(wednesdayNoon, time.Wednesday, "17:00")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := time.Date(2026, 1, 7, 17, 0, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("got %v, want %v", at, want)
	}
}

func TestNextOccurrencePassedTodayRollsAWeek(t *testing.T) {
	at, err := NextOccurrence(wednesdayNoon, time.Wednesday, "09:00")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := time.Date(2026, 1, 14, 9, 0, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("got %v, want %v", at, want)
	}
}

func TestNextOccurrenceExactlyNowIsNow(t *testing.T) {
	at, err := NextOccurrence(wednesdayNoon, time.Wednesday, "12:00")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !at.Equal(wednesdayNoon) {
		t.Fatalf("got %v, want %v", at, wednesdayNoon)
	}
}

func TestNextOccurrenceEarlierWeekday(t *testing.T) {
	// Sunday from a Wednesday is 4 days out, never 11.
	at, err := NextOccurrence(wednesdayNoon, time.Sunday, "10:00")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Fatalf("got %v, want %v", at, want)
	}
	if at.Sub(wednesdayNoon) > 7*24*time.Hour {
		t.Fatalf("occurrence more than a week out: %v", at)
	}
}

func TestNextCallForPicksEarliest(t *testing.T) {
	s := Default("u1") // weekly Sunday 10:00, evenings Mon-Fri 17:00

	next, ok := NextCallFor(s, wednesdayNoon)
	if !ok {
		t.Fatalf("expected a next call")
	}
	// Wednesday evening beats Sunday morning.
	if next.Type != session.CallTypeDaily {
		t.Fatalf("expected daily, got %s", next.Type)
	}
	want := time.Date(2026, 1, 7, 17, 0, 0, 0, time.UTC)
	if !next.At.Equal(want) {
		t.Fatalf("got %v, want %v", next.At, want)
	}
}

func TestNextCallForWeeklyWins(t *testing.T) {
	s := Default("u1")
	// Saturday: no evening call until Monday, weekly is Sunday.
	saturday := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	next, ok := NextCallFor(s, saturday)
	if !ok {
		t.Fatalf("expected a next call")
	}
	if next.Type != session.CallTypeWeekly {
		t.Fatalf("expected weekly, got %s", next.Type)
	}
}

func TestNextCallForSingleEveningDay(t *testing.T) {
	s := Schedule{
		UserID:      "u1",
		WeeklyDay:   time.Sunday,
		WeeklyTime:  "10:00",
		EveningDays: []time.Weekday{time.Monday},
		EveningTime: "17:00",
	}

	// Monday 2026-01-05 09:00: tonight's check-in is first.
	monMorning := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	next, ok := NextCallFor(s, monMorning)
	if !ok || next.Type != session.CallTypeDaily {
		t.Fatalf("got %+v, ok=%v", next, ok)
	}
	if !next.At.Equal(time.Date(2026, 1, 5, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v", next.At)
	}

	// Monday 18:00: tonight has passed, Sunday's weekly is next.
	monEvening := time.Date(2026, 1, 5, 18, 0, 0, 0, time.UTC)
	next, ok = NextCallFor(s, monEvening)
	if !ok || next.Type != session.CallTypeWeekly {
		t.Fatalf("got %+v, ok=%v", next, ok)
	}
	if !next.At.Equal(time.Date(2026, 1, 11, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("got %v", next.At)
	}
}

func TestNextCallForSkipsMalformedTimes(t *testing.T) {
	s := Default("u1")
	s.WeeklyTime = "not-a-time"

	next, ok := NextCallFor(s, wednesdayNoon)
	if !ok {
		t.Fatalf("expected evening candidates to survive")
	}
	if next.Type != session.CallTypeDaily {
		t.Fatalf("expected daily, got %s", next.Type)
	}
}

func TestNextCallForEmptySchedule(t *testing.T) {
	if _, ok := NextCallFor(Schedule{UserID: "u1"}, wednesdayNoon); ok {
		t.Fatalf("expected no next call for empty schedule")
	}
}
