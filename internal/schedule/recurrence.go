package schedule

import (
	"fmt"
	"time"

	"coaching-platform/internal/session"
)

// NextCall is the earliest theoretically-due call for a schedule.
type NextCall struct {
	At   time.Time
	Type session.CallType
}

// ParseClock parses an "HH:MM" 24-hour time-of-day.
func ParseClock(hhmm string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("schedule: invalid time %q: %w", hhmm, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("schedule: invalid time %q", hhmm)
	}
	return hour, minute, nil
}

// NextOccurrence returns the next instant at or after now that falls on
// the given weekday at the given HH:MM wall-clock time, in now's
// location. If the target weekday is today and the time has already
// passed, the occurrence is a week out. The result is always within
// [now, now+7d].
func NextOccurrence(now time.Time, day time.Weekday, hhmm string) (time.Time, error) {
	hour, minute, err := ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}

	delta := (int(day) - int(now.Weekday()) + 7) % 7
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()).
		AddDate(0, 0, delta)
	if candidate.Before(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate, nil
}

// NextCallFor unions the weekly candidate with every evening-day
// candidate and returns the earliest together with its call type. It
// is total for structurally valid schedules: candidates with malformed
// times are simply skipped. Returns false when no recurrence rule is
// configured at all.
func NextCallFor(s Schedule, now time.Time) (NextCall, bool) {
	best := NextCall{}
	found := false

	consider := func(at time.Time, t session.CallType) {
		if !found || at.Before(best.At) {
			best = NextCall{At: at, Type: t}
			found = true
		}
	}

	if s.WeeklyTime != "" {
		if at, err := NextOccurrence(now, s.WeeklyDay, s.WeeklyTime); err == nil {
			consider(at, session.CallTypeWeekly)
		}
	}
	if s.EveningTime != "" {
		for _, day := range s.EveningDays {
			if at, err := NextOccurrence(now, day, s.EveningTime); err == nil {
				consider(at, session.CallTypeDaily)
			}
		}
	}
	return best, found
}
