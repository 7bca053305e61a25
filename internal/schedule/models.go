package schedule

import (
	"strings"
	"time"
)

// Schedule holds a user's recurring call preferences. One row per
// user, created with defaults at registration and mutated only by
// explicit settings updates. Times are timezone-less HH:MM wall-clock
// values evaluated in UTC, matching how the scheduler runs.
type Schedule struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`

	// OnboardingTime is optional until onboarding completes.
	OnboardingTime string `json:"onboarding_time,omitempty" db:"onboarding_time"`

	WeeklyDay  time.Weekday `json:"weekly_day" db:"weekly_day"`
	WeeklyTime string       `json:"weekly_time" db:"weekly_time"`

	EveningDays []time.Weekday `json:"evening_days" db:"evening_days"`
	EveningTime string         `json:"evening_time" db:"evening_time"`

	IncludeSaturday    bool `json:"include_saturday" db:"include_saturday"`
	IncludeSundayRecap bool `json:"include_sunday_recap" db:"include_sunday_recap"`

	RetryIntervalMinutes int `json:"retry_interval_minutes" db:"retry_interval_minutes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Default returns the schedule every new user starts with: Sunday
// 10:00 weekly planning, Monday-Friday 17:00 evening check-ins.
func Default(userID string) Schedule {
	return Schedule{
		UserID:     userID,
		WeeklyDay:  time.Sunday,
		WeeklyTime: "10:00",
		EveningDays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		EveningTime:          "17:00",
		IncludeSaturday:      false,
		IncludeSundayRecap:   false,
		RetryIntervalMinutes: 30,
	}
}

// Update carries a partial schedule patch; nil fields are left untouched.
type Update struct {
	OnboardingTime       *string         `json:"onboarding_time,omitempty"`
	WeeklyDay            *time.Weekday   `json:"weekly_day,omitempty"`
	WeeklyTime           *string         `json:"weekly_time,omitempty"`
	EveningDays          *[]time.Weekday `json:"evening_days,omitempty"`
	EveningTime          *string         `json:"evening_time,omitempty"`
	IncludeSaturday      *bool           `json:"include_saturday,omitempty"`
	IncludeSundayRecap   *bool           `json:"include_sunday_recap,omitempty"`
	RetryIntervalMinutes *int            `json:"retry_interval_minutes,omitempty"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday maps a day name ("Sunday", case-insensitive) to its
// time.Weekday value.
func ParseWeekday(name string) (time.Weekday, bool) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// ParseWeekdays maps a list of day names, dropping unrecognized entries.
func ParseWeekdays(names []string) []time.Weekday {
	out := make([]time.Weekday, 0, len(names))
	for _, n := range names {
		if d, ok := ParseWeekday(n); ok {
			out = append(out, d)
		}
	}
	return out
}
