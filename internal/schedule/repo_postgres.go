package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// NOTE: This repository assumes a schedules table:
//
//   id                     UUID PRIMARY KEY
//   user_id                UUID NOT NULL UNIQUE
//   onboarding_time        TEXT NOT NULL DEFAULT ''
//   weekly_day             SMALLINT NOT NULL
//   weekly_time            TEXT NOT NULL
//   evening_days           JSONB NOT NULL
//   evening_time           TEXT NOT NULL
//   include_saturday       BOOLEAN NOT NULL
//   include_sunday_recap   BOOLEAN NOT NULL
//   retry_interval_minutes INT NOT NULL
//   created_at             TIMESTAMPTZ NOT NULL
//   updated_at             TIMESTAMPTZ NOT NULL
//
// evening_days is stored as a JSON array of weekday numbers (0=Sunday).

type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

const scheduleColumns = `
id, user_id, onboarding_time, weekly_day, weekly_time, evening_days, evening_time,
include_saturday, include_sunday_recap, retry_interval_minutes, created_at, updated_at
`

func scanSchedule(row interface{ Scan(...any) error }) (Schedule, error) {
	var s Schedule
	var weeklyDay int
	var eveningDays []byte
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.OnboardingTime,
		&weeklyDay,
		&s.WeeklyTime,
		&eveningDays,
		&s.EveningTime,
		&s.IncludeSaturday,
		&s.IncludeSundayRecap,
		&s.RetryIntervalMinutes,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return Schedule{}, err
	}
	s.WeeklyDay = time.Weekday(weeklyDay)
	if len(eveningDays) > 0 {
		var days []int
		if err := json.Unmarshal(eveningDays, &days); err != nil {
			return Schedule{}, err
		}
		s.EveningDays = make([]time.Weekday, 0, len(days))
		for _, d := range days {
			s.EveningDays = append(s.EveningDays, time.Weekday(d))
		}
	}
	return s, nil
}

func marshalDays(days []time.Weekday) ([]byte, error) {
	nums := make([]int, 0, len(days))
	for _, d := range days {
		nums = append(nums, int(d))
	}
	return json.Marshal(nums)
}

func (r *PostgresStore) GetByUser(ctx context.Context, userID string) (Schedule, error) {
	if userID == "" {
		return Schedule{}, ErrInvalidArgument
	}
	const q = `SELECT ` + scheduleColumns + ` FROM schedules WHERE user_id = $1`
	s, err := scanSchedule(r.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return Schedule{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresStore) Insert(ctx context.Context, s Schedule) (string, error) {
	if s.UserID == "" {
		return "", ErrInvalidArgument
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	days, err := marshalDays(s.EveningDays)
	if err != nil {
		return "", err
	}
	now := r.clock().UTC()
	const q = `
INSERT INTO schedules (
  id, user_id, onboarding_time, weekly_day, weekly_time, evening_days, evening_time,
  include_saturday, include_sunday_recap, retry_interval_minutes, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
ON CONFLICT (user_id) DO NOTHING
`
	if _, err := r.db.ExecContext(ctx, q,
		s.ID, s.UserID, s.OnboardingTime, int(s.WeeklyDay), s.WeeklyTime, days, s.EveningTime,
		s.IncludeSaturday, s.IncludeSundayRecap, s.RetryIntervalMinutes, now,
	); err != nil {
		return "", err
	}
	return s.ID, nil
}

func (r *PostgresStore) Update(ctx context.Context, userID string, upd Update) error {
	if userID == "" {
		return ErrInvalidArgument
	}
	var days []byte
	if upd.EveningDays != nil {
		var err error
		days, err = marshalDays(*upd.EveningDays)
		if err != nil {
			return err
		}
	}
	var weeklyDay *int
	if upd.WeeklyDay != nil {
		n := int(*upd.WeeklyDay)
		weeklyDay = &n
	}
	now := r.clock().UTC()
	const q = `
UPDATE schedules SET
  onboarding_time        = COALESCE($2, onboarding_time),
  weekly_day             = COALESCE($3, weekly_day),
  weekly_time            = COALESCE($4, weekly_time),
  evening_days           = COALESCE($5, evening_days),
  evening_time           = COALESCE($6, evening_time),
  include_saturday       = COALESCE($7, include_saturday),
  include_sunday_recap   = COALESCE($8, include_sunday_recap),
  retry_interval_minutes = COALESCE($9, retry_interval_minutes),
  updated_at             = $10
WHERE user_id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		userID, upd.OnboardingTime, weeklyDay, upd.WeeklyTime, days, upd.EveningTime,
		upd.IncludeSaturday, upd.IncludeSundayRecap, upd.RetryIntervalMinutes, now,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
