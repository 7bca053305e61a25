package coaching

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// NOTE: This repository assumes the following tables:
//
// - vision_profiles   (user_id UNIQUE; motivations JSONB)
// - weekly_objectives (UNIQUE (user_id, week_start_date); list columns JSONB)
// - daily_plans       (UNIQUE (user_id, date); actions JSONB)
// - commitment_logs   (append-only; index (user_id, date))
// - call_summaries    (append-only rows, user-edit columns mutable until
//                      locked; indexes (user_id), (call_session_id))

type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

/* ===================== vision profiles ===================== */

const visionColumns = `
id, user_id, vision_summary, motivations, cost_of_inaction, commitment_declaration,
raw_onboarding_notes, created_at, updated_at
`

func scanVision(row interface{ Scan(...any) error }) (VisionProfile, error) {
	var v VisionProfile
	var motivations []byte
	if err := row.Scan(
		&v.ID,
		&v.UserID,
		&v.VisionSummary,
		&motivations,
		&v.CostOfInaction,
		&v.CommitmentDeclaration,
		&v.RawOnboardingNotes,
		&v.CreatedAt,
		&v.UpdatedAt,
	); err != nil {
		return VisionProfile{}, err
	}
	if err := unmarshalList(motivations, &v.Motivations); err != nil {
		return VisionProfile{}, err
	}
	return v, nil
}

func (r *PostgresStore) UpsertVision(ctx context.Context, v VisionProfile) (VisionProfile, error) {
	if v.UserID == "" {
		return VisionProfile{}, ErrInvalidArgument
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	motivations, err := marshalList(v.Motivations)
	if err != nil {
		return VisionProfile{}, err
	}
	now := r.clock().UTC()
	const q = `
INSERT INTO vision_profiles (
  id, user_id, vision_summary, motivations, cost_of_inaction, commitment_declaration,
  raw_onboarding_notes, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)
ON CONFLICT (user_id)
DO UPDATE SET
  vision_summary         = EXCLUDED.vision_summary,
  motivations            = EXCLUDED.motivations,
  cost_of_inaction       = EXCLUDED.cost_of_inaction,
  commitment_declaration = EXCLUDED.commitment_declaration,
  raw_onboarding_notes   = EXCLUDED.raw_onboarding_notes,
  updated_at             = EXCLUDED.updated_at
RETURNING ` + visionColumns
	return scanVision(r.db.QueryRowContext(ctx, q,
		v.ID, v.UserID, v.VisionSummary, motivations, v.CostOfInaction,
		v.CommitmentDeclaration, v.RawOnboardingNotes, now,
	))
}

func (r *PostgresStore) GetVision(ctx context.Context, userID string) (VisionProfile, error) {
	if userID == "" {
		return VisionProfile{}, ErrInvalidArgument
	}
	const q = `SELECT ` + visionColumns + ` FROM vision_profiles WHERE user_id = $1`
	v, err := scanVision(r.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return VisionProfile{}, ErrNotFound
	}
	return v, err
}

/* ===================== weekly objectives ===================== */

const weeklyColumns = `
id, user_id, week_start_date, objective, bottlenecks, actions,
stop_list, start_list, continue_list, commitment_level, created_at, updated_at
`

func scanWeekly(row interface{ Scan(...any) error }) (WeeklyObjective, error) {
	var o WeeklyObjective
	var bottlenecks, actions, stop, start, cont []byte
	if err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.WeekStartDate,
		&o.Objective,
		&bottlenecks,
		&actions,
		&stop,
		&start,
		&cont,
		&o.CommitmentLevel,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return WeeklyObjective{}, err
	}
	for _, pair := range []struct {
		raw []byte
		dst *[]string
	}{
		{bottlenecks, &o.Bottlenecks},
		{actions, &o.Actions},
		{stop, &o.StopList},
		{start, &o.StartList},
		{cont, &o.ContinueList},
	} {
		if err := unmarshalList(pair.raw, pair.dst); err != nil {
			return WeeklyObjective{}, err
		}
	}
	return o, nil
}

func (r *PostgresStore) UpsertWeekly(ctx context.Context, o WeeklyObjective) (WeeklyObjective, error) {
	if o.UserID == "" || o.WeekStartDate == "" {
		return WeeklyObjective{}, ErrInvalidArgument
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	lists := make([][]byte, 5)
	for i, l := range [][]string{o.Bottlenecks, o.Actions, o.StopList, o.StartList, o.ContinueList} {
		b, err := marshalList(l)
		if err != nil {
			return WeeklyObjective{}, err
		}
		lists[i] = b
	}
	now := r.clock().UTC()
	const q = `
INSERT INTO weekly_objectives (
  id, user_id, week_start_date, objective, bottlenecks, actions,
  stop_list, start_list, continue_list, commitment_level, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$11)
ON CONFLICT (user_id, week_start_date)
DO UPDATE SET
  objective        = EXCLUDED.objective,
  bottlenecks      = EXCLUDED.bottlenecks,
  actions          = EXCLUDED.actions,
  stop_list        = EXCLUDED.stop_list,
  start_list       = EXCLUDED.start_list,
  continue_list    = EXCLUDED.continue_list,
  commitment_level = EXCLUDED.commitment_level,
  updated_at       = EXCLUDED.updated_at
RETURNING ` + weeklyColumns
	return scanWeekly(r.db.QueryRowContext(ctx, q,
		o.ID, o.UserID, o.WeekStartDate, o.Objective,
		lists[0], lists[1], lists[2], lists[3], lists[4],
		o.CommitmentLevel, now,
	))
}

func (r *PostgresStore) GetWeekly(ctx context.Context, userID, weekStartDate string) (WeeklyObjective, error) {
	if userID == "" || weekStartDate == "" {
		return WeeklyObjective{}, ErrInvalidArgument
	}
	const q = `SELECT ` + weeklyColumns + ` FROM weekly_objectives WHERE user_id = $1 AND week_start_date = $2`
	o, err := scanWeekly(r.db.QueryRowContext(ctx, q, userID, weekStartDate))
	if errors.Is(err, sql.ErrNoRows) {
		return WeeklyObjective{}, ErrNotFound
	}
	return o, err
}

func (r *PostgresStore) ListWeekly(ctx context.Context, userID string, limit int) ([]WeeklyObjective, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 10
	}
	const q = `
SELECT ` + weeklyColumns + `
FROM weekly_objectives
WHERE user_id = $1
ORDER BY week_start_date DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]WeeklyObjective, 0)
	for rows.Next() {
		o, err := scanWeekly(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

/* ===================== daily plans ===================== */

const dailyColumns = `
id, user_id, date, actions, start_time, created_at, updated_at
`

func scanDaily(row interface{ Scan(...any) error }) (DailyPlan, error) {
	var p DailyPlan
	var actions []byte
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Date,
		&actions,
		&p.StartTime,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return DailyPlan{}, err
	}
	if len(actions) > 0 {
		if err := json.Unmarshal(actions, &p.Actions); err != nil {
			return DailyPlan{}, err
		}
	}
	return p, nil
}

func (r *PostgresStore) UpsertDaily(ctx context.Context, p DailyPlan) (DailyPlan, error) {
	if p.UserID == "" || p.Date == "" {
		return DailyPlan{}, ErrInvalidArgument
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	actions, err := json.Marshal(p.Actions)
	if err != nil {
		return DailyPlan{}, err
	}
	now := r.clock().UTC()
	const q = `
INSERT INTO daily_plans (id, user_id, date, actions, start_time, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
ON CONFLICT (user_id, date)
DO UPDATE SET
  actions    = EXCLUDED.actions,
  start_time = EXCLUDED.start_time,
  updated_at = EXCLUDED.updated_at
RETURNING ` + dailyColumns
	return scanDaily(r.db.QueryRowContext(ctx, q, p.ID, p.UserID, p.Date, actions, p.StartTime, now))
}

func (r *PostgresStore) GetDaily(ctx context.Context, userID, date string) (DailyPlan, error) {
	if userID == "" || date == "" {
		return DailyPlan{}, ErrInvalidArgument
	}
	const q = `SELECT ` + dailyColumns + ` FROM daily_plans WHERE user_id = $1 AND date = $2`
	p, err := scanDaily(r.db.QueryRowContext(ctx, q, userID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return DailyPlan{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresStore) GetDailyByID(ctx context.Context, id string) (DailyPlan, error) {
	if id == "" {
		return DailyPlan{}, ErrInvalidArgument
	}
	const q = `SELECT ` + dailyColumns + ` FROM daily_plans WHERE id = $1`
	p, err := scanDaily(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return DailyPlan{}, ErrNotFound
	}
	return p, err
}

func (r *PostgresStore) ListDailyRange(ctx context.Context, userID, startDate, endDate string) ([]DailyPlan, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	const q = `
SELECT ` + dailyColumns + `
FROM daily_plans
WHERE user_id = $1
  AND ($2 = '' OR date >= $2)
  AND ($3 = '' OR date <= $3)
ORDER BY date DESC
`
	rows, err := r.db.QueryContext(ctx, q, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]DailyPlan, 0)
	for rows.Next() {
		p, err := scanDaily(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

/* ===================== commitment logs ===================== */

func (r *PostgresStore) AppendCommitment(ctx context.Context, c CommitmentLog) (string, error) {
	if c.UserID == "" || c.Date == "" || c.Type == "" {
		return "", ErrInvalidArgument
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	const q = `
INSERT INTO commitment_logs (id, user_id, date, type, text, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.UserID, c.Date, c.Type, c.Text, r.clock().UTC())
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (r *PostgresStore) ListCommitments(ctx context.Context, userID string, limit int) ([]CommitmentLog, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 30
	}
	const q = `
SELECT id, user_id, date, type, text, created_at
FROM commitment_logs
WHERE user_id = $1
ORDER BY date DESC, created_at DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CommitmentLog, 0)
	for rows.Next() {
		var c CommitmentLog
		if err := rows.Scan(&c.ID, &c.UserID, &c.Date, &c.Type, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

/* ===================== call summaries ===================== */

const summaryColumns = `
id, user_id, call_session_id, call_type, timestamp, summary_text,
extracted_data, user_edits_text, locked, created_at
`

func scanSummary(row interface{ Scan(...any) error }) (CallSummary, error) {
	var s CallSummary
	var extracted []byte
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.CallSessionID,
		&s.CallType,
		&s.Timestamp,
		&s.SummaryText,
		&extracted,
		&s.UserEditsText,
		&s.Locked,
		&s.CreatedAt,
	); err != nil {
		return CallSummary{}, err
	}
	s.ExtractedData = extracted
	return s, nil
}

func (r *PostgresStore) InsertSummary(ctx context.Context, s CallSummary) (string, error) {
	if s.UserID == "" {
		return "", ErrInvalidArgument
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	const q = `
INSERT INTO call_summaries (
  id, user_id, call_session_id, call_type, timestamp, summary_text,
  extracted_data, user_edits_text, locked, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,'',FALSE,$8)
`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.UserID, s.CallSessionID, s.CallType, s.Timestamp.UTC(), s.SummaryText,
		s.ExtractedData, r.clock().UTC(),
	)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

func (r *PostgresStore) GetSummary(ctx context.Context, id string) (CallSummary, error) {
	if id == "" {
		return CallSummary{}, ErrInvalidArgument
	}
	const q = `SELECT ` + summaryColumns + ` FROM call_summaries WHERE id = $1`
	s, err := scanSummary(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return CallSummary{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresStore) GetSummaryBySession(ctx context.Context, sessionID string) (CallSummary, bool, error) {
	if sessionID == "" {
		return CallSummary{}, false, nil
	}
	const q = `
SELECT ` + summaryColumns + `
FROM call_summaries
WHERE call_session_id = $1
ORDER BY timestamp DESC
LIMIT 1
`
	s, err := scanSummary(r.db.QueryRowContext(ctx, q, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return CallSummary{}, false, nil
	}
	if err != nil {
		return CallSummary{}, false, err
	}
	return s, true, nil
}

func (r *PostgresStore) ListSummaries(ctx context.Context, userID string, limit int) ([]CallSummary, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + summaryColumns + `
FROM call_summaries
WHERE user_id = $1
ORDER BY timestamp DESC
LIMIT $2
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallSummary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresStore) UpdateSummaryEdits(ctx context.Context, id, userEditsText string, lock bool) error {
	if id == "" {
		return ErrInvalidArgument
	}
	// The locked guard lives in the WHERE clause so a concurrent lock
	// cannot be overwritten.
	const q = `
UPDATE call_summaries
SET user_edits_text = $2, locked = $3
WHERE id = $1 AND NOT locked
`
	res, err := r.db.ExecContext(ctx, q, id, userEditsText, lock)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetSummary(ctx, id); getErr != nil {
			return getErr
		}
		return ErrSummaryLocked
	}
	return nil
}

/* ===================== helpers ===================== */

func marshalList(l []string) ([]byte, error) {
	if l == nil {
		l = []string{}
	}
	return json.Marshal(l)
}

func unmarshalList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal(raw, dst)
}
