package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// NOTE: This repository assumes a call_sessions table:
//
//   id               UUID PRIMARY KEY
//   user_id          UUID NOT NULL
//   call_type        TEXT NOT NULL
//   scheduled_for    TIMESTAMPTZ NOT NULL
//   status           TEXT NOT NULL
//   provider_call_id TEXT NOT NULL DEFAULT ''
//   attempts_count   INT NOT NULL DEFAULT 0
//   last_attempt_at  TIMESTAMPTZ NULL
//   next_attempt_at  TIMESTAMPTZ NULL
//   created_at       TIMESTAMPTZ NOT NULL
//   updated_at       TIMESTAMPTZ NOT NULL
//
// with indexes on (user_id), (status), (user_id, call_type) and
// (provider_call_id).

type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

const sessionColumns = `
id, user_id, call_type, scheduled_for, status, provider_call_id,
attempts_count, last_attempt_at, next_attempt_at, created_at, updated_at
`

func scanSession(row interface{ Scan(...any) error }) (CallSession, error) {
	var s CallSession
	var providerCallID sql.NullString
	var lastAttempt, nextAttempt sql.NullTime
	if err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Type,
		&s.ScheduledFor,
		&s.Status,
		&providerCallID,
		&s.AttemptsCount,
		&lastAttempt,
		&nextAttempt,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return CallSession{}, err
	}
	s.ProviderCallID = providerCallID.String
	if lastAttempt.Valid {
		t := lastAttempt.Time
		s.LastAttemptAt = &t
	}
	if nextAttempt.Valid {
		t := nextAttempt.Time
		s.NextAttemptAt = &t
	}
	return s, nil
}

func (r *PostgresStore) Insert(ctx context.Context, s CallSession) (string, error) {
	if s.UserID == "" {
		return "", ErrInvalidArgument
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.clock().UTC()
	const q = `
INSERT INTO call_sessions (
  id, user_id, call_type, scheduled_for, status, provider_call_id,
  attempts_count, last_attempt_at, next_attempt_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	_, err := r.db.ExecContext(ctx, q,
		s.ID,
		s.UserID,
		s.Type,
		s.ScheduledFor.UTC(),
		s.Status,
		s.ProviderCallID,
		s.AttemptsCount,
		nullTime(s.LastAttemptAt),
		nullTime(s.NextAttemptAt),
		now,
		now,
	)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

func (r *PostgresStore) GetByID(ctx context.Context, id string) (CallSession, error) {
	if id == "" {
		return CallSession{}, ErrInvalidArgument
	}
	const q = `SELECT ` + sessionColumns + ` FROM call_sessions WHERE id = $1`
	s, err := scanSession(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return CallSession{}, ErrNotFound
	}
	return s, err
}

func (r *PostgresStore) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) error {
	if id == "" {
		return ErrInvalidArgument
	}
	now := r.clock().UTC()
	const q = `
UPDATE call_sessions SET
  status = $2,
  provider_call_id = COALESCE(NULLIF($3, ''), provider_call_id),
  last_attempt_at = COALESCE($4, last_attempt_at),
  next_attempt_at = COALESCE($5, next_attempt_at),
  attempts_count = attempts_count + $6,
  updated_at = $7
WHERE id = $1
`
	inc := 0
	if upd.IncrementAttempts {
		inc = 1
	}
	res, err := r.db.ExecContext(ctx, q,
		id,
		upd.Status,
		upd.ProviderCallID,
		nullTime(upd.LastAttemptAt),
		nullTime(upd.NextAttemptAt),
		inc,
		now,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]CallSession, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT ` + sessionColumns + `
FROM call_sessions
WHERE user_id = $1
ORDER BY scheduled_for DESC
LIMIT $2 OFFSET $3
`
	return r.queryMany(ctx, q, userID, limit, offset)
}

func (r *PostgresStore) ListByUserType(ctx context.Context, userID string, t CallType) ([]CallSession, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	const q = `
SELECT ` + sessionColumns + `
FROM call_sessions
WHERE user_id = $1 AND call_type = $2
ORDER BY scheduled_for DESC
`
	return r.queryMany(ctx, q, userID, t)
}

func (r *PostgresStore) ListUpcoming(ctx context.Context, userID string, now time.Time, limit int) ([]CallSession, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 5
	}
	const q = `
SELECT ` + sessionColumns + `
FROM call_sessions
WHERE user_id = $1 AND status = $2 AND scheduled_for >= $3
ORDER BY scheduled_for ASC
LIMIT $4
`
	return r.queryMany(ctx, q, userID, StatusScheduled, now.UTC(), limit)
}

func (r *PostgresStore) FindByProviderCallID(ctx context.Context, providerCallID string) (CallSession, bool, error) {
	if providerCallID == "" {
		return CallSession{}, false, nil
	}
	const q = `
SELECT ` + sessionColumns + `
FROM call_sessions
WHERE provider_call_id = $1
ORDER BY scheduled_for ASC
LIMIT 1
`
	s, err := scanSession(r.db.QueryRowContext(ctx, q, providerCallID))
	if errors.Is(err, sql.ErrNoRows) {
		return CallSession{}, false, nil
	}
	if err != nil {
		return CallSession{}, false, err
	}
	return s, true, nil
}

func (r *PostgresStore) queryMany(ctx context.Context, q string, args ...any) ([]CallSession, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
