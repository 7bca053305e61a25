package calls

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// NOTE: This repository assumes a calls table:
//
//   id               UUID PRIMARY KEY
//   provider_call_id TEXT NOT NULL UNIQUE
//   user_id          UUID NOT NULL
//   call_session_id  UUID NULL
//   status           TEXT NOT NULL
//   direction        TEXT NOT NULL
//   started_at       TIMESTAMPTZ NOT NULL
//   ended_at         TIMESTAMPTZ NULL
//   duration_seconds INT NOT NULL DEFAULT 0
//   recording_url    TEXT NOT NULL DEFAULT ''
//   transcript       TEXT NOT NULL DEFAULT ''
//   summary          TEXT NOT NULL DEFAULT ''
//   created_at       TIMESTAMPTZ NOT NULL
//   updated_at       TIMESTAMPTZ NOT NULL
//
// with an index on (user_id).

type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

const callColumns = `
id, provider_call_id, user_id, call_session_id, status, direction,
started_at, ended_at, duration_seconds, recording_url, transcript, summary,
created_at, updated_at
`

func scanCall(row interface{ Scan(...any) error }) (CallRecord, error) {
	var c CallRecord
	var sessionID, recording, transcript, summary sql.NullString
	var endedAt sql.NullTime
	if err := row.Scan(
		&c.ID,
		&c.ProviderCallID,
		&c.UserID,
		&sessionID,
		&c.Status,
		&c.Direction,
		&c.StartedAt,
		&endedAt,
		&c.DurationSeconds,
		&recording,
		&transcript,
		&summary,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return CallRecord{}, err
	}
	c.CallSessionID = sessionID.String
	c.RecordingURL = recording.String
	c.Transcript = transcript.String
	c.Summary = summary.String
	if endedAt.Valid {
		t := endedAt.Time
		c.EndedAt = &t
	}
	return c, nil
}

// Upsert inserts or patches the row for rec.ProviderCallID. COALESCE /
// NULLIF keep existing values when the incoming field is empty, which
// makes webhook redelivery a no-op beyond updated_at.
func (r *PostgresStore) Upsert(ctx context.Context, rec CallRecord) (CallRecord, error) {
	if rec.ProviderCallID == "" || rec.UserID == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := r.clock().UTC()
	const q = `
INSERT INTO calls (
  id, provider_call_id, user_id, call_session_id, status, direction,
  started_at, ended_at, duration_seconds, recording_url, transcript, summary,
  created_at, updated_at
) VALUES ($1,$2,$3,NULLIF($4,''),$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
ON CONFLICT (provider_call_id)
DO UPDATE SET
  status           = EXCLUDED.status,
  call_session_id  = COALESCE(EXCLUDED.call_session_id, calls.call_session_id),
  direction        = EXCLUDED.direction,
  ended_at         = COALESCE(EXCLUDED.ended_at, calls.ended_at),
  duration_seconds = GREATEST(EXCLUDED.duration_seconds, calls.duration_seconds),
  recording_url    = COALESCE(NULLIF(EXCLUDED.recording_url, ''), calls.recording_url),
  transcript       = COALESCE(NULLIF(EXCLUDED.transcript, ''), calls.transcript),
  summary          = COALESCE(NULLIF(EXCLUDED.summary, ''), calls.summary),
  updated_at       = EXCLUDED.updated_at
RETURNING ` + callColumns
	return scanCall(r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.ProviderCallID,
		rec.UserID,
		rec.CallSessionID,
		rec.Status,
		rec.Direction,
		rec.StartedAt.UTC(),
		nullTime(rec.EndedAt),
		rec.DurationSeconds,
		rec.RecordingURL,
		rec.Transcript,
		rec.Summary,
		now,
	))
}

func (r *PostgresStore) GetByID(ctx context.Context, id string) (CallRecord, error) {
	if id == "" {
		return CallRecord{}, ErrInvalidArgument
	}
	const q = `SELECT ` + callColumns + ` FROM calls WHERE id = $1`
	c, err := scanCall(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return CallRecord{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresStore) GetByProviderCallID(ctx context.Context, providerCallID string) (CallRecord, bool, error) {
	if providerCallID == "" {
		return CallRecord{}, false, nil
	}
	const q = `SELECT ` + callColumns + ` FROM calls WHERE provider_call_id = $1`
	c, err := scanCall(r.db.QueryRowContext(ctx, q, providerCallID))
	if errors.Is(err, sql.ErrNoRows) {
		return CallRecord{}, false, nil
	}
	if err != nil {
		return CallRecord{}, false, err
	}
	return c, true, nil
}

func (r *PostgresStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]CallRecord, error) {
	if userID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT ` + callColumns + `
FROM calls
WHERE user_id = $1
ORDER BY started_at DESC
LIMIT $2 OFFSET $3
`
	rows, err := r.db.QueryContext(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallRecord, 0)
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
