package reporting

import (
	"context"
	"database/sql"
	"time"

	"coaching-platform/internal/calls"
	"coaching-platform/internal/session"
)

// PostgresRepo reads the calls and call_sessions tables owned by the
// calls and session packages. Reporting never writes.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListCallRecords(ctx context.Context, userID string, from, to time.Time) ([]calls.CallRecord, error) {
	const q = `
SELECT provider_call_id, user_id, status, duration_seconds, recording_url, started_at
FROM calls
WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
ORDER BY started_at
`
	rows, err := r.db.QueryContext(ctx, q, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]calls.CallRecord, 0)
	for rows.Next() {
		var c calls.CallRecord
		if err := rows.Scan(&c.ProviderCallID, &c.UserID, &c.Status, &c.DurationSeconds, &c.RecordingURL, &c.StartedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListSessions(ctx context.Context, userID string, from, to time.Time) ([]session.CallSession, error) {
	const q = `
SELECT id, user_id, call_type, status, scheduled_for
FROM call_sessions
WHERE user_id = $1 AND scheduled_for >= $2 AND scheduled_for < $3
ORDER BY scheduled_for
`
	rows, err := r.db.QueryContext(ctx, q, userID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]session.CallSession, 0)
	for rows.Next() {
		var s session.CallSession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Type, &s.Status, &s.ScheduledFor); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
