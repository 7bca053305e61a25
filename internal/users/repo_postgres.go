package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// NOTE: This repository assumes a users table:
//
//   id            UUID PRIMARY KEY
//   phone         TEXT NOT NULL UNIQUE
//   timezone      TEXT NOT NULL
//   name          TEXT NOT NULL DEFAULT ''
//   coaching_tone TEXT NOT NULL DEFAULT 'supportive'
//   sms_enabled   BOOLEAN NOT NULL DEFAULT FALSE
//   push_enabled  BOOLEAN NOT NULL DEFAULT FALSE
//   onboarded     BOOLEAN NOT NULL DEFAULT FALSE
//   created_at    TIMESTAMPTZ NOT NULL
//   updated_at    TIMESTAMPTZ NOT NULL

type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

const userColumns = `
id, phone, timezone, name, coaching_tone, sms_enabled, push_enabled, onboarded, created_at, updated_at
`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Phone,
		&u.Timezone,
		&u.Name,
		&u.CoachingTone,
		&u.SMSEnabled,
		&u.PushEnabled,
		&u.Onboarded,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *PostgresStore) Insert(ctx context.Context, u User) (string, error) {
	if u.Phone == "" {
		return "", ErrInvalidArgument
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CoachingTone == "" {
		u.CoachingTone = "supportive"
	}
	now := r.clock().UTC()
	const q = `
INSERT INTO users (id, phone, timezone, name, coaching_tone, sms_enabled, push_enabled, onboarded, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
ON CONFLICT (phone) DO NOTHING
`
	res, err := r.db.ExecContext(ctx, q,
		u.ID, u.Phone, u.Timezone, u.Name, u.CoachingTone, u.SMSEnabled, u.PushEnabled, u.Onboarded, now,
	)
	if err != nil {
		return "", err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", ErrPhoneTaken
	}
	return u.ID, nil
}

func (r *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresStore) GetByPhone(ctx context.Context, phone string) (User, bool, error) {
	if phone == "" {
		return User{}, false, nil
	}
	const q = `SELECT ` + userColumns + ` FROM users WHERE phone = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, q, phone))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (r *PostgresStore) Update(ctx context.Context, id string, upd SettingsUpdate) error {
	if id == "" {
		return ErrInvalidArgument
	}
	now := r.clock().UTC()
	const q = `
UPDATE users SET
  timezone      = COALESCE($2, timezone),
  name          = COALESCE($3, name),
  coaching_tone = COALESCE($4, coaching_tone),
  sms_enabled   = COALESCE($5, sms_enabled),
  push_enabled  = COALESCE($6, push_enabled),
  onboarded     = COALESCE($7, onboarded),
  updated_at    = $8
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		id, upd.Timezone, upd.Name, upd.CoachingTone, upd.SMSEnabled, upd.PushEnabled, upd.Onboarded, now,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresStore) ListOnboarded(ctx context.Context) ([]User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE onboarded ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
