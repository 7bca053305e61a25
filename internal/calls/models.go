package calls

import "time"

// CallRecord is the audit/history row for an actually-attempted call.
//
// ProviderCallID is the natural key: the voice provider may redeliver
// a webhook for the same call, and a second sighting must update the
// existing row, never insert a duplicate.
//
// A record is created either by the outbound trigger (placeholder row,
// status "in-progress", no endedAt) or by the webhook on first
// sighting; the webhook later fills in timing, recording and summary.
type CallRecord struct {
	ID             string `json:"id" db:"id"`
	ProviderCallID string `json:"provider_call_id" db:"provider_call_id"`
	UserID         string `json:"user_id" db:"user_id"`

	// CallSessionID links back to the session when correlation by
	// provider call id succeeded; empty when the record was attributed
	// by phone-number fallback.
	CallSessionID string `json:"call_session_id,omitempty" db:"call_session_id"`

	Status    string    `json:"status" db:"status"`
	Direction Direction `json:"direction" db:"direction"`

	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`

	DurationSeconds int `json:"duration_seconds,omitempty" db:"duration_seconds"`

	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`
	Transcript   string `json:"transcript,omitempty" db:"transcript"`
	Summary      string `json:"summary,omitempty" db:"summary"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)
