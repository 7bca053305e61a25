package vapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"coaching-platform/internal/calls"
	"coaching-platform/internal/config"
	"coaching-platform/internal/session"
)

// ErrNotConfigured is returned when no assistant or credentials exist
// for the requested call type. Fatal, not retryable.
var ErrNotConfigured = errors.New("vapi: call type not configured")

// Trigger places an outbound coaching call. The session row is written
// before any provider traffic so a crash mid-request still leaves an
// auditable trace, and every provider failure lands the session in
// status failed.
type Trigger struct {
	sessions *session.Service
	records  calls.Store
	client   *Client
	cfg      config.VapiConfig
	log      *slog.Logger
	clock    func() time.Time
}

func NewTrigger(sessions *session.Service, records calls.Store, client *Client, cfg config.VapiConfig, log *slog.Logger) *Trigger {
	return &Trigger{
		sessions: sessions,
		records:  records,
		client:   client,
		cfg:      cfg,
		log:      log,
		clock:    time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (t *Trigger) WithClock(clock func() time.Time) *Trigger {
	t.clock = clock
	return t
}

// Trigger asks the provider to call phone for the given call type.
// There is no automatic retry inside the trigger; retrying is the
// caller's decision.
func (t *Trigger) Trigger(ctx context.Context, userID, phone string, callType session.CallType) (Call, error) {
	ct, ok := session.NormalizeCallType(string(callType))
	if !ok {
		return Call{}, fmt.Errorf("%w: unknown call type %q", session.ErrInvalidArgument, callType)
	}

	now := t.clock().UTC()
	sessionID, err := t.sessions.Create(ctx, userID, ct, now)
	if err != nil {
		return Call{}, fmt.Errorf("create call session: %w", err)
	}

	assistantID := t.cfg.AssistantID(ct)
	if t.cfg.APIKey == "" || t.cfg.PhoneNumberID == "" || assistantID == "" {
		t.markFailed(ctx, sessionID)
		return Call{}, fmt.Errorf("%w: %s", ErrNotConfigured, ct)
	}

	// Fetch the live assistant config first so the tool override does
	// not clobber provider-managed model fields.
	assistant, err := t.client.GetAssistant(ctx, assistantID)
	if err != nil {
		t.markFailed(ctx, sessionID)
		return Call{}, err
	}

	model := assistant.Model
	if model == nil {
		model = make(map[string]any)
	}
	model["tools"] = ToolsFor(ct)

	call, err := t.client.CreateCall(ctx, CallRequest{
		AssistantID:        assistantID,
		PhoneNumberID:      t.cfg.PhoneNumberID,
		Customer:           Customer{Number: phone},
		AssistantOverrides: &AssistantOverrides{Model: model},
	})
	if err != nil {
		t.markFailed(ctx, sessionID)
		return Call{}, err
	}

	attemptAt := t.clock().UTC()
	if err := t.sessions.Transition(ctx, sessionID, session.StatusUpdate{
		Status:            session.StatusInProgress,
		ProviderCallID:    call.ID,
		LastAttemptAt:     &attemptAt,
		IncrementAttempts: true,
	}); err != nil {
		return Call{}, fmt.Errorf("record provider call id: %w", err)
	}

	// Placeholder record so the call shows up in history before the
	// end-of-call webhook arrives.
	if _, err := t.records.Upsert(ctx, calls.CallRecord{
		ProviderCallID: call.ID,
		UserID:         userID,
		CallSessionID:  sessionID,
		Status:         "in-progress",
		Direction:      calls.DirectionOutbound,
		StartedAt:      attemptAt,
	}); err != nil {
		t.log.Warn("placeholder call record write failed",
			"provider_call_id", call.ID, "session_id", sessionID, "error", err)
	}

	return call, nil
}

func (t *Trigger) markFailed(ctx context.Context, sessionID string) {
	err := t.sessions.Transition(ctx, sessionID, session.StatusUpdate{Status: session.StatusFailed})
	if err != nil {
		t.log.Error("mark session failed", "session_id", sessionID, "error", err)
	}
}
