package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coaching-platform/internal/calls"
	"coaching-platform/internal/coaching"
	"coaching-platform/internal/notify"
	"coaching-platform/internal/session"
	"coaching-platform/internal/users"
)

// Reconciler turns provider webhook events back into session, record
// and coaching-table state.
//
// Correlation order for every event: session by provider call id
// first, then user by customer phone, then acknowledge-and-drop with a
// warning. The provider redelivers on non-2xx, so only genuinely
// unexpected failures may surface as errors; a failure writing a
// summary or domain row is logged and swallowed because the core call
// mutation has already happened and a redelivery would just duplicate
// it.
type Reconciler struct {
	sessions *session.Service
	users    users.Store
	records  calls.Store
	coaching *coaching.Service
	events   *notify.Publisher
	log      *slog.Logger
	clock    func() time.Time
}

func NewReconciler(
	sessions *session.Service,
	users users.Store,
	records calls.Store,
	coaching *coaching.Service,
	events *notify.Publisher,
	log *slog.Logger,
) *Reconciler {
	return &Reconciler{
		sessions: sessions,
		users:    users,
		records:  records,
		coaching: coaching,
		events:   events,
		log:      log,
		clock:    time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (r *Reconciler) WithClock(clock func() time.Time) *Reconciler {
	r.clock = clock
	return r
}

// HandleEndOfCall reconciles an end-of-call report. A nil return means
// the event was fully acknowledged, including the drop cases; a non-nil
// error means something unexpected broke and the caller should answer
// 5xx so the provider redelivers.
func (r *Reconciler) HandleEndOfCall(ctx context.Context, msg Message) error {
	providerCallID := ""
	if msg.Call != nil {
		providerCallID = msg.Call.ID
	}

	var (
		userID    string
		sessionID string
		callType  session.CallType
	)
	if providerCallID != "" {
		sess, found, err := r.sessions.FindByProviderCallID(ctx, providerCallID)
		if err != nil {
			return fmt.Errorf("lookup session by provider call id: %w", err)
		}
		if found {
			userID = sess.UserID
			sessionID = sess.ID
			callType = sess.Type
		}
	}
	if userID == "" {
		if phone := msg.CustomerNumber(); phone != "" {
			u, found, err := r.users.GetByPhone(ctx, phone)
			if err != nil {
				return fmt.Errorf("lookup user by phone: %w", err)
			}
			if found {
				userID = u.ID
			}
		}
	}
	if userID == "" {
		r.log.Warn("end-of-call report matched no session and no user, dropping",
			"provider_call_id", providerCallID)
		return nil
	}

	endedAt := msg.EndedAt
	if endedAt == nil {
		now := r.clock().UTC()
		endedAt = &now
	}
	missed := isNoAnswer(msg.EndedReason)

	if providerCallID != "" {
		rec := calls.CallRecord{
			ProviderCallID: providerCallID,
			UserID:         userID,
			CallSessionID:  sessionID,
			Status:         "completed",
			Direction:      directionOf(msg.Call),
			EndedAt:        endedAt,
			RecordingURL:   msg.RecordingURL,
			Transcript:     msg.Transcript,
			Summary:        summaryText(msg),
		}
		if missed {
			rec.Status = "missed"
		}
		if msg.StartedAt != nil {
			rec.StartedAt = *msg.StartedAt
			if d := endedAt.Sub(*msg.StartedAt); d > 0 {
				rec.DurationSeconds = int(d.Seconds())
			}
		}
		if _, err := r.records.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("upsert call record: %w", err)
		}
	}

	if sessionID != "" {
		status := session.StatusCompleted
		if missed {
			status = session.StatusMissed
		}
		err := r.sessions.Transition(ctx, sessionID, session.StatusUpdate{
			Status:        status,
			LastAttemptAt: endedAt,
		})
		if err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
	}

	// Summary and domain rows are best effort from here on.
	if msg.Analysis != nil && len(msg.Analysis.StructuredData) > 0 && callType != "" {
		summaryID, err := r.coaching.RecordSummary(ctx, coaching.CallSummary{
			UserID:        userID,
			CallSessionID: sessionID,
			CallType:      callType,
			Timestamp:     *endedAt,
			SummaryText:   summaryText(msg),
			ExtractedData: msg.Analysis.StructuredData,
		})
		if err != nil {
			r.log.Error("record call summary", "session_id", sessionID, "error", err)
		} else {
			r.log.Info("call summary recorded", "summary_id", summaryID, "call_type", callType)
		}
		r.applyExtracted(ctx, userID, callType, msg.Analysis.StructuredData, summaryText(msg))
	}

	if r.events != nil {
		_ = r.events.CallCompleted(ctx, notify.CallEvent{
			UserID:    userID,
			CallType:  string(callType),
			SessionID: sessionID,
		})
	}
	return nil
}

// HandleToolCalls persists partial structured data mid-call. Each tool
// call gets its own result so one failure does not block the rest of
// the batch.
func (r *Reconciler) HandleToolCalls(ctx context.Context, msg Message) []ToolResult {
	var (
		userID   string
		resolved bool
	)
	if msg.Call != nil && msg.Call.ID != "" {
		sess, found, err := r.sessions.FindByProviderCallID(ctx, msg.Call.ID)
		if err != nil {
			r.log.Error("lookup session for tool calls", "provider_call_id", msg.Call.ID, "error", err)
		} else if found {
			userID = sess.UserID
			resolved = true
		}
	}
	if !resolved {
		if phone := msg.CustomerNumber(); phone != "" {
			if u, found, err := r.users.GetByPhone(ctx, phone); err == nil && found {
				userID = u.ID
				resolved = true
			}
		}
	}

	results := make([]ToolResult, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		if !resolved {
			results = append(results, toolError(tc.ID, "no user for this call"))
			continue
		}
		ct, ok := callTypeForTool(tc.Function.Name)
		if !ok {
			r.log.Warn("unknown tool function", "name", tc.Function.Name)
			results = append(results, toolError(tc.ID, "unknown function "+tc.Function.Name))
			continue
		}
		err := r.applyExtracted(ctx, userID, ct, json.RawMessage(tc.Function.Arguments), "")
		if err != nil {
			results = append(results, toolError(tc.ID, err.Error()))
			continue
		}
		results = append(results, ToolResult{ToolCallID: tc.ID, Result: `{"success":true}`})
	}
	return results
}

// applyExtracted branches on call type and performs the natural-key
// upsert for the corresponding domain record. Errors are logged; the
// returned error exists so tool-call results can report them, end-of-
// call processing ignores it.
func (r *Reconciler) applyExtracted(ctx context.Context, userID string, ct session.CallType, raw json.RawMessage, notes string) error {
	var err error
	switch ct {
	case session.CallTypeOnboarding:
		err = r.applyOnboarding(ctx, userID, raw, notes)
	case session.CallTypeWeekly:
		err = r.applyWeekly(ctx, userID, raw)
	case session.CallTypeDaily:
		err = r.applyDaily(ctx, userID, raw)
	default:
		err = fmt.Errorf("no domain mapping for call type %q", ct)
	}
	if err != nil {
		r.log.Error("apply extracted data", "user_id", userID, "call_type", ct, "error", err)
	}
	return err
}

func (r *Reconciler) applyOnboarding(ctx context.Context, userID string, raw json.RawMessage, notes string) error {
	var d onboardingData
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("decode onboarding data: %w", err)
	}
	_, err := r.coaching.SaveVision(ctx, coaching.VisionProfile{
		UserID:                userID,
		VisionSummary:         d.VisionSummary,
		Motivations:           d.Motivations,
		CostOfInaction:        d.CostOfInaction,
		CommitmentDeclaration: d.CommitmentDeclaration,
		RawOnboardingNotes:    notes,
	})
	return err
}

func (r *Reconciler) applyWeekly(ctx context.Context, userID string, raw json.RawMessage) error {
	var d weeklyData
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("decode weekly data: %w", err)
	}
	_, err := r.coaching.SaveWeekly(ctx, coaching.WeeklyObjective{
		UserID:          userID,
		Objective:       d.Objective,
		Bottlenecks:     d.Bottlenecks,
		Actions:         d.Actions,
		StopList:        d.StopList,
		StartList:       d.StartList,
		ContinueList:    d.ContinueList,
		CommitmentLevel: d.CommitmentLevel,
	})
	if err != nil {
		return err
	}
	if d.Objective != "" {
		if _, err := r.coaching.LogCommitment(ctx, coaching.CommitmentLog{
			UserID: userID,
			Type:   "weekly",
			Text:   d.Objective,
		}); err != nil {
			r.log.Error("log weekly commitment", "user_id", userID, "error", err)
		}
	}
	return nil
}

func (r *Reconciler) applyDaily(ctx context.Context, userID string, raw json.RawMessage) error {
	var d dailyData
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("decode daily data: %w", err)
	}
	actions := make([]coaching.PlanAction, 0, len(d.Actions))
	for _, a := range d.Actions {
		actions = append(actions, coaching.PlanAction{Text: a.Text, Why: a.Why})
	}
	_, err := r.coaching.SaveDaily(ctx, coaching.DailyPlan{
		UserID:    userID,
		Actions:   actions,
		StartTime: d.StartTime,
	})
	if err != nil {
		return err
	}
	if d.StartTime != "" {
		if _, err := r.coaching.LogCommitment(ctx, coaching.CommitmentLog{
			UserID: userID,
			Type:   "daily",
			Text:   d.StartTime,
		}); err != nil {
			r.log.Error("log daily commitment", "user_id", userID, "error", err)
		}
	}
	return nil
}

func callTypeForTool(name string) (session.CallType, bool) {
	switch name {
	case "saveOnboardingData":
		return session.CallTypeOnboarding, true
	case "saveWeeklyData":
		return session.CallTypeWeekly, true
	case "saveDailyData":
		return session.CallTypeDaily, true
	}
	return "", false
}

func directionOf(c *CallInfo) calls.Direction {
	if c != nil && c.Type == "inboundPhoneCall" {
		return calls.DirectionInbound
	}
	return calls.DirectionOutbound
}

func summaryText(msg Message) string {
	if msg.Analysis != nil && msg.Analysis.Summary != "" {
		return msg.Analysis.Summary
	}
	return msg.Summary
}

func isNoAnswer(reason string) bool {
	reason = strings.ToLower(reason)
	return strings.Contains(reason, "no-answer") || strings.Contains(reason, "did-not-answer")
}

func toolError(id, msg string) ToolResult {
	b, _ := json.Marshal(map[string]any{"success": false, "error": msg})
	return ToolResult{ToolCallID: id, Result: string(b)}
}
