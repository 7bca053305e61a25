package reporting

import (
	"context"
	"errors"
	"time"

	"coaching-platform/internal/calls"
	"coaching-platform/internal/session"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// Implementations must scope every read by user id and should query
// the immutable sources (call records, the append-only session
// history).
type Repository interface {
	ListCallRecords(ctx context.Context, userID string, from, to time.Time) ([]calls.CallRecord, error)
	ListSessions(ctx context.Context, userID string, from, to time.Time) ([]session.CallSession, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.UserID == "" {
		return CallsSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CallsSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return CallsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListCallRecords(ctx, req.UserID, req.Range.From, req.Range.To)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{UserID: req.UserID}
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		if c.RecordingURL != "" {
			out.RecordedCalls++
		}
		switch c.Status {
		case "completed":
			out.CompletedCalls++
		case "missed":
			out.MissedCalls++
		case "in-progress":
			out.InProgressCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}

func (s *Service) Attendance(ctx context.Context, req AttendanceRequest) (AttendanceSummary, error) {
	if req.UserID == "" {
		return AttendanceSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return AttendanceSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return AttendanceSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListSessions(ctx, req.UserID, req.Range.From, req.Range.To)
	if err != nil {
		return AttendanceSummary{}, err
	}

	out := AttendanceSummary{UserID: req.UserID, CallType: req.CallType}
	terminal := 0
	for _, sess := range rows {
		if req.CallType != "" && string(sess.Type) != req.CallType {
			continue
		}
		out.TotalSessions++
		switch sess.Status {
		case session.StatusCompleted:
			out.CompletedSessions++
			terminal++
		case session.StatusMissed:
			out.MissedSessions++
			terminal++
		case session.StatusFailed:
			out.FailedSessions++
			terminal++
		default:
			out.PendingSessions++
		}
	}
	if terminal > 0 {
		out.AttendanceRate = float64(out.CompletedSessions) / float64(terminal)
	}
	return out, nil
}
