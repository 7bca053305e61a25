// Package notify publishes domain events to RabbitMQ for downstream
// consumers (SMS/push senders, analytics). Publishing is best effort:
// errors are logged and returned so callers can ignore failures
// without interrupting the main request flow.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QueueCallScheduled = "call.scheduled"
	QueueCallCompleted = "call.completed"
)

// CallEvent is the payload for both call queues.
type CallEvent struct {
	UserID       string    `json:"user_id"`
	CallType     string    `json:"call_type"`
	SessionID    string    `json:"session_id,omitempty"`
	ScheduledFor time.Time `json:"scheduled_for,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher holds a broker connection. A nil Publisher is valid and
// drops every event, so wiring stays unconditional even when the
// broker is not configured.
type Publisher struct {
	conn *amqp.Connection
	log  *slog.Logger
}

// Dial connects to the broker. An empty url returns a nil publisher.
func Dial(url string, log *slog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, log: log}, nil
}

func (p *Publisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Close()
}

// CallScheduled announces a session created by the scheduler.
func (p *Publisher) CallScheduled(ctx context.Context, ev CallEvent) error {
	return p.publish(ctx, QueueCallScheduled, ev)
}

// CallCompleted announces a reconciled end-of-call report.
func (p *Publisher) CallCompleted(ctx context.Context, ev CallEvent) error {
	return p.publish(ctx, QueueCallCompleted, ev)
}

func (p *Publisher) publish(ctx context.Context, queue string, ev CallEvent) error {
	if p == nil || p.conn == nil {
		return nil
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	ch, err := p.conn.Channel()
	if err != nil {
		p.log.Warn("amqp channel open failed", "queue", queue, "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare. Durable so events survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.log.Warn("amqp queue declare failed", "queue", queue, "error", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.log.Warn("amqp publish failed", "queue", queue, "error", err)
	}
	return err
}
