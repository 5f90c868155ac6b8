// Package audit emits subset lifecycle events to Kafka. Publishing is
// fail-open: an unreachable broker is logged and the business operation
// proceeds, because the store remains the system of record.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Topic carries every subset lifecycle event.
const Topic = "subsets.lifecycle"

// Action names a lifecycle transition.
type Action string

const (
	ActionSeriesCreated    Action = "series_created"
	ActionSeriesUpdated    Action = "series_updated"
	ActionVersionCreated   Action = "version_created"
	ActionVersionPublished Action = "version_published"
	ActionVersionUpdated   Action = "version_updated"
	ActionVersionDeleted   Action = "version_deleted"
)

// Event is one audit record. SeriesID keys the Kafka record so events for
// one series stay ordered.
type Event struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	SeriesID  string    `json:"seriesId"`
	VersionID string    `json:"versionId,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the interface services depend on. A nil *KafkaPublisher is a
// valid no-op publisher, mirroring how the Redis client disables itself when
// unconfigured.
type Publisher interface {
	Emit(ctx context.Context, event Event)
	Close()
}

// KafkaPublisher writes events with an async produce; delivery failures are
// logged, never returned.
type KafkaPublisher struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafkaPublisher connects to the brokers and ensures the topic exists.
// Returns nil (disabled publisher) when brokers is empty.
func NewKafkaPublisher(ctx context.Context, brokers []string, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(Topic),
	)
	if err != nil {
		return nil, err
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, Topic); err != nil {
		// Already-exists is the steady state; anything else is logged and
		// tolerated, the broker may auto-create on first produce.
		logger.WarnContext(ctx, "audit topic creation", "topic", Topic, "error", err.Error())
	}

	return &KafkaPublisher{client: client, logger: logger}, nil
}

// Emit publishes one event. Safe on a nil receiver.
func (p *KafkaPublisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "encode audit event", "action", event.Action, "error", err.Error())
		return
	}

	record := &kgo.Record{
		Key:   []byte(event.SeriesID),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("audit event delivery failed",
				"action", string(event.Action),
				"series_id", event.SeriesID,
				"error", err.Error(),
			)
		}
	})
}

// Close flushes buffered records and releases the client. Safe on nil.
func (p *KafkaPublisher) Close() {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.client.Flush(ctx)
	p.client.Close()
}
