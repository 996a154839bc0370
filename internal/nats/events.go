package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/civic-report/report-assistant/internal/model"
	"github.com/civic-report/report-assistant/pkg/metrics"
)

const (
	// StreamName is the name of the dialogue events stream.
	StreamName = "DIALOGUE"

	// SubjectPrefix is the prefix for all dialogue event subjects.
	SubjectPrefix = "report"
)

// publisher is the subset of jetstream.JetStream used to publish.
type publisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventPublisher publishes draft lifecycle events to JetStream.
type EventPublisher struct {
	js publisher
}

// NewEventPublisher creates an EventPublisher on client's JetStream context.
func NewEventPublisher(client *Client) *EventPublisher {
	return &EventPublisher{js: client.JetStream()}
}

// EnsureStream creates the dialogue events stream if it does not exist.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Duplicates:  2 * time.Minute,
		Description: "Report draft lifecycle events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// EventSubject returns the subject for an owner's event.
func EventSubject(ownerID string, eventType model.EventType) string {
	return fmt.Sprintf("%s.%s.event.%s", SubjectPrefix, subjectToken(ownerID), eventType)
}

// subjectToken replaces characters that have meaning in NATS subjects.
func subjectToken(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, s)
}

// Publish publishes event. The event ID is used for JetStream deduplication.
func (p *EventPublisher) Publish(ctx context.Context, event *model.DialogueEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = p.js.Publish(ctx, EventSubject(event.OwnerID, event.Type), data, jetstream.WithMsgID(event.ID))
	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to publish event: %w", err)
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type), "success").Inc()
	return nil
}
