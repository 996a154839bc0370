package nats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civic-report/report-assistant/internal/model"
)

type fakeJetStream struct {
	subject string
	payload []byte
	err     error
}

func (f *fakeJetStream) Publish(_ context.Context, subject string, payload []byte, _ ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.subject = subject
	f.payload = payload
	if f.err != nil {
		return nil, f.err
	}
	return &jetstream.PubAck{Stream: StreamName, Sequence: 1}, nil
}

func TestEventSubject(t *testing.T) {
	assert.Equal(t, "report.u1.event.draft_opened", EventSubject("u1", model.EventTypeDraftOpened))
	assert.Equal(t, "report.a_b_c_.event.draft_cancelled", EventSubject("a.b*c>", model.EventTypeDraftCancelled))
	assert.Equal(t, "report._.event.report_failed", EventSubject("", model.EventTypeReportFailed))
}

func TestEventPublisherPublish(t *testing.T) {
	js := &fakeJetStream{}
	p := &EventPublisher{js: js}

	err := p.Publish(context.Background(), &model.DialogueEvent{
		ID:      "ev-1",
		OwnerID: "u1",
		DraftID: "d-1",
		Type:    model.EventTypeDraftConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, "report.u1.event.draft_confirmed", js.subject)

	var got model.DialogueEvent
	require.NoError(t, json.Unmarshal(js.payload, &got))
	assert.Equal(t, "d-1", got.DraftID)
}

func TestEventPublisherError(t *testing.T) {
	p := &EventPublisher{js: &fakeJetStream{err: errors.New("no responders")}}
	err := p.Publish(context.Background(), &model.DialogueEvent{ID: "ev-1", OwnerID: "u1", Type: model.EventTypeDraftOpened})
	assert.ErrorContains(t, err, "no responders")
}
