package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	calls []string
	errs  []error
}

func (r *recordingObserver) ObservePublish(eventType string, err error) {
	r.calls = append(r.calls, eventType)
	r.errs = append(r.errs, err)
}

func TestNewEvent_StampsEnvelope(t *testing.T) {
	e := NewEvent(PollCreated, map[string]interface{}{"poll_id": 1})
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "darab-cms", e.Source)
	assert.Equal(t, "1.0", e.Version)
	assert.WithinDuration(t, time.Now(), e.Timestamp, time.Second)
}

func TestWatermillPublisher_PublishesToPrefixedTopic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	channel := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1}, watermill.NopLogger{})
	defer channel.Close()

	observer := &recordingObserver{}
	pub := newWatermillPublisher(channel, PublisherConfig{TopicPrefix: "darab-cms", Observer: observer}, logger)

	messages, err := channel.Subscribe(context.Background(), "darab-cms.poll.response_submitted")
	require.NoError(t, err)

	event := NewEvent(PollResponseSubmitted, map[string]interface{}{"poll_id": float64(4)})
	require.NoError(t, pub.Publish(context.Background(), event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, string(PollResponseSubmitted), msg.Metadata.Get("event_type"))

		var decoded Event
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, float64(4), decoded.Data["poll_id"])
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}

	assert.Equal(t, []string{"poll.response_submitted"}, observer.calls)
	assert.Nil(t, observer.errs[0])
}

func TestMockEventPublisher(t *testing.T) {
	mock := NewMockEventPublisher(nil)
	ctx := context.Background()

	require.NoError(t, mock.Publish(ctx, NewEvent(TicketCreated, nil)))
	require.NoError(t, mock.Publish(ctx, NewEvent(TicketReplied, nil)))
	assert.Len(t, mock.GetPublishedEvents(), 2)
	assert.Len(t, mock.EventsOfType(TicketReplied), 1)

	mock.FailWith(errors.New("down"))
	assert.Error(t, mock.Publish(ctx, NewEvent(TicketCreated, nil)))

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
}
