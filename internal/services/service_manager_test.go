package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
)

// stalledBroker never acknowledges a publish until released
type stalledBroker struct {
	release chan struct{}
	inner   *events.MockEventPublisher
}

func (b *stalledBroker) Publish(ctx context.Context, event *events.Event) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.inner.Publish(ctx, event)
}

func (b *stalledBroker) Close() error { return nil }

func TestServiceManager_StalledBrokerDoesNotBlockRequests(t *testing.T) {
	broker := &stalledBroker{release: make(chan struct{}), inner: events.NewMockEventPublisher(nil)}
	sm := NewServiceManager(Dependencies{
		Repo:      newFakeRepository(),
		Logger:    testLogger(),
		Validator: testValidator(),
		Publisher: broker,
	})
	require.NoError(t, sm.Initialize(context.Background()))

	ctx := context.Background()
	start := time.Now()

	poll, err := sm.Poll().Create(ctx, satisfactionPollRequest(nil), testOwner)
	require.NoError(t, err)

	_, err = sm.Poll().SubmitResponse(ctx, poll.ID, &models.SubmitResponseRequest{
		Answers: []models.AnswerInput{{QuestionID: poll.Questions[0].ID, RatingValue: ptr(5)}},
	}, nil, session("s-stalled"))
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, broker.inner.GetPublishedEvents())

	close(broker.release)
	assert.Eventually(t, func() bool {
		return len(broker.inner.EventsOfType(events.PollResponseSubmitted)) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, sm.Shutdown(ctx))
	assert.Len(t, broker.inner.EventsOfType(events.PollCreated), 1)
}
