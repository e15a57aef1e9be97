package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/validator"
)

func TestSimplePollService_Create(t *testing.T) {
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(nil)
	svc := NewSimplePollService(repo, publisher, testLogger(), testValidator())

	polls, err := svc.Create(context.Background(), []models.SimplePollRequest{
		{
			Qustion: "ارزیابی عملکرد",
			Answers: []models.SimplePollAnswer{
				{QuestionID: "tq1", QuestionTitle: "Delivery", Importance: "high", Performance: "good"},
			},
			SupplierType: ptr("main"),
		},
		{
			Question:  "Second form",
			Answers:   []models.SimplePollAnswer{{QuestionID: "tq2", CompanyStatus: "better"}},
			SessionID: ptr("explicit"),
		},
	}, models.SessionInfo{SessionID: "cookie", IPAddress: "10.1.1.1"})
	require.NoError(t, err)
	require.Len(t, polls, 2)

	assert.Equal(t, "ارزیابی عملکرد", polls[0].Question)
	assert.Equal(t, "cookie", *polls[0].SessionID)
	assert.Equal(t, "10.1.1.1", *polls[0].IPAddress)
	assert.Nil(t, polls[0].UserAgent)
	assert.Equal(t, "explicit", *polls[1].SessionID)
	assert.NotZero(t, polls[1].ID)

	assert.Len(t, publisher.EventsOfType(events.SimplePollSubmitted), 2)
}

func TestSimplePollService_CreateValidates(t *testing.T) {
	svc := NewSimplePollService(newFakeRepository(), nil, testLogger(), testValidator())

	tests := []struct {
		name string
		reqs []models.SimplePollRequest
	}{
		{"empty body", nil},
		{"missing question", []models.SimplePollRequest{{Answers: []models.SimplePollAnswer{{QuestionID: "tq1"}}}}},
		{"missing answers", []models.SimplePollRequest{{Question: "q"}}},
		{"bad email", []models.SimplePollRequest{{Question: "q", Answers: []models.SimplePollAnswer{{QuestionID: "tq1"}}, RespondentEmail: ptr("nope")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.reqs, models.SessionInfo{})
			var verrs validator.ValidationErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestSimplePollService_Statistics(t *testing.T) {
	repo := newFakeRepository()
	svc := NewSimplePollService(repo, nil, testLogger(), testValidator())

	_, err := svc.Create(context.Background(), []models.SimplePollRequest{
		{Question: "a", Answers: []models.SimplePollAnswer{
			{QuestionID: "tq1", QuestionTitle: "Delivery", Importance: "high", Performance: "good"},
			{QuestionID: "tq2", QuestionTitle: "Pricing", CompanyStatus: "worse"},
		}},
		{Question: "b", Answers: []models.SimplePollAnswer{
			{QuestionID: "tq1", QuestionTitle: "Delivery", Importance: "high", CompetitorComparison: "similar"},
		}},
	}, models.SessionInfo{})
	require.NoError(t, err)

	stats, err := svc.Statistics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalResponses)
	require.Contains(t, stats.QuestionStats, "tq1")
	tq1 := stats.QuestionStats["tq1"]
	assert.Equal(t, "Delivery", tq1.QuestionTitle)
	assert.Equal(t, map[string]int{"high": 2}, tq1.Importance)
	assert.Equal(t, map[string]int{"good": 1}, tq1.Performance)
	assert.Equal(t, map[string]int{"similar": 1}, tq1.CompetitorComparison)
	assert.Empty(t, tq1.CompanyStatus)
	assert.Equal(t, map[string]int{"worse": 1}, stats.QuestionStats["tq2"].CompanyStatus)
}

func TestSimplePollService_Delete(t *testing.T) {
	repo := newFakeRepository()
	svc := NewSimplePollService(repo, nil, testLogger(), testValidator())

	polls, err := svc.Create(context.Background(), []models.SimplePollRequest{
		{Question: "q", Answers: []models.SimplePollAnswer{{QuestionID: "tq1"}}},
	}, models.SessionInfo{})
	require.NoError(t, err)
	id := polls[0].ID

	assert.ErrorIs(t, svc.Delete(context.Background(), id, testOwner), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), id, testAdmin))

	_, err = svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrSimplePollNotFound)
}
