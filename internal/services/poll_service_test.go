package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/validator"
)

type countingObserver struct {
	byType map[string]int
}

func (o *countingObserver) ObservePollResponse(pollType string) {
	if o.byType == nil {
		o.byType = map[string]int{}
	}
	o.byType[pollType]++
}

func newTestPollService(repo *fakeRepository) (*pollService, *events.MockEventPublisher, *countingObserver) {
	publisher := events.NewMockEventPublisher(nil)
	observer := &countingObserver{}
	svc := NewPollService(repo, nil, publisher, observer, testLogger(), testValidator()).(*pollService)
	return svc, publisher, observer
}

func satisfactionPollRequest(mutate func(*models.PollCreateRequest)) *models.PollCreateRequest {
	req := &models.PollCreateRequest{
		Title:  "Customer satisfaction",
		Status: models.PollStatusActive,
		Questions: []models.PollQuestionRequest{
			{
				Question:     "How satisfied are you?",
				Type:         models.QuestionRating,
				RatingConfig: &models.RatingConfig{Min: ptr(1), Max: ptr(5)},
			},
			{
				Question: "Preferred product",
				Type:     models.QuestionSingleChoice,
				Required: ptr(false),
				Options: []models.QuestionOption{
					{Value: "cement", Label: "Cement"},
					{Value: "concrete", Label: "Concrete"},
				},
			},
			{
				Question: "Comments",
				Type:     models.QuestionTextarea,
				Required: ptr(false),
			},
		},
	}
	if mutate != nil {
		mutate(req)
	}
	return req
}

func createPoll(t *testing.T, svc *pollService, mutate func(*models.PollCreateRequest)) *models.Poll {
	t.Helper()
	poll, err := svc.Create(context.Background(), satisfactionPollRequest(mutate), testOwner)
	require.NoError(t, err)
	return poll
}

func ratingAnswer(poll *models.Poll, rating int) *models.SubmitResponseRequest {
	return &models.SubmitResponseRequest{
		Answers: []models.AnswerInput{{QuestionID: poll.Questions[0].ID, RatingValue: ptr(rating)}},
	}
}

func session(id string) models.SessionInfo {
	return models.SessionInfo{SessionID: id, IPAddress: "10.0.0.1", UserAgent: "test-agent"}
}

func TestPollService_CreateAppliesDefaults(t *testing.T) {
	svc, publisher, _ := newTestPollService(newFakeRepository())

	poll, err := svc.Create(context.Background(), &models.PollCreateRequest{
		Title: "Defaults",
		Questions: []models.PollQuestionRequest{
			{Question: "Do you buy bulk cement?", Type: models.QuestionYesNo},
			{Question: "Anything else?", Type: models.QuestionText, Required: ptr(false), Order: ptr(7)},
		},
	}, testOwner)
	require.NoError(t, err)

	assert.Equal(t, models.PollTypeSurvey, poll.Type)
	assert.Equal(t, models.PollStatusDraft, poll.Status)
	assert.True(t, poll.AllowAnonymous)
	assert.True(t, poll.ShowResults)
	assert.False(t, poll.RequiresAuth)
	assert.Equal(t, testOwner.ID, poll.OwnerID())

	require.Len(t, poll.Questions, 2)
	yesNo := poll.Questions[0]
	assert.True(t, yesNo.Required)
	assert.Equal(t, 0, yesNo.Order)
	assert.Equal(t, models.DefaultYesNoOptions, yesNo.Options())
	assert.Equal(t, 7, poll.Questions[1].Order)
	assert.False(t, poll.Questions[1].Required)

	assert.Len(t, publisher.EventsOfType(events.PollCreated), 1)
}

func TestPollService_CreateRequiresActor(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())

	_, err := svc.Create(context.Background(), satisfactionPollRequest(nil), nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPollService_CreateRejectsInvalidQuestions(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())

	_, err := svc.Create(context.Background(), satisfactionPollRequest(func(r *models.PollCreateRequest) {
		r.Questions = append(r.Questions, models.PollQuestionRequest{Question: "Pick one", Type: models.QuestionSingleChoice})
	}), testOwner)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "questions[3].options", verrs[0].Field)
}

func TestPollService_SubmitResponse(t *testing.T) {
	repo := newFakeRepository()
	svc, publisher, observer := newTestPollService(repo)
	poll := createPoll(t, svc, nil)

	resp, err := svc.SubmitResponse(context.Background(), poll.ID, &models.SubmitResponseRequest{
		Answers: []models.AnswerInput{
			{QuestionID: poll.Questions[0].ID, RatingValue: ptr(4)},
			{QuestionID: poll.Questions[1].ID, SelectedOptions: []string{"cement"}},
			{QuestionID: poll.Questions[2].ID, Value: []byte(`"Fast delivery"`)},
		},
		RespondentCompany: ptr("Fars Build"),
	}, nil, session("s-1"))
	require.NoError(t, err)

	assert.Equal(t, models.ResponseCompleted, resp.Status)
	assert.Equal(t, 100, resp.ProgressPercentage)
	require.NotNil(t, resp.CompletedAt)
	assert.Equal(t, "s-1", *resp.SessionID)
	assert.Equal(t, "10.0.0.1", *resp.IPAddress)
	assert.Equal(t, "Fars Build", *resp.RespondentCompany)
	require.Len(t, resp.Answers, 3)
	assert.Equal(t, 4, *resp.Answers[0].RatingValue)
	assert.Equal(t, []string{"cement"}, []string(resp.Answers[1].SelectedOptions))
	assert.Equal(t, "Fast delivery", *resp.Answers[2].TextValue)

	stored, err := svc.getPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ResponseCount)
	assert.Equal(t, 1, stored.ViewCount)

	assert.Len(t, publisher.EventsOfType(events.PollResponseSubmitted), 1)
	assert.Equal(t, 1, observer.byType[string(models.PollTypeSurvey)])
}

func TestPollService_ResponseCountMatchesSubmissions(t *testing.T) {
	repo := newFakeRepository()
	svc, _, _ := newTestPollService(repo)
	poll := createPoll(t, svc, nil)

	const n = 5
	for i := 0; i < n; i++ {
		_, err := svc.SubmitResponse(context.Background(), poll.ID, ratingAnswer(poll, 3), nil, session(fmt.Sprintf("s-%d", i)))
		require.NoError(t, err)
	}

	stored, err := svc.getPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, n, stored.ResponseCount)

	completed, err := repo.PollResponse().ListCompleted(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Len(t, completed, n)
}

func TestPollService_SubmitResponseDeduplicates(t *testing.T) {
	tests := []struct {
		name     string
		multiple bool
		actor    *models.User
		sessions [2]string
		wantErr  error
	}{
		{name: "same anonymous session", sessions: [2]string{"s-1", "s-1"}, wantErr: ErrAlreadyResponded},
		{name: "different anonymous sessions", sessions: [2]string{"s-1", "s-2"}},
		{name: "same user on two sessions", actor: testOther, sessions: [2]string{"s-1", "s-2"}, wantErr: ErrAlreadyResponded},
		{name: "multiple submissions allowed", multiple: true, sessions: [2]string{"s-1", "s-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestPollService(newFakeRepository())
			poll := createPoll(t, svc, func(r *models.PollCreateRequest) {
				r.AllowMultipleSubmissions = ptr(tt.multiple)
			})

			_, err := svc.SubmitResponse(context.Background(), poll.ID, ratingAnswer(poll, 5), tt.actor, session(tt.sessions[0]))
			require.NoError(t, err)

			_, err = svc.SubmitResponse(context.Background(), poll.ID, ratingAnswer(poll, 5), tt.actor, session(tt.sessions[1]))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrBadRequest)
		})
	}
}

func TestPollService_SubmitResponseRequiresOpenPoll(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*models.PollCreateRequest)
		actor   *models.User
		wantErr error
	}{
		{
			name:    "draft",
			mutate:  func(r *models.PollCreateRequest) { r.Status = models.PollStatusDraft },
			wantErr: ErrPollNotActive,
		},
		{
			name:    "closed",
			mutate:  func(r *models.PollCreateRequest) { r.Status = models.PollStatusClosed },
			wantErr: ErrPollNotActive,
		},
		{
			name:    "not started",
			mutate:  func(r *models.PollCreateRequest) { r.StartDate = ptr(now.Add(time.Hour)) },
			wantErr: ErrPollNotStarted,
		},
		{
			name:    "ended",
			mutate:  func(r *models.PollCreateRequest) { r.EndDate = ptr(now.Add(-time.Hour)) },
			wantErr: ErrPollEnded,
		},
		{
			name:    "anonymous on authenticated poll",
			mutate:  func(r *models.PollCreateRequest) { r.RequiresAuth = ptr(true) },
			wantErr: ErrForbidden,
		},
		{
			name:   "signed in on authenticated poll",
			mutate: func(r *models.PollCreateRequest) { r.RequiresAuth = ptr(true) },
			actor:  testOther,
		},
		{
			name: "inside window",
			mutate: func(r *models.PollCreateRequest) {
				r.StartDate = ptr(now.Add(-time.Hour))
				r.EndDate = ptr(now.Add(time.Hour))
			},
		},
		{
			name:   "at start instant",
			mutate: func(r *models.PollCreateRequest) { r.StartDate = ptr(now) },
		},
		{
			name:   "at end instant",
			mutate: func(r *models.PollCreateRequest) { r.EndDate = ptr(now) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestPollService(newFakeRepository())
			svc.now = func() time.Time { return now }
			poll := createPoll(t, svc, tt.mutate)

			_, err := svc.SubmitResponse(context.Background(), poll.ID, ratingAnswer(poll, 2), tt.actor, session("s-1"))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPollService_SubmitResponseValidatesAnswers(t *testing.T) {
	repo := newFakeRepository()
	svc, _, _ := newTestPollService(repo)
	poll := createPoll(t, svc, nil)
	other := createPoll(t, svc, nil)

	t.Run("missing required answer", func(t *testing.T) {
		_, err := svc.SubmitResponse(context.Background(), poll.ID, &models.SubmitResponseRequest{
			Answers: []models.AnswerInput{{QuestionID: poll.Questions[1].ID, SelectedOptions: []string{"cement"}}},
		}, nil, session("s-missing"))

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 1)
		assert.Equal(t, "required_answer", verrs[0].Rule)
	})

	t.Run("rating out of range", func(t *testing.T) {
		_, err := svc.SubmitResponse(context.Background(), poll.ID, ratingAnswer(poll, 6), nil, session("s-range"))

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "answer_range", verrs[0].Rule)
	})

	t.Run("unknown option", func(t *testing.T) {
		_, err := svc.SubmitResponse(context.Background(), poll.ID, &models.SubmitResponseRequest{
			Answers: []models.AnswerInput{
				{QuestionID: poll.Questions[0].ID, RatingValue: ptr(3)},
				{QuestionID: poll.Questions[1].ID, SelectedOptions: []string{"asphalt"}},
			},
		}, nil, session("s-option"))

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "answer_option", verrs[0].Rule)
	})

	t.Run("question of another poll", func(t *testing.T) {
		_, err := svc.SubmitResponse(context.Background(), poll.ID, ratingAnswer(other, 3), nil, session("s-foreign"))
		assert.ErrorIs(t, err, ErrQuestionNotInPoll)
	})

	stored, err := svc.getPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.ResponseCount)
}

func TestPollService_GetStatistics(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, nil)

	for i, rating := range []int{3, 4, 5} {
		_, err := svc.SubmitResponse(context.Background(), poll.ID, &models.SubmitResponseRequest{
			Answers: []models.AnswerInput{
				{QuestionID: poll.Questions[0].ID, RatingValue: ptr(rating)},
				{QuestionID: poll.Questions[1].ID, SelectedOptions: []string{"cement"}},
			},
		}, nil, session(fmt.Sprintf("s-%d", i)))
		require.NoError(t, err)
	}

	stats, err := svc.GetStatistics(context.Background(), poll.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalResponses)
	assert.Equal(t, 3, stats.ViewCount)
	assert.Equal(t, 100.0, stats.ResponseRate)
	require.Len(t, stats.Questions, 3)

	// Without redis the result still round-trips through JSON
	rating, ok := stats.Questions[0].Answers.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 4.0, rating["average"])
	assert.Equal(t, map[string]interface{}{"3": 1.0, "4": 1.0, "5": 1.0}, rating["distribution"])

	choices, ok := stats.Questions[1].Answers.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 3.0, choices["cement"])
	assert.Equal(t, 0, stats.Questions[2].TotalAnswers)
}

func TestPollService_GetStatisticsHiddenResults(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, func(r *models.PollCreateRequest) { r.ShowResults = ptr(false) })

	_, err := svc.GetStatistics(context.Background(), poll.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBuildStatistics(t *testing.T) {
	poll := &models.Poll{
		ID:        1,
		Title:     "Quality",
		ViewCount: 8,
		Questions: []models.PollQuestion{
			{ID: 12, Question: "Matrix", Type: models.QuestionMatrix, Order: 2},
			{ID: 10, Question: "Rating", Type: models.QuestionRating, Order: 0},
			{ID: 11, Question: "Text", Type: models.QuestionText, Order: 1},
		},
	}
	responses := []models.PollResponse{
		{Answers: []models.PollAnswer{
			{QuestionID: 10, RatingValue: ptr(3)},
			{QuestionID: 11, TextValue: ptr("good")},
			{QuestionID: 12, MatrixValue: map[string]string{"tq1": "high"}},
		}},
		{Answers: []models.PollAnswer{
			{QuestionID: 10, RatingValue: ptr(4)},
			{QuestionID: 11, TextValue: ptr("  ")},
			{QuestionID: 12, MatrixValue: map[string]string{"tq1": "high", "tq2": "low"}},
		}},
		{Answers: []models.PollAnswer{{QuestionID: 10, RatingValue: ptr(5)}}},
	}

	stats := buildStatistics(poll, responses)

	assert.Equal(t, 37.5, stats.ResponseRate)
	require.Len(t, stats.Questions, 3)
	assert.Equal(t, []uint{10, 11, 12}, []uint{stats.Questions[0].ID, stats.Questions[1].ID, stats.Questions[2].ID})

	assert.Equal(t, models.RatingStatistics{
		Average:      4,
		Distribution: map[string]int{"3": 1, "4": 1, "5": 1},
	}, stats.Questions[0].Answers)
	assert.Equal(t, models.TextStatistics{Responses: []string{"good"}}, stats.Questions[1].Answers)
	assert.Equal(t, map[string]map[string]int{
		"tq1": {"high": 2},
		"tq2": {"low": 1},
	}, stats.Questions[2].Answers)
}

func TestResponseRate(t *testing.T) {
	assert.Zero(t, responseRate(3, 0))
	assert.Equal(t, 33.33, responseRate(1, 3))
	assert.Equal(t, 150.0, responseRate(3, 2))
}

func TestPollService_Clone(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	original := createPoll(t, svc, func(r *models.PollCreateRequest) {
		r.Metadata = map[string]any{"campaign": "spring"}
		r.ShowResults = ptr(false)
	})

	clone, err := svc.Clone(context.Background(), original.ID, testOther)
	require.NoError(t, err)

	assert.NotEqual(t, original.ID, clone.ID)
	assert.Equal(t, "Customer satisfaction (Copy)", clone.Title)
	assert.Equal(t, models.PollStatusDraft, clone.Status)
	assert.Equal(t, testOther.ID, clone.OwnerID())
	assert.False(t, clone.ShowResults)
	assert.Equal(t, "spring", clone.Metadata["campaign"])
	assert.Zero(t, clone.ResponseCount)

	require.Len(t, clone.Questions, len(original.Questions))
	for i := range clone.Questions {
		assert.NotEqual(t, original.Questions[i].ID, clone.Questions[i].ID)
		assert.Equal(t, clone.ID, clone.Questions[i].PollID)
		assert.Equal(t, original.Questions[i].Question, clone.Questions[i].Question)
		assert.Equal(t, original.Questions[i].Config.Data(), clone.Questions[i].Config.Data())
	}

	unchanged, err := svc.getPoll(context.Background(), original.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatusActive, unchanged.Status)
	assert.Len(t, unchanged.Questions, 3)
}

func TestPollService_Update(t *testing.T) {
	svc, publisher, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, nil)

	_, err := svc.Update(context.Background(), poll.ID, &models.PollUpdateRequest{Title: ptr("Hijacked")}, testOther)
	assert.ErrorIs(t, err, ErrForbidden)

	closed := models.PollStatusClosed
	updated, err := svc.Update(context.Background(), poll.ID, &models.PollUpdateRequest{
		Title:  ptr("Renamed"),
		Status: &closed,
		Questions: []models.PollQuestionRequest{
			{Question: "Would you recommend us?", Type: models.QuestionYesNo},
		},
	}, testOwner)
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.PollStatusClosed, updated.Status)
	require.Len(t, updated.Questions, 1)
	assert.Equal(t, models.QuestionYesNo, updated.Questions[0].Type)
	assert.Len(t, publisher.EventsOfType(events.PollStatusChanged), 1)

	_, err = svc.Update(context.Background(), poll.ID, &models.PollUpdateRequest{Description: ptr("by admin")}, testAdmin)
	assert.NoError(t, err)
}

func TestPollService_UpdateRejectsInvertedWindow(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	poll := createPoll(t, svc, func(r *models.PollCreateRequest) { r.StartDate = &start })

	_, err := svc.Update(context.Background(), poll.ID, &models.PollUpdateRequest{EndDate: ptr(start.Add(-24 * time.Hour))}, testOwner)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "poll_window", verrs[0].Rule)
}

func TestPollService_UpdateStatusAndDelete(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, func(r *models.PollCreateRequest) { r.Status = models.PollStatusDraft })

	_, err := svc.UpdateStatus(context.Background(), poll.ID, "archived", testOwner)
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	active, err := svc.UpdateStatus(context.Background(), poll.ID, models.PollStatusActive, testOwner)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatusActive, active.Status)

	assert.ErrorIs(t, svc.Delete(context.Background(), poll.ID, testOther), ErrForbidden)
	require.NoError(t, svc.Delete(context.Background(), poll.ID, testOwner))

	_, err = svc.View(context.Background(), poll.ID)
	assert.ErrorIs(t, err, ErrPollNotFound)
}

func TestPollService_ListActive(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	open := createPoll(t, svc, nil)
	createPoll(t, svc, func(r *models.PollCreateRequest) { r.Status = models.PollStatusDraft })
	createPoll(t, svc, func(r *models.PollCreateRequest) { r.EndDate = ptr(now.Add(-time.Minute)) })

	polls, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Equal(t, open.ID, polls[0].ID)

	mine, err := svc.ListMine(context.Background(), testOwner)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	_, err = svc.ListMine(context.Background(), nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPollService_PreviewDoesNotCountViews(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, nil)

	preview, err := svc.Preview(context.Background(), poll.ID)
	require.NoError(t, err)
	require.Len(t, preview.Questions, 3)
	assert.Equal(t, 5, *preview.Questions[0].RatingConfig.Max)
	assert.Len(t, preview.Questions[1].Options, 2)

	viewed, err := svc.View(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, viewed.ViewCount)
}

func TestPollService_GetResponseAccess(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, nil)

	resp, err := svc.SubmitResponse(context.Background(), poll.ID, ratingAnswer(poll, 4), testOther, session("s-1"))
	require.NoError(t, err)

	for _, actor := range []*models.User{testOwner, testOther, testAdmin} {
		got, err := svc.GetResponse(context.Background(), resp.ID, actor)
		require.NoError(t, err)
		assert.Equal(t, resp.ID, got.ID)
	}

	stranger := &models.User{ID: 2000, Role: models.RoleUser}
	_, err = svc.GetResponse(context.Background(), resp.ID, stranger)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetResponses(context.Background(), poll.ID, testOther)
	assert.ErrorIs(t, err, ErrForbidden)

	responses, err := svc.GetResponses(context.Background(), poll.ID, testOwner)
	require.NoError(t, err)
	assert.Len(t, responses, 1)

	_, err = svc.GetResponse(context.Background(), 9999, testAdmin)
	assert.ErrorIs(t, err, ErrResponseNotFound)
}

func TestPollService_BulkAction(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, func(r *models.PollCreateRequest) { r.Status = models.PollStatusDraft })

	req := &models.BulkActionRequest{Action: models.BulkActivate, PollIDs: []uint{poll.ID, 9999}}

	_, err := svc.BulkAction(context.Background(), req, testOwner)
	assert.ErrorIs(t, err, ErrForbidden)

	results, err := svc.BulkAction(context.Background(), req, testAdmin)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, models.BulkActionResult{PollID: poll.ID, Success: true, Action: "activated"}, results[0])
	assert.False(t, results[1].Success)
	assert.Equal(t, ErrPollNotFound.Error(), results[1].Error)

	stored, err := svc.getPoll(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PollStatusActive, stored.Status)
}

func TestPollService_Export(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, nil)

	_, err := svc.SubmitResponse(context.Background(), poll.ID, &models.SubmitResponseRequest{
		Answers: []models.AnswerInput{
			{QuestionID: poll.Questions[0].ID, RatingValue: ptr(4)},
			{QuestionID: poll.Questions[1].ID, SelectedOptions: []string{"concrete"}},
		},
		RespondentName:  ptr("Reza"),
		RespondentEmail: ptr("reza@example.com"),
		SupplierType:    ptr(models.SupplierDistributor),
	}, nil, session("s-1"))
	require.NoError(t, err)

	_, err = svc.Export(context.Background(), poll.ID, models.ExportCSV, testOther)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Export(context.Background(), poll.ID, "pdf", testOwner)
	assert.ErrorIs(t, err, ErrUnsupportedExport)

	export, err := svc.Export(context.Background(), poll.ID, models.ExportCSV, testOwner)
	require.NoError(t, err)
	require.Len(t, export.Rows, 2)
	assert.Equal(t, []string{
		"Response ID", "User", "Email", "Company", "Supplier Type", "Submitted At",
		"How satisfied are you?", "Preferred product", "Comments",
	}, export.Rows[0])

	row := export.Rows[1]
	assert.Equal(t, "Reza", row[1])
	assert.Equal(t, "reza@example.com", row[2])
	assert.Equal(t, "distributor", row[4])
	assert.NotEmpty(t, row[5])
	assert.Equal(t, []string{"4", "concrete", ""}, row[6:])

	jsonExport, err := svc.Export(context.Background(), poll.ID, models.ExportJSON, testAdmin)
	require.NoError(t, err)
	assert.Len(t, jsonExport.Responses, 1)
	assert.Nil(t, jsonExport.Rows)
}

func TestEncodeExport(t *testing.T) {
	rows := [][]string{
		{"Response ID", "User", "کیفیت"},
		{"1", "Anonymous", "عالی"},
		{"2", "a@b.c", "خوب"},
	}

	t.Run("csv", func(t *testing.T) {
		file, err := EncodeExport(&models.PollExport{Format: models.ExportCSV, Rows: rows}, 7)
		require.NoError(t, err)

		assert.Equal(t, "poll-7-responses.csv", file.Filename)
		assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
		require.True(t, bytes.HasPrefix(file.Body, []byte("\ufeff")))

		records, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(file.Body, []byte("\ufeff")))).ReadAll()
		require.NoError(t, err)
		assert.Equal(t, rows, records)
	})

	t.Run("xlsx", func(t *testing.T) {
		file, err := EncodeExport(&models.PollExport{Format: models.ExportXLSX, Rows: rows}, 7)
		require.NoError(t, err)
		assert.Equal(t, "poll-7-responses.xlsx", file.Filename)

		book, err := excelize.OpenReader(bytes.NewReader(file.Body))
		require.NoError(t, err)
		defer book.Close()

		got, err := book.GetRows(exportSheet)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("json", func(t *testing.T) {
		file, err := EncodeExport(&models.PollExport{Format: models.ExportJSON, Responses: []models.PollResponse{{ID: 3}}}, 7)
		require.NoError(t, err)
		assert.Equal(t, "application/json", file.ContentType)
		assert.Contains(t, string(file.Body), `"id": 3`)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := EncodeExport(&models.PollExport{Format: "pdf"}, 7)
		assert.ErrorIs(t, err, ErrUnsupportedExport)
	})
}

func TestPollService_SupplierPoll(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())

	poll, err := svc.SeedSupplierPoll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, poll)

	again, err := svc.SeedSupplierPoll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, again)

	assert.True(t, poll.IsSupplierPoll())
	assert.Equal(t, models.PollTypeSatisfaction, poll.Type)
	assert.Equal(t, models.PollStatusActive, poll.Status)
	assert.False(t, poll.ShowResults)
	require.Len(t, poll.Questions, 5)

	matrix := poll.Questions[1].MatrixConfig()
	require.NotNil(t, matrix)
	assert.Len(t, matrix.Rows, 12)
	assert.Len(t, matrix.Columns, 4)
	assert.Len(t, matrix.Options, 13)
	assert.Equal(t, "importance_has", matrix.Options[0].Value)

	req := &models.SupplierResponseRequest{
		SupplierType:      models.SupplierManufacturer,
		RespondentCompany: ptr("Shiraz Steel"),
		Responses: []models.SupplierRowAnswer{
			{QuestionID: "tq1", Importance: "has", ImportanceOfTopic: "high", CompanyPerformance: "good", CompanyStatus: "better"},
		},
	}
	resp, err := svc.SubmitSupplierResponse(context.Background(), poll.ID, req, session("supplier-1"))
	require.NoError(t, err)

	assert.Equal(t, models.SupplierManufacturer, *resp.SupplierType)
	require.Len(t, resp.Answers, 2)
	assert.Equal(t, []string{"manufacturer"}, []string(resp.Answers[0].SelectedOptions))
	assert.Equal(t, map[string]string{
		"tq1_importance":         "has",
		"tq1_importanceOfTopic":  "high",
		"tq1_companyPerformance": "good",
		"tq1_companyStatus":      "better",
	}, resp.Answers[1].MatrixValue)

	_, err = svc.SubmitSupplierResponse(context.Background(), poll.ID, req, session("supplier-1"))
	assert.ErrorIs(t, err, ErrAlreadyResponded)

	_, err = svc.GetStatistics(context.Background(), poll.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestPollService_SupplierResponseOnRegularPoll(t *testing.T) {
	svc, _, _ := newTestPollService(newFakeRepository())
	poll := createPoll(t, svc, nil)

	_, err := svc.SubmitSupplierResponse(context.Background(), poll.ID, &models.SupplierResponseRequest{
		SupplierType: models.SupplierImporter,
		Responses:    []models.SupplierRowAnswer{{QuestionID: "tq1"}},
	}, session("s-1"))
	assert.ErrorIs(t, err, ErrNotSupplierPoll)
}

func TestResolveSessionID(t *testing.T) {
	assert.Equal(t, "from-cookie", resolveSessionID(ptr("from-body"), models.SessionInfo{SessionID: "from-cookie"}))
	assert.Equal(t, "from-body", resolveSessionID(ptr("from-body"), models.SessionInfo{}))
	assert.Regexp(t, `^session_[0-9a-f-]{36}$`, resolveSessionID(nil, models.SessionInfo{}))
}
