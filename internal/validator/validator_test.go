package validator

import (
	"testing"
	"time"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestValidate_CustomTags(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     interface{}
		wantErr bool
	}{
		{"valid category", &models.CategoryCreateRequest{Name: "Cement", Slug: "cement-type_2"}, false},
		{"bad slug", &models.CategoryCreateRequest{Name: "Cement", Slug: "bad slug!"}, true},
		{"valid setting key", &models.LandingSettingRequest{Key: "hero_1", Title: "Hero"}, false},
		{"bad setting key", &models.LandingSettingRequest{Key: "hero 1", Title: "Hero"}, true},
		{"unknown poll type", &models.PollCreateRequest{Title: "t", Type: "quiz"}, true},
		{"known post section", &models.PostCreateRequest{Title: "t", Section: models.SectionNews}, false},
		{"unknown post section", &models.PostCreateRequest{Title: "t", Section: "news"}, true},
		{"ticket status", &models.TicketStatusRequest{Status: models.TicketResolved}, false},
		{"bad ticket status", &models.TicketStatusRequest{Status: "done"}, true},
		{"comment rating out of range", &models.CommentCreateRequest{Content: "x", Rating: 6}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := New().Validate(&models.RegisterRequest{Email: "nope", Password: "123456"})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "email", errs[0].Rule)
}

func TestValidatePollCreate_QuestionConfig(t *testing.T) {
	bv := NewBusinessValidator()
	start := time.Now()
	end := start.Add(-time.Hour)

	req := &models.PollCreateRequest{
		Title:     "Survey",
		StartDate: &start,
		EndDate:   &end,
		Questions: []models.PollQuestionRequest{
			{Question: "Pick", Type: models.QuestionSingleChoice},
			{Question: "Grid", Type: models.QuestionMatrix},
			{Question: "Rate", Type: models.QuestionRating, RatingConfig: &models.RatingConfig{Min: intPtr(5), Max: intPtr(1)}},
			{Question: "Yes?", Type: models.QuestionYesNo},
		},
	}

	errs := bv.ValidatePollCreate(req)
	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}

	assert.Contains(t, fields, "endDate")
	assert.Contains(t, fields, "questions[0].options")
	assert.Contains(t, fields, "questions[1].matrixConfig")
	assert.Contains(t, fields, "questions[2].ratingConfig")
	assert.Len(t, errs, 4)
}

func TestValidateAnswer(t *testing.T) {
	bv := NewBusinessValidator()

	choice := &models.PollQuestion{
		ID:       1,
		Type:     models.QuestionSingleChoice,
		Required: true,
		Config: datatypes.NewJSONType(models.QuestionConfig{
			Kind:   models.ConfigChoice,
			Choice: &models.ChoiceConfig{Options: []models.QuestionOption{{Value: "a"}, {Value: "b"}}},
		}),
	}
	rating := &models.PollQuestion{
		ID:   2,
		Type: models.QuestionRating,
		Config: datatypes.NewJSONType(models.QuestionConfig{
			Kind:   models.ConfigRating,
			Rating: &models.RatingConfig{Min: intPtr(1), Max: intPtr(5)},
		}),
	}
	text := &models.PollQuestion{
		ID:              3,
		Type:            models.QuestionText,
		Config:          datatypes.NewJSONType(models.QuestionConfig{Kind: models.ConfigText, Text: &models.TextConfig{}}),
		ValidationRules: &models.ValidationRules{MaxLength: intPtr(3), CustomMessage: "too long"},
	}
	matrix := &models.PollQuestion{
		ID:   4,
		Type: models.QuestionMatrix,
		Config: datatypes.NewJSONType(models.QuestionConfig{
			Kind: models.ConfigMatrix,
			Matrix: &models.MatrixConfig{
				Rows:    []models.MatrixItem{{Value: "r1"}},
				Columns: []models.MatrixItem{{Value: "c1"}},
			},
		}),
	}

	tests := []struct {
		name     string
		question *models.PollQuestion
		value    models.AnswerValue
		wantErrs int
	}{
		{"known option", choice, models.AnswerValue{Kind: models.AnswerOptions, Options: []string{"a"}}, 0},
		{"unknown option", choice, models.AnswerValue{Kind: models.AnswerOptions, Options: []string{"z"}}, 1},
		{"two options on single choice", choice, models.AnswerValue{Kind: models.AnswerOptions, Options: []string{"a", "b"}}, 1},
		{"missing required", choice, models.AnswerValue{Kind: models.AnswerOptions}, 1},
		{"rating in range", rating, models.AnswerValue{Kind: models.AnswerRating, Rating: intPtr(5)}, 0},
		{"rating out of range", rating, models.AnswerValue{Kind: models.AnswerRating, Rating: intPtr(9)}, 1},
		{"optional empty rating", rating, models.AnswerValue{Kind: models.AnswerRating}, 0},
		{"text too long", text, models.AnswerValue{Kind: models.AnswerText, Text: strPtr("abcd")}, 1},
		{"matrix unknown cell", matrix, models.AnswerValue{Kind: models.AnswerMatrix, Matrix: map[string]string{"r1": "c9", "r9": "c1"}}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidateAnswer(tt.question, tt.value, "answers[0]")
			assert.Len(t, errs, tt.wantErrs)
		})
	}

	errs := bv.ValidateAnswer(text, models.AnswerValue{Kind: models.AnswerText, Text: strPtr("abcd")}, "answers[0]")
	require.Len(t, errs, 1)
	assert.Equal(t, "too long", errs[0].Message)
}

func TestIsValidKey(t *testing.T) {
	assert.True(t, IsValidKey("about-us_2"))
	assert.False(t, IsValidKey(""))
	assert.False(t, IsValidKey("درباره"))
}
