package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/models"
)

// GetStatistics aggregates the completed responses per question; results are cached until the next submission
func (s *pollService) GetStatistics(ctx context.Context, pollID uint) (*models.PollStatistics, error) {
	poll, err := s.getPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !poll.ShowResults {
		return nil, NewPermissionError(0, pollID, ResourcePoll, "view_statistics", "Results are not public for this poll")
	}

	var stats models.PollStatistics
	err = s.cacheManager.Stats.CacheOrExecute(ctx, cache.PollStatsKey(pollID), &stats, func() (interface{}, error) {
		responses, err := s.repo.PollResponse().ListCompleted(ctx, pollID)
		if err != nil {
			return nil, fmt.Errorf("failed to load poll responses: %w", err)
		}
		return buildStatistics(poll, responses), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func buildStatistics(poll *models.Poll, responses []models.PollResponse) *models.PollStatistics {
	byQuestion := make(map[uint][]*models.PollAnswer)
	for i := range responses {
		for j := range responses[i].Answers {
			a := &responses[i].Answers[j]
			byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
		}
	}

	questions := make([]models.PollQuestion, len(poll.Questions))
	copy(questions, poll.Questions)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })

	stats := &models.PollStatistics{
		PollID:         poll.ID,
		Title:          poll.Title,
		TotalResponses: len(responses),
		ViewCount:      poll.ViewCount,
		ResponseRate:   responseRate(len(responses), poll.ViewCount),
		Questions:      make([]models.QuestionStatistics, 0, len(questions)),
	}
	for i := range questions {
		q := &questions[i]
		answers := byQuestion[q.ID]
		stats.Questions = append(stats.Questions, models.QuestionStatistics{
			ID:           q.ID,
			Question:     q.Question,
			Type:         q.Type,
			TotalAnswers: len(answers),
			Answers:      summarizeAnswers(q.Type, answers),
		})
	}
	return stats
}

// responseRate is a percentage rounded to two decimals
func responseRate(responses, views int) float64 {
	if views == 0 {
		return 0
	}
	return math.Round(float64(responses)/float64(views)*10000) / 100
}

func summarizeAnswers(t models.QuestionType, answers []*models.PollAnswer) any {
	switch {
	case t.IsChoice():
		return choiceCounts(answers)
	case t.IsRating():
		return ratingSummary(answers)
	case t.IsMatrix():
		return matrixCounts(answers)
	default:
		return textSummary(answers)
	}
}

func choiceCounts(answers []*models.PollAnswer) map[string]int {
	counts := make(map[string]int)
	for _, a := range answers {
		if len(a.SelectedOptions) > 0 {
			for _, opt := range a.SelectedOptions {
				counts[opt]++
			}
			continue
		}
		if v, ok := a.ScalarValue(); ok {
			counts[v]++
		}
	}
	return counts
}

func ratingSummary(answers []*models.PollAnswer) models.RatingStatistics {
	summary := models.RatingStatistics{Distribution: make(map[string]int)}
	sum, n := 0, 0
	for _, a := range answers {
		if a.RatingValue == nil {
			continue
		}
		sum += *a.RatingValue
		n++
		summary.Distribution[strconv.Itoa(*a.RatingValue)]++
	}
	if n > 0 {
		summary.Average = float64(sum) / float64(n)
	}
	return summary
}

func matrixCounts(answers []*models.PollAnswer) map[string]map[string]int {
	counts := make(map[string]map[string]int)
	for _, a := range answers {
		for row, col := range a.MatrixValue {
			if counts[row] == nil {
				counts[row] = make(map[string]int)
			}
			counts[row][col]++
		}
	}
	return counts
}

func textSummary(answers []*models.PollAnswer) models.TextStatistics {
	summary := models.TextStatistics{Responses: []string{}}
	for _, a := range answers {
		if a.TextValue != nil && strings.TrimSpace(*a.TextValue) != "" {
			summary.Responses = append(summary.Responses, *a.TextValue)
		}
	}
	return summary
}
