package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/validator"
)

type simplePollService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewSimplePollService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) SimplePollService {
	return &simplePollService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Create stores each submitted evaluation; all of them are written or none
func (s *simplePollService) Create(ctx context.Context, reqs []models.SimplePollRequest, session models.SessionInfo) ([]models.SimplePoll, error) {
	if len(reqs) == 0 {
		return nil, validator.ValidationErrors{{Field: "body", Message: "is required", Rule: "required"}}
	}

	sessionID := session.SessionID
	if sessionID == "" {
		sessionID = "session_" + uuid.NewString()
	}

	polls := make([]models.SimplePoll, 0, len(reqs))
	for i := range reqs {
		req := &reqs[i]
		if err := s.validator.Validate(req); err != nil {
			return nil, err
		}
		question := strings.TrimSpace(req.QuestionText())
		if question == "" {
			return nil, validator.ValidationErrors{{Field: "question", Message: "is required", Rule: "required"}}
		}

		poll := models.SimplePoll{
			Question:          question,
			Answers:           req.Answers,
			RespondentName:    req.RespondentName,
			RespondentEmail:   req.RespondentEmail,
			RespondentPhone:   req.RespondentPhone,
			RespondentCompany: req.RespondentCompany,
			SupplierType:      req.SupplierType,
			SessionID:         ptr(deref(req.SessionID, sessionID)),
		}
		if session.IPAddress != "" {
			poll.IPAddress = ptr(session.IPAddress)
		}
		if session.UserAgent != "" {
			poll.UserAgent = ptr(session.UserAgent)
		}
		polls = append(polls, poll)
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		for i := range polls {
			if err := tx.SimplePoll().Create(ctx, &polls[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save simple poll: %w", err)
	}

	for i := range polls {
		s.logger.Info("Simple poll submitted", "simple_poll_id", polls[i].ID, "answers", len(polls[i].Answers))
		publishEvent(ctx, s.publisher, s.logger, events.SimplePollSubmitted, map[string]interface{}{
			"simple_poll_id": polls[i].ID,
			"supplier_type":  polls[i].SupplierType,
		})
	}
	return polls, nil
}

func (s *simplePollService) GetByID(ctx context.Context, id uint) (*models.SimplePoll, error) {
	poll, err := s.repo.SimplePoll().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSimplePollNotFound
		}
		return nil, fmt.Errorf("failed to get simple poll: %w", err)
	}
	return poll, nil
}

func (s *simplePollService) List(ctx context.Context) ([]models.SimplePoll, error) {
	polls, err := s.repo.SimplePoll().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list simple polls: %w", err)
	}
	return polls, nil
}

func (s *simplePollService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if err := RequireAdmin(actor, "simple_poll", "delete"); err != nil {
		return err
	}
	if err := s.repo.SimplePoll().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSimplePollNotFound
		}
		return fmt.Errorf("failed to delete simple poll: %w", err)
	}
	s.logger.Info("Simple poll deleted", "simple_poll_id", id, "by", actor.ID)
	return nil
}

// Statistics tallies each of the four evaluation dimensions per question id
func (s *simplePollService) Statistics(ctx context.Context) (*models.SimplePollStatistics, error) {
	polls, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &models.SimplePollStatistics{
		TotalResponses: len(polls),
		QuestionStats:  make(map[string]*models.SimpleQuestionStats),
	}
	for _, poll := range polls {
		for _, a := range poll.Answers {
			qs, ok := stats.QuestionStats[a.QuestionID]
			if !ok {
				qs = &models.SimpleQuestionStats{
					QuestionTitle:        a.QuestionTitle,
					Importance:           make(map[string]int),
					Performance:          make(map[string]int),
					CompetitorComparison: make(map[string]int),
					CompanyStatus:        make(map[string]int),
				}
				stats.QuestionStats[a.QuestionID] = qs
			}
			tally(qs.Importance, a.Importance)
			tally(qs.Performance, a.Performance)
			tally(qs.CompetitorComparison, a.CompetitorComparison)
			tally(qs.CompanyStatus, a.CompanyStatus)
		}
	}
	return stats, nil
}

func tally(counts map[string]int, value string) {
	if value == "" {
		return
	}
	counts[value]++
}
