package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/validator"
)

const dashboardRecentPolls = 10

type pollService struct {
	repo         repositories.Repository
	cacheManager *cache.CacheManager
	publisher    events.EventPublisher
	observer     ResponseObserver
	logger       *slog.Logger
	validator    *validator.Validator
	now          func() time.Time
}

func NewPollService(repo repositories.Repository, cacheManager *cache.CacheManager, publisher events.EventPublisher, observer ResponseObserver, logger *slog.Logger, validator *validator.Validator) PollService {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &pollService{
		repo:         repo,
		cacheManager: cacheManager,
		publisher:    publisher,
		observer:     observer,
		logger:       logger,
		validator:    validator,
		now:          time.Now,
	}
}

// ===== AUTHORING =====

func (s *pollService) Create(ctx context.Context, req *models.PollCreateRequest, actor *models.User) (*models.Poll, error) {
	if actor == nil {
		return nil, NewPermissionError(0, 0, ResourcePoll, "create", "authentication required")
	}

	s.logger.Info("Creating poll", "creator_id", actor.ID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidatePollCreate(req); len(errs) > 0 {
		return nil, errs
	}

	poll := &models.Poll{
		Title:                    req.Title,
		Description:              req.Description,
		Type:                     req.Type,
		Status:                   req.Status,
		StartDate:                req.StartDate,
		EndDate:                  req.EndDate,
		RequiresAuth:             deref(req.RequiresAuth, false),
		AllowAnonymous:           deref(req.AllowAnonymous, true),
		AllowMultipleSubmissions: deref(req.AllowMultipleSubmissions, false),
		ShowResults:              deref(req.ShowResults, true),
		RandomizeQuestions:       deref(req.RandomizeQuestions, false),
		Metadata:                 datatypes.JSONMap(req.Metadata),
		CreatedByID:              &actor.ID,
		Questions:                buildQuestions(req.Questions),
	}
	if poll.Type == "" {
		poll.Type = models.PollTypeSurvey
	}
	if poll.Status == "" {
		poll.Status = models.PollStatusDraft
	}

	if err := s.createPoll(ctx, poll); err != nil {
		return nil, err
	}

	s.logger.Info("Poll created successfully", "poll_id", poll.ID, "questions", len(poll.Questions))
	publishEvent(ctx, s.publisher, s.logger, events.PollCreated, map[string]interface{}{
		"poll_id":    poll.ID,
		"title":      poll.Title,
		"created_by": actor.ID,
	})

	return s.getPoll(ctx, poll.ID)
}

func (s *pollService) createPoll(ctx context.Context, poll *models.Poll) error {
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		return tx.Poll().Create(ctx, poll)
	})
	if err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}
	return nil
}

// buildQuestions defaults each order to its index and keeps only the config of the question type
func buildQuestions(reqs []models.PollQuestionRequest) []models.PollQuestion {
	questions := make([]models.PollQuestion, 0, len(reqs))
	for i, q := range reqs {
		qType := q.Type
		if qType == "" {
			qType = models.QuestionSingleChoice
		}
		questions = append(questions, models.PollQuestion{
			Question:         q.Question,
			Description:      q.Description,
			Type:             qType,
			Required:         deref(q.Required, true),
			Order:            deref(q.Order, i),
			Config:           datatypes.NewJSONType(models.NewQuestionConfig(qType, q)),
			ValidationRules:  q.ValidationRules,
			ConditionalLogic: q.ConditionalLogic,
		})
	}
	return questions
}

func (s *pollService) Update(ctx context.Context, id uint, req *models.PollUpdateRequest, actor *models.User) (*models.Poll, error) {
	s.logger.Info("Updating poll", "poll_id", id)

	poll, err := s.getPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, pollResource(poll), ActionUpdate); err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidatePollUpdate(req, poll); len(errs) > 0 {
		return nil, errs
	}

	previousStatus := poll.Status
	applyPollUpdate(poll, req)

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if req.Questions != nil {
			if err := tx.PollQuestion().DeleteByPollID(ctx, id); err != nil {
				return err
			}
			questions := buildQuestions(req.Questions)
			for i := range questions {
				questions[i].PollID = id
			}
			if err := tx.PollQuestion().CreateBatch(ctx, questions); err != nil {
				return err
			}
		}
		return tx.Poll().Update(ctx, poll)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update poll: %w", err)
	}

	if poll.Status != previousStatus {
		s.publishStatusChange(ctx, poll.ID, previousStatus, poll.Status)
	}

	return s.getPoll(ctx, id)
}

func applyPollUpdate(poll *models.Poll, req *models.PollUpdateRequest) {
	if req.Title != nil {
		poll.Title = *req.Title
	}
	if req.Description != nil {
		poll.Description = req.Description
	}
	if req.Type != nil {
		poll.Type = *req.Type
	}
	if req.Status != nil {
		poll.Status = *req.Status
	}
	if req.StartDate != nil {
		poll.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		poll.EndDate = req.EndDate
	}
	if req.RequiresAuth != nil {
		poll.RequiresAuth = *req.RequiresAuth
	}
	if req.AllowAnonymous != nil {
		poll.AllowAnonymous = *req.AllowAnonymous
	}
	if req.AllowMultipleSubmissions != nil {
		poll.AllowMultipleSubmissions = *req.AllowMultipleSubmissions
	}
	if req.ShowResults != nil {
		poll.ShowResults = *req.ShowResults
	}
	if req.RandomizeQuestions != nil {
		poll.RandomizeQuestions = *req.RandomizeQuestions
	}
	if req.Metadata != nil {
		poll.Metadata = datatypes.JSONMap(req.Metadata)
	}
}

func (s *pollService) UpdateStatus(ctx context.Context, id uint, status models.PollStatus, actor *models.User) (*models.Poll, error) {
	if err := s.validator.Validate(&models.PollStatusRequest{Status: status}); err != nil {
		return nil, err
	}

	poll, err := s.getPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, pollResource(poll), ActionChangeStatus); err != nil {
		return nil, err
	}

	if poll.Status == status {
		return poll, nil
	}

	if err := s.repo.Poll().UpdateStatus(ctx, id, status); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to update poll status: %w", err)
	}

	s.logger.Info("Poll status changed", "poll_id", id, "from", poll.Status, "to", status)
	s.publishStatusChange(ctx, id, poll.Status, status)

	return s.getPoll(ctx, id)
}

func (s *pollService) publishStatusChange(ctx context.Context, id uint, from, to models.PollStatus) {
	publishEvent(ctx, s.publisher, s.logger, events.PollStatusChanged, map[string]interface{}{
		"poll_id": id,
		"from":    from,
		"to":      to,
	})
}

func (s *pollService) Delete(ctx context.Context, id uint, actor *models.User) error {
	poll, err := s.getPoll(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, pollResource(poll), ActionDelete); err != nil {
		return err
	}

	if err := s.repo.Poll().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPollNotFound
		}
		return fmt.Errorf("failed to delete poll: %w", err)
	}

	s.logger.Info("Poll deleted", "poll_id", id)
	return nil
}

// Clone copies the poll and its questions into a fresh draft owned by the requester
func (s *pollService) Clone(ctx context.Context, id uint, actor *models.User) (*models.Poll, error) {
	if actor == nil {
		return nil, NewPermissionError(0, id, ResourcePoll, "clone", "authentication required")
	}

	original, err := s.getPoll(ctx, id)
	if err != nil {
		return nil, err
	}

	clone := &models.Poll{
		Title:                    original.Title + " (Copy)",
		Description:              original.Description,
		Type:                     original.Type,
		Status:                   models.PollStatusDraft,
		StartDate:                original.StartDate,
		EndDate:                  original.EndDate,
		RequiresAuth:             original.RequiresAuth,
		AllowAnonymous:           original.AllowAnonymous,
		AllowMultipleSubmissions: original.AllowMultipleSubmissions,
		ShowResults:              original.ShowResults,
		RandomizeQuestions:       original.RandomizeQuestions,
		Metadata:                 copyMetadata(original.Metadata),
		CreatedByID:              &actor.ID,
	}
	for i := range original.Questions {
		clone.Questions = append(clone.Questions, original.Questions[i].CloneQuestion())
	}

	if err := s.createPoll(ctx, clone); err != nil {
		return nil, err
	}

	s.logger.Info("Poll cloned", "source_id", id, "poll_id", clone.ID)
	return s.getPoll(ctx, clone.ID)
}

func copyMetadata(src datatypes.JSONMap) datatypes.JSONMap {
	if src == nil {
		return nil
	}
	dst := make(datatypes.JSONMap, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// ===== READS =====

// getPoll loads the definition without counting a view
func (s *pollService) getPoll(ctx context.Context, id uint) (*models.Poll, error) {
	poll, err := s.repo.Poll().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	return poll, nil
}

func (s *pollService) View(ctx context.Context, id uint) (*models.Poll, error) {
	poll, err := s.getPoll(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Poll().IncrementViewCount(ctx, id); err != nil {
		s.logger.Warn("Failed to count poll view", "poll_id", id, "error", err)
	} else {
		poll.ViewCount++
	}
	return poll, nil
}

func (s *pollService) Preview(ctx context.Context, id uint) (*PollPreview, error) {
	poll, err := s.getPoll(ctx, id)
	if err != nil {
		return nil, err
	}

	preview := &PollPreview{
		ID:          poll.ID,
		Title:       poll.Title,
		Description: poll.Description,
		Type:        poll.Type,
		Metadata:    poll.Metadata,
		Questions:   make([]PollPreviewQuestion, 0, len(poll.Questions)),
	}
	for i := range poll.Questions {
		q := &poll.Questions[i]
		preview.Questions = append(preview.Questions, PollPreviewQuestion{
			ID:           q.ID,
			Question:     q.Question,
			Description:  q.Description,
			Type:         q.Type,
			Required:     q.Required,
			Options:      q.Options(),
			RatingConfig: q.RatingConfig(),
			MatrixConfig: q.MatrixConfig(),
			AllowOther:   q.AllowOther(),
			Placeholder:  q.Placeholder(),
		})
	}
	return preview, nil
}

func (s *pollService) List(ctx context.Context, filter models.PollFilter) ([]models.Poll, error) {
	polls, err := s.repo.Poll().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return polls, nil
}

func (s *pollService) ListActive(ctx context.Context) ([]models.Poll, error) {
	polls, err := s.repo.Poll().ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list active polls: %w", err)
	}
	return polls, nil
}

func (s *pollService) ListMine(ctx context.Context, actor *models.User) ([]models.Poll, error) {
	if actor == nil {
		return nil, NewPermissionError(0, 0, ResourcePoll, "list", "authentication required")
	}
	return s.List(ctx, models.PollFilter{CreatedBy: &actor.ID})
}

// ===== RESPONSES =====

// checkOpen applies the submission preconditions in order: status, window, authentication
func (s *pollService) checkOpen(poll *models.Poll, actor *models.User) error {
	if poll.Status != models.PollStatusActive {
		return ErrPollNotActive
	}

	now := s.now()
	if !poll.HasStarted(now) {
		return ErrPollNotStarted
	}
	if poll.HasEnded(now) {
		return ErrPollEnded
	}

	if poll.RequiresAuth && actor == nil {
		return NewPermissionError(0, poll.ID, ResourcePoll, "respond", "This poll requires authentication")
	}
	return nil
}

func (s *pollService) checkNotResponded(ctx context.Context, poll *models.Poll, userID *uint, sessionID string) error {
	if poll.AllowMultipleSubmissions {
		return nil
	}
	done, err := s.repo.PollResponse().HasCompleted(ctx, poll.ID, userID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to check previous responses: %w", err)
	}
	if done {
		return ErrAlreadyResponded
	}
	return nil
}

func (s *pollService) SubmitResponse(ctx context.Context, pollID uint, req *models.SubmitResponseRequest, actor *models.User, session models.SessionInfo) (*models.PollResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	poll, err := s.View(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOpen(poll, actor); err != nil {
		return nil, err
	}

	var userID *uint
	if actor != nil {
		userID = &actor.ID
	}
	sessionID := resolveSessionID(req.SessionID, session)
	if err := s.checkNotResponded(ctx, poll, userID, sessionID); err != nil {
		return nil, err
	}

	answers, err := s.buildAnswers(ctx, poll, req.Answers)
	if err != nil {
		return nil, err
	}

	response := s.newCompletedResponse(poll.ID, userID, sessionID, session)
	response.SupplierType = req.SupplierType
	response.RespondentName = req.RespondentName
	response.RespondentEmail = req.RespondentEmail
	response.RespondentPhone = req.RespondentPhone
	response.RespondentCompany = req.RespondentCompany
	response.Feedback = req.Feedback
	if req.Metadata != nil {
		response.Metadata = datatypes.NewJSONType(*req.Metadata)
	}

	return s.persistResponse(ctx, poll, response, answers)
}

func resolveSessionID(requested *string, session models.SessionInfo) string {
	if session.SessionID != "" {
		return session.SessionID
	}
	if requested != nil && *requested != "" {
		return *requested
	}
	return "session_" + uuid.NewString()
}

func (s *pollService) newCompletedResponse(pollID uint, userID *uint, sessionID string, session models.SessionInfo) *models.PollResponse {
	completedAt := s.now()
	response := &models.PollResponse{
		PollID:             pollID,
		UserID:             userID,
		SessionID:          &sessionID,
		Status:             models.ResponseCompleted,
		CompletedAt:        &completedAt,
		ProgressPercentage: 100,
	}
	if session.IPAddress != "" {
		response.IPAddress = ptr(session.IPAddress)
	}
	if session.UserAgent != "" {
		response.UserAgent = ptr(session.UserAgent)
	}
	return response
}

// buildAnswers resolves every answer against the poll and validates all of them before anything is written
func (s *pollService) buildAnswers(ctx context.Context, poll *models.Poll, inputs []models.AnswerInput) ([]models.PollAnswer, error) {
	questions := make(map[uint]*models.PollQuestion, len(poll.Questions))
	for i := range poll.Questions {
		questions[poll.Questions[i].ID] = &poll.Questions[i]
	}

	bv := s.validator.GetBusinessValidator()
	var errs validator.ValidationErrors
	answered := make(map[uint]bool, len(inputs))
	answers := make([]models.PollAnswer, 0, len(inputs))

	for i, in := range inputs {
		question, ok := questions[in.QuestionID]
		if !ok {
			// The cached definition may predate a question replacement
			q, err := s.repo.PollQuestion().GetByIDForPoll(ctx, poll.ID, in.QuestionID)
			if err != nil {
				if repositories.IsNotFoundError(err) {
					return nil, fmt.Errorf("question %d: %w", in.QuestionID, ErrQuestionNotInPoll)
				}
				return nil, fmt.Errorf("failed to resolve question: %w", err)
			}
			question = q
		}

		value := models.AnswerFromInput(question.Type, in)
		errs = append(errs, bv.ValidateAnswer(question, value, fmt.Sprintf("answers[%d]", i))...)
		answered[question.ID] = true
		answers = append(answers, models.NewPollAnswer(question.ID, value))
	}

	for i := range poll.Questions {
		q := &poll.Questions[i]
		if q.Required && !answered[q.ID] && q.ConditionalLogic == nil {
			errs = append(errs, validator.ValidationError{
				Field:   "answers",
				Message: fmt.Sprintf("question %d is required", q.ID),
				Value:   q.ID,
				Rule:    "required_answer",
			})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return answers, nil
}

// persistResponse writes the response, its answers and the counter in one transaction
func (s *pollService) persistResponse(ctx context.Context, poll *models.Poll, response *models.PollResponse, answers []models.PollAnswer) (*models.PollResponse, error) {
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.PollResponse().Create(ctx, response); err != nil {
			return err
		}
		for i := range answers {
			answers[i].ResponseID = response.ID
		}
		if len(answers) > 0 {
			if err := tx.PollAnswer().CreateBatch(ctx, answers); err != nil {
				return err
			}
		}
		return tx.Poll().IncrementResponseCount(ctx, poll.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save poll response: %w", err)
	}

	s.logger.Info("Poll response submitted", "poll_id", poll.ID, "response_id", response.ID, "answers", len(answers))
	cache.SafeDelete(ctx, s.cacheManager.Stats, cache.PollStatsKey(poll.ID))
	if s.observer != nil {
		s.observer.ObservePollResponse(string(poll.Type))
	}
	publishEvent(ctx, s.publisher, s.logger, events.PollResponseSubmitted, map[string]interface{}{
		"poll_id":     poll.ID,
		"response_id": response.ID,
		"user_id":     response.UserID,
	})

	saved, err := s.repo.PollResponse().GetByID(ctx, response.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll response: %w", err)
	}
	return saved, nil
}

func (s *pollService) GetResponses(ctx context.Context, pollID uint, actor *models.User) ([]models.PollResponse, error) {
	poll, err := s.getPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, pollResource(poll), ActionViewResponses); err != nil {
		return nil, err
	}

	responses, err := s.repo.PollResponse().ListByPoll(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list poll responses: %w", err)
	}
	return responses, nil
}

func (s *pollService) GetResponse(ctx context.Context, responseID uint, actor *models.User) (*models.PollResponse, error) {
	response, err := s.repo.PollResponse().GetByID(ctx, responseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("failed to get poll response: %w", err)
	}
	if err := Authorize(actor, responseResource(response), ActionRead); err != nil {
		return nil, err
	}
	return response, nil
}

// ===== ADMINISTRATION =====

var bulkActionLabels = map[models.BulkAction]string{
	models.BulkDelete:   "deleted",
	models.BulkActivate: "activated",
	models.BulkClose:    "closed",
}

// BulkAction applies the action to each poll in turn; one failure never stops the rest
func (s *pollService) BulkAction(ctx context.Context, req *models.BulkActionRequest, actor *models.User) ([]models.BulkActionResult, error) {
	if err := RequireAdmin(actor, ResourcePoll, "bulk_action"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	results := make([]models.BulkActionResult, 0, len(req.PollIDs))
	for _, id := range req.PollIDs {
		var err error
		switch req.Action {
		case models.BulkDelete:
			err = s.Delete(ctx, id, actor)
		case models.BulkActivate:
			_, err = s.UpdateStatus(ctx, id, models.PollStatusActive, actor)
		case models.BulkClose:
			_, err = s.UpdateStatus(ctx, id, models.PollStatusClosed, actor)
		default:
			err = ErrInvalidBulkAction
		}

		if err != nil {
			results = append(results, models.BulkActionResult{PollID: id, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, models.BulkActionResult{PollID: id, Success: true, Action: bulkActionLabels[req.Action]})
	}

	s.logger.Info("Bulk poll action finished", "action", req.Action, "polls", len(req.PollIDs))
	return results, nil
}

func (s *pollService) Dashboard(ctx context.Context, actor *models.User) (*models.PollDashboard, error) {
	if err := RequireAdmin(actor, ResourcePoll, "dashboard"); err != nil {
		return nil, err
	}

	dashboard, err := s.repo.Dashboard().GetPollDashboard(ctx, dashboardRecentPolls)
	if err != nil {
		return nil, fmt.Errorf("failed to load poll dashboard: %w", err)
	}
	return dashboard, nil
}
