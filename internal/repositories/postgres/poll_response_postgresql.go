package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

type PollResponsePostgreSQL struct {
	db *gorm.DB
}

func NewPollResponsePostgreSQL(db *gorm.DB) repositories.PollResponseRepository {
	return &PollResponsePostgreSQL{db: db}
}

// Create inserts the response row only; answers are written by PollAnswerRepository
func (r *PollResponsePostgreSQL) Create(ctx context.Context, response *models.PollResponse) error {
	return wrapError("create poll response", r.db.WithContext(ctx).Omit("Answers").Create(response).Error)
}

func (r *PollResponsePostgreSQL) GetByID(ctx context.Context, id uint) (*models.PollResponse, error) {
	var response models.PollResponse
	err := r.db.WithContext(ctx).
		Preload("Poll").
		Preload("User").
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Answers.Question").
		First(&response, id).Error
	if err != nil {
		return nil, wrapError("get poll response", err)
	}
	return &response, nil
}

// ListByPoll returns every response of a poll, most recently completed first
func (r *PollResponsePostgreSQL) ListByPoll(ctx context.Context, pollID uint) ([]models.PollResponse, error) {
	var responses []models.PollResponse
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Preload("User").
		Preload("Answers").
		Order("completed_at DESC NULLS LAST, id DESC").
		Find(&responses).Error
	if err != nil {
		return nil, wrapError("list poll responses", err)
	}
	return responses, nil
}

func (r *PollResponsePostgreSQL) ListCompleted(ctx context.Context, pollID uint) ([]models.PollResponse, error) {
	var responses []models.PollResponse
	err := r.db.WithContext(ctx).
		Where("poll_id = ? AND status = ?", pollID, models.ResponseCompleted).
		Preload("User").
		Preload("Answers").
		Order("completed_at ASC, id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, wrapError("list completed poll responses", err)
	}
	return responses, nil
}

func (r *PollResponsePostgreSQL) CountByPoll(ctx context.Context, pollID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PollResponse{}).
		Where("poll_id = ?", pollID).
		Count(&count).Error
	if err != nil {
		return 0, wrapError("count poll responses", err)
	}
	return count, nil
}

func (r *PollResponsePostgreSQL) HasCompleted(ctx context.Context, pollID uint, userID *uint, sessionID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PollResponse{}).
		Where("poll_id = ? AND status = ?", pollID, models.ResponseCompleted)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("session_id = ?", sessionID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, wrapError("check completed response", err)
	}
	return count > 0, nil
}

type PollAnswerPostgreSQL struct {
	db *gorm.DB
}

func NewPollAnswerPostgreSQL(db *gorm.DB) repositories.PollAnswerRepository {
	return &PollAnswerPostgreSQL{db: db}
}

func (a *PollAnswerPostgreSQL) CreateBatch(ctx context.Context, answers []models.PollAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return wrapError("create poll answers", a.db.WithContext(ctx).Omit("Question").Create(&answers).Error)
}

func (a *PollAnswerPostgreSQL) ListByResponse(ctx context.Context, responseID uint) ([]models.PollAnswer, error) {
	var answers []models.PollAnswer
	err := a.db.WithContext(ctx).
		Where("response_id = ?", responseID).
		Preload("Question").
		Order("id ASC").
		Find(&answers).Error
	if err != nil {
		return nil, wrapError("list poll answers", err)
	}
	return answers, nil
}

type SimplePollPostgreSQL struct {
	db *gorm.DB
}

func NewSimplePollPostgreSQL(db *gorm.DB) repositories.SimplePollRepository {
	return &SimplePollPostgreSQL{db: db}
}

func (s *SimplePollPostgreSQL) Create(ctx context.Context, poll *models.SimplePoll) error {
	return wrapError("create simple poll", s.db.WithContext(ctx).Create(poll).Error)
}

func (s *SimplePollPostgreSQL) GetByID(ctx context.Context, id uint) (*models.SimplePoll, error) {
	var poll models.SimplePoll
	if err := s.db.WithContext(ctx).First(&poll, id).Error; err != nil {
		return nil, wrapError("get simple poll", err)
	}
	return &poll, nil
}

func (s *SimplePollPostgreSQL) List(ctx context.Context) ([]models.SimplePoll, error) {
	var polls []models.SimplePoll
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&polls).Error; err != nil {
		return nil, wrapError("list simple polls", err)
	}
	return polls, nil
}

func (s *SimplePollPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected("delete simple poll", s.db.WithContext(ctx).Delete(&models.SimplePoll{}, id))
}
