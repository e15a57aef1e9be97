package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

const questionOrder = `"order" ASC, id ASC`

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order(questionOrder)
}

type PollPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewPollPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.PollRepository {
	return &PollPostgreSQL{db: db, cacheManager: cacheManager}
}

// Create inserts the poll and its questions in one statement batch
func (p *PollPostgreSQL) Create(ctx context.Context, poll *models.Poll) error {
	return wrapError("create poll", p.db.WithContext(ctx).Create(poll).Error)
}

// GetByID retrieves a poll definition with caching
func (p *PollPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Poll, error) {
	var poll models.Poll

	err := p.cacheManager.Poll.CacheOrExecute(ctx, cache.PollKey(id), &poll, func() (interface{}, error) {
		var dbPoll models.Poll
		err := p.db.WithContext(ctx).
			Preload("CreatedBy").
			Preload("Questions", orderedQuestions).
			First(&dbPoll, id).Error
		if err != nil {
			return nil, wrapError("get poll", err)
		}
		return &dbPoll, nil
	})
	if err != nil {
		return nil, err
	}

	return &poll, nil
}

// Update saves the poll columns; counters are owned by the increment methods
func (p *PollPostgreSQL) Update(ctx context.Context, poll *models.Poll) error {
	err := p.db.WithContext(ctx).
		Omit(clause.Associations, "response_count", "view_count", "created_at").
		Save(poll).Error
	if err != nil {
		return wrapError("update poll", err)
	}
	cache.InvalidatePollCache(ctx, p.cacheManager, poll.ID)
	return nil
}

func (p *PollPostgreSQL) UpdateStatus(ctx context.Context, id uint, status models.PollStatus) error {
	result := p.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("id = ?", id).
		Update("status", status)
	if err := requireAffected("update poll status", result); err != nil {
		return err
	}
	cache.InvalidatePollCache(ctx, p.cacheManager, id)
	return nil
}

// Delete removes the poll; questions, responses and answers go with it through the foreign keys
func (p *PollPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := requireAffected("delete poll", p.db.WithContext(ctx).Delete(&models.Poll{}, id)); err != nil {
		return err
	}
	cache.InvalidatePollCache(ctx, p.cacheManager, id)
	return nil
}

func (p *PollPostgreSQL) List(ctx context.Context, filter models.PollFilter) ([]models.Poll, error) {
	query := p.db.WithContext(ctx).Model(&models.Poll{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedBy)
	}

	var polls []models.Poll
	err := query.
		Preload("CreatedBy").
		Preload("Questions", orderedQuestions).
		Order("created_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, wrapError("list polls", err)
	}
	return polls, nil
}

// ListActive returns active polls whose optional window contains now
func (p *PollPostgreSQL) ListActive(ctx context.Context, now time.Time) ([]models.Poll, error) {
	var polls []models.Poll
	err := p.db.WithContext(ctx).
		Where("status = ?", models.PollStatusActive).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Preload("Questions", orderedQuestions).
		Order("created_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, wrapError("list active polls", err)
	}
	return polls, nil
}

// ExistsByMarker reports whether a poll with metadata pollType = marker exists
func (p *PollPostgreSQL) ExistsByMarker(ctx context.Context, marker string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("metadata->>'pollType' = ?", marker).
		Count(&count).Error
	if err != nil {
		return false, wrapError("check poll marker", err)
	}
	return count > 0, nil
}

func (p *PollPostgreSQL) IncrementViewCount(ctx context.Context, id uint) error {
	return p.increment(ctx, id, "view_count")
}

func (p *PollPostgreSQL) IncrementResponseCount(ctx context.Context, id uint) error {
	return p.increment(ctx, id, "response_count")
}

// increment runs col = col + 1 in a single UPDATE so concurrent requests never lose a count
func (p *PollPostgreSQL) increment(ctx context.Context, id uint, column string) error {
	result := p.db.WithContext(ctx).
		Model(&models.Poll{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if err := requireAffected("increment poll "+column, result); err != nil {
		return err
	}
	cache.InvalidatePollCache(ctx, p.cacheManager, id)
	return nil
}

type PollQuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewPollQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.PollQuestionRepository {
	return &PollQuestionPostgreSQL{db: db, cacheManager: cacheManager}
}

func (q *PollQuestionPostgreSQL) CreateBatch(ctx context.Context, questions []models.PollQuestion) error {
	if len(questions) == 0 {
		return nil
	}
	if err := q.db.WithContext(ctx).Create(&questions).Error; err != nil {
		return wrapError("create poll questions", err)
	}
	cache.InvalidatePollCache(ctx, q.cacheManager, questions[0].PollID)
	return nil
}

func (q *PollQuestionPostgreSQL) GetByPollID(ctx context.Context, pollID uint) ([]models.PollQuestion, error) {
	var questions []models.PollQuestion
	err := q.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Order(questionOrder).
		Find(&questions).Error
	if err != nil {
		return nil, wrapError("list poll questions", err)
	}
	return questions, nil
}

func (q *PollQuestionPostgreSQL) GetByIDForPoll(ctx context.Context, pollID, questionID uint) (*models.PollQuestion, error) {
	var question models.PollQuestion
	err := q.db.WithContext(ctx).
		Where("id = ? AND poll_id = ?", questionID, pollID).
		First(&question).Error
	if err != nil {
		return nil, wrapError("get poll question", err)
	}
	return &question, nil
}

func (q *PollQuestionPostgreSQL) DeleteByPollID(ctx context.Context, pollID uint) error {
	err := q.db.WithContext(ctx).
		Where("poll_id = ?", pollID).
		Delete(&models.PollQuestion{}).Error
	if err != nil {
		return wrapError("delete poll questions", err)
	}
	cache.InvalidatePollCache(ctx, q.cacheManager, pollID)
	return nil
}
