package repositories

import (
	"context"
	"time"

	"github.com/darab-cement/cms-service/internal/models"
)

// ===== POLLS =====

type PollRepository interface {
	// Create persists the poll together with its nested questions
	Create(ctx context.Context, poll *models.Poll) error
	// GetByID returns the poll definition with ordered questions; counters may lag by the cache TTL
	GetByID(ctx context.Context, id uint) (*models.Poll, error)
	// Update saves the poll columns only, questions are replaced through PollQuestionRepository
	Update(ctx context.Context, poll *models.Poll) error
	UpdateStatus(ctx context.Context, id uint, status models.PollStatus) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filter models.PollFilter) ([]models.Poll, error)
	ListActive(ctx context.Context, now time.Time) ([]models.Poll, error)
	ExistsByMarker(ctx context.Context, marker string) (bool, error)

	// Atomic counters
	IncrementViewCount(ctx context.Context, id uint) error
	IncrementResponseCount(ctx context.Context, id uint) error
}

type PollQuestionRepository interface {
	CreateBatch(ctx context.Context, questions []models.PollQuestion) error
	GetByPollID(ctx context.Context, pollID uint) ([]models.PollQuestion, error)
	// GetByIDForPoll resolves a question only when it belongs to the poll
	GetByIDForPoll(ctx context.Context, pollID, questionID uint) (*models.PollQuestion, error)
	DeleteByPollID(ctx context.Context, pollID uint) error
}

type PollResponseRepository interface {
	Create(ctx context.Context, response *models.PollResponse) error
	// GetByID loads the response with its poll, user and answered questions
	GetByID(ctx context.Context, id uint) (*models.PollResponse, error)
	ListByPoll(ctx context.Context, pollID uint) ([]models.PollResponse, error)
	ListCompleted(ctx context.Context, pollID uint) ([]models.PollResponse, error)
	CountByPoll(ctx context.Context, pollID uint) (int64, error)
	// HasCompleted checks for a completed response by user id, or by session id when userID is nil
	HasCompleted(ctx context.Context, pollID uint, userID *uint, sessionID string) (bool, error)
}

type PollAnswerRepository interface {
	CreateBatch(ctx context.Context, answers []models.PollAnswer) error
	ListByResponse(ctx context.Context, responseID uint) ([]models.PollAnswer, error)
}

type SimplePollRepository interface {
	Create(ctx context.Context, poll *models.SimplePoll) error
	GetByID(ctx context.Context, id uint) (*models.SimplePoll, error)
	List(ctx context.Context) ([]models.SimplePoll, error)
	Delete(ctx context.Context, id uint) error
}

// ===== POSTS =====

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	// ReplaceAttachments drops every attachment of the post and inserts the given rows
	ReplaceAttachments(ctx context.Context, postID uint, attachments []models.PostAttachment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params models.PostListParams) ([]models.Post, int64, error)

	IncrementViews(ctx context.Context, id uint) error
	UpdateRating(ctx context.Context, id uint, average float64, total int) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	// RatingSummary returns the mean rating and the number of rated comments of a post
	RatingSummary(ctx context.Context, postID uint) (float64, int64, error)
}

// ===== CATALOG =====

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Children(ctx context.Context, parentID uint) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	// Delete detaches the children before removing the category
	Delete(ctx context.Context, id uint) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params models.ProductListParams) ([]models.Product, int64, error)
}

// ===== MEDIA & PEOPLE =====

type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id uint) (*models.Media, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, params models.MediaListParams) ([]models.Media, int64, error)
}

type PersonnelRepository interface {
	Create(ctx context.Context, person *models.Personnel) error
	GetByID(ctx context.Context, id string) (*models.Personnel, error)
	Update(ctx context.Context, person *models.Personnel) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params models.PersonnelListParams) ([]models.Personnel, int64, error)
}

// ===== TICKETS =====

type TicketRepository interface {
	// Create persists the ticket together with its first message
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id uint) (*models.Ticket, error)
	List(ctx context.Context, params models.TicketListParams) ([]models.Ticket, int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.TicketStatus) error
	Delete(ctx context.Context, id uint) error
}

type TicketMessageRepository interface {
	Create(ctx context.Context, message *models.TicketMessage) error
	ListByTicket(ctx context.Context, ticketID uint) ([]models.TicketMessage, error)
}

// ===== LANDING SETTINGS =====

type LandingSettingRepository interface {
	Create(ctx context.Context, setting *models.LandingSetting) error
	GetByID(ctx context.Context, id uint) (*models.LandingSetting, error)
	GetByKey(ctx context.Context, key string) (*models.LandingSetting, error)
	List(ctx context.Context) ([]models.LandingSetting, error)
	Update(ctx context.Context, setting *models.LandingSetting) error
	Delete(ctx context.Context, id uint) error
}
