package repositories

import "context"

// Repository aggregates every repository the services depend on
type Repository interface {
	// Accounts
	User() UserRepository

	// Polls
	Poll() PollRepository
	PollQuestion() PollQuestionRepository
	PollResponse() PollResponseRepository
	PollAnswer() PollAnswerRepository
	SimplePoll() SimplePollRepository

	// Content
	Post() PostRepository
	Comment() CommentRepository
	Category() CategoryRepository
	Product() ProductRepository
	Media() MediaRepository
	Personnel() PersonnelRepository
	LandingSetting() LandingSettingRepository

	// Support
	Ticket() TicketRepository
	TicketMessage() TicketMessageRepository

	// Admin dashboard aggregates
	Dashboard() DashboardRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
