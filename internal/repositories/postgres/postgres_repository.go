package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// Repository instances
	user           repositories.UserRepository
	poll           repositories.PollRepository
	pollQuestion   repositories.PollQuestionRepository
	pollResponse   repositories.PollResponseRepository
	pollAnswer     repositories.PollAnswerRepository
	simplePoll     repositories.SimplePollRepository
	post           repositories.PostRepository
	comment        repositories.CommentRepository
	category       repositories.CategoryRepository
	product        repositories.ProductRepository
	media          repositories.MediaRepository
	personnel      repositories.PersonnelRepository
	landingSetting repositories.LandingSettingRepository
	ticket         repositories.TicketRepository
	ticketMessage  repositories.TicketMessageRepository
	dashboard      repositories.DashboardRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
	// Cache is shared with the services; when nil one is built from RedisClient
	Cache       *cache.CacheManager
}

// NewPostgreSQLRepository creates a new repository with all sub-repositories; a nil redis client disables caching
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := config.Cache
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(config.RedisClient)
	}
	return newRepository(config.DB, config.RedisClient, cacheManager)
}

func newRepository(db *gorm.DB, redisClient *redis.Client, cacheManager *cache.CacheManager) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:           db,
		redisClient:  redisClient,
		cacheManager: cacheManager,

		user:           NewUserPostgreSQL(db),
		poll:           NewPollPostgreSQL(db, cacheManager),
		pollQuestion:   NewPollQuestionPostgreSQL(db, cacheManager),
		pollResponse:   NewPollResponsePostgreSQL(db),
		pollAnswer:     NewPollAnswerPostgreSQL(db),
		simplePoll:     NewSimplePollPostgreSQL(db),
		post:           NewPostPostgreSQL(db, cacheManager),
		comment:        NewCommentPostgreSQL(db, cacheManager),
		category:       NewCategoryPostgreSQL(db, cacheManager),
		product:        NewProductPostgreSQL(db, cacheManager),
		media:          NewMediaPostgreSQL(db),
		personnel:      NewPersonnelPostgreSQL(db),
		landingSetting: NewLandingSettingPostgreSQL(db, cacheManager),
		ticket:         NewTicketPostgreSQL(db),
		ticketMessage:  NewTicketMessagePostgreSQL(db),
		dashboard:      NewDashboardRepository(db),
	}
}

func (r *PostgreSQLRepository) User() repositories.UserRepository { return r.user }

func (r *PostgreSQLRepository) Poll() repositories.PollRepository { return r.poll }

func (r *PostgreSQLRepository) PollQuestion() repositories.PollQuestionRepository {
	return r.pollQuestion
}

func (r *PostgreSQLRepository) PollResponse() repositories.PollResponseRepository {
	return r.pollResponse
}

func (r *PostgreSQLRepository) PollAnswer() repositories.PollAnswerRepository { return r.pollAnswer }

func (r *PostgreSQLRepository) SimplePoll() repositories.SimplePollRepository { return r.simplePoll }

func (r *PostgreSQLRepository) Post() repositories.PostRepository { return r.post }

func (r *PostgreSQLRepository) Comment() repositories.CommentRepository { return r.comment }

func (r *PostgreSQLRepository) Category() repositories.CategoryRepository { return r.category }

func (r *PostgreSQLRepository) Product() repositories.ProductRepository { return r.product }

func (r *PostgreSQLRepository) Media() repositories.MediaRepository { return r.media }

func (r *PostgreSQLRepository) Personnel() repositories.PersonnelRepository { return r.personnel }

func (r *PostgreSQLRepository) LandingSetting() repositories.LandingSettingRepository {
	return r.landingSetting
}

func (r *PostgreSQLRepository) Ticket() repositories.TicketRepository { return r.ticket }

func (r *PostgreSQLRepository) TicketMessage() repositories.TicketMessageRepository {
	return r.ticketMessage
}

func (r *PostgreSQLRepository) Dashboard() repositories.DashboardRepository { return r.dashboard }

// WithTransaction executes fn with sub-repositories bound to a single database transaction.
// Cache invalidations issued inside fn are applied once the outermost transaction commits.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	txCache := r.cacheManager.Deferred()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepository(tx, r.redisClient, txCache))
	})
	if err != nil {
		return err
	}
	if !r.cacheManager.IsDeferred() {
		txCache.Flush(ctx)
	}
	return nil
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies the connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown gracefully shuts down all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
