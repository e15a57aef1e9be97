package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/config"
	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/storage"
	"github.com/darab-cement/cms-service/internal/validator"
)

// ResponseObserver is notified of each completed poll submission; metrics implement it
type ResponseObserver interface {
	ObservePollResponse(pollType string)
}

// Dependencies are shared by every service
type Dependencies struct {
	Repo      repositories.Repository
	Cache     *cache.CacheManager
	Logger    *slog.Logger
	Validator *validator.Validator
	Publisher events.EventPublisher
	Store     storage.FileStore
	Observer  ResponseObserver
	// Identity verifies SSO tokens; nil when SSO is not configured
	Identity repositories.IdentityRepository
	JWT      config.JWTConfig
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	deps Dependencies

	authService           AuthService
	userService           UserService
	pollService           PollService
	simplePollService     SimplePollService
	postService           PostService
	catalogService        CatalogService
	mediaService          MediaService
	personnelService      PersonnelService
	ticketService         TicketService
	landingSettingService LandingSettingService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies.
// The publisher is wrapped so that requests only enqueue events.
func NewServiceManager(deps Dependencies) ServiceManager {
	if deps.Cache == nil {
		deps.Cache = cache.NewCacheManager(nil)
	}
	if deps.Publisher != nil {
		if _, ok := deps.Publisher.(*events.AsyncPublisher); !ok {
			deps.Publisher = events.NewAsyncPublisher(deps.Publisher, events.AsyncConfig{}, deps.Logger)
		}
	}
	if deps.JWT.ExpiresIn <= 0 {
		deps.JWT.ExpiresIn = 24 * time.Hour
	}
	return &serviceManager{deps: deps}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("Initializing service manager")

	d := sm.deps
	sm.authService = NewAuthService(d.Repo, d.Identity, d.JWT, d.Publisher, d.Logger, d.Validator)
	sm.userService = NewUserService(d.Repo, d.Logger, d.Validator)
	sm.pollService = NewPollService(d.Repo, d.Cache, d.Publisher, d.Observer, d.Logger, d.Validator)
	sm.simplePollService = NewSimplePollService(d.Repo, d.Publisher, d.Logger, d.Validator)
	sm.postService = NewPostService(d.Repo, d.Store, d.Publisher, d.Logger, d.Validator)
	sm.catalogService = NewCatalogService(d.Repo, d.Logger, d.Validator)
	sm.mediaService = NewMediaService(d.Repo, d.Store, d.Logger, d.Validator)
	sm.personnelService = NewPersonnelService(d.Repo, d.Store, d.Logger, d.Validator)
	sm.ticketService = NewTicketService(d.Repo, d.Store, d.Publisher, d.Logger, d.Validator)
	sm.landingSettingService = NewLandingSettingService(d.Repo, d.Store, d.Logger, d.Validator)

	sm.initialized = true
	sm.deps.Logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters

func (sm *serviceManager) Auth() AuthService {
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Poll() PollService {
	sm.mustBeInitialized()
	return sm.pollService
}

func (sm *serviceManager) SimplePoll() SimplePollService {
	sm.mustBeInitialized()
	return sm.simplePollService
}

func (sm *serviceManager) Post() PostService {
	sm.mustBeInitialized()
	return sm.postService
}

func (sm *serviceManager) Catalog() CatalogService {
	sm.mustBeInitialized()
	return sm.catalogService
}

func (sm *serviceManager) Media() MediaService {
	sm.mustBeInitialized()
	return sm.mediaService
}

func (sm *serviceManager) Personnel() PersonnelService {
	sm.mustBeInitialized()
	return sm.personnelService
}

func (sm *serviceManager) Ticket() TicketService {
	sm.mustBeInitialized()
	return sm.ticketService
}

func (sm *serviceManager) LandingSetting() LandingSettingService {
	sm.mustBeInitialized()
	return sm.landingSettingService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if repoManager, ok := sm.deps.Repo.(repositories.RepositoryManager); ok {
		if err := repoManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("repository health check failed: %w", err)
		}
		return nil
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.deps.Logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if repoManager, ok := sm.deps.Repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.deps.Logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("Service manager shut down completed")

	return nil
}
