package repositories

import (
	"context"

	"github.com/darab-cement/cms-service/internal/models"
)

// UserRepository interface for local account operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// GetByExternalID looks up the account linked to a Casdoor subject
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, params models.UserListParams) ([]models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
