package repositories

import (
	"context"
	"errors"

	"github.com/darab-cement/cms-service/internal/models"
)

var ErrInvalidIdentityToken = errors.New("invalid identity token")

// ExternalIdentity is an account asserted by the SSO provider
type ExternalIdentity struct {
	Subject  string
	Email    string
	FullName string
	Role     models.UserRole
}

// IdentityRepository verifies tokens issued by an external identity provider
type IdentityRepository interface {
	VerifyToken(ctx context.Context, token string) (*ExternalIdentity, error)
}
