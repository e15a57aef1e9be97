package casdoor

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"

	"github.com/darab-cement/cms-service/internal/config"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

// tokenParser is the part of the Casdoor client used to verify tokens
type tokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

type IdentityCasdoor struct {
	client tokenParser
}

func NewIdentityCasdoor(cfg config.CasdoorConfig) repositories.IdentityRepository {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)
	return &IdentityCasdoor{client: client}
}

// VerifyToken checks the token signature against the application certificate
func (c *IdentityCasdoor) VerifyToken(ctx context.Context, token string) (*repositories.ExternalIdentity, error) {
	claims, err := c.client.ParseJwtToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrInvalidIdentityToken, err)
	}
	return identityFromClaims(claims)
}

func identityFromClaims(claims *casdoorsdk.Claims) (*repositories.ExternalIdentity, error) {
	if claims == nil || claims.User.Id == "" {
		return nil, fmt.Errorf("%w: missing subject", repositories.ErrInvalidIdentityToken)
	}
	if claims.User.Email == "" {
		return nil, fmt.Errorf("%w: missing email", repositories.ErrInvalidIdentityToken)
	}

	fullName := claims.User.DisplayName
	if fullName == "" {
		fullName = claims.User.Name
	}

	return &repositories.ExternalIdentity{
		Subject:  claims.User.Id,
		Email:    strings.ToLower(claims.User.Email),
		FullName: fullName,
		Role:     roleOf(&claims.User),
	}, nil
}

// roleOf maps Casdoor roles to a local role; any admin signal wins
func roleOf(user *casdoorsdk.User) models.UserRole {
	roles := make([]models.UserRole, 0, len(user.Roles)+1)
	for _, role := range user.Roles {
		if role != nil {
			roles = append(roles, mapCasdoorRole(role.Name))
		}
	}
	roles = append(roles, mapCasdoorRole(user.Type))

	if user.IsAdmin || slices.Contains(roles, models.RoleAdmin) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func mapCasdoorRole(name string) models.UserRole {
	switch strings.ToLower(name) {
	case "admin", "administrator":
		return models.RoleAdmin
	default:
		return models.RoleUser
	}
}
