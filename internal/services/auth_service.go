package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/darab-cement/cms-service/internal/config"
	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/utils"
	"github.com/darab-cement/cms-service/internal/validator"
)

// TokenClaims is the payload of locally issued access tokens
type TokenClaims struct {
	UserID uint            `json:"id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	repo      repositories.Repository
	identity  repositories.IdentityRepository
	jwt       config.JWTConfig
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
	now       func() time.Time
}

func NewAuthService(repo repositories.Repository, identity repositories.IdentityRepository, jwtConfig config.JWTConfig, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) AuthService {
	return &authService{
		repo:      repo,
		identity:  identity,
		jwt:       jwtConfig,
		publisher: publisher,
		logger:    logger,
		validator: validator,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	email := req.Email
	s.logger.Info("Registering user", "email", email)

	exists, err := s.repo.User().ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, NewConflictError("user", "email", email)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:    email,
		Password: hash,
		FullName: req.FullName,
		Role:     models.RoleUser,
		IsActive: true,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("user", "email", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	publishEvent(ctx, s.publisher, s.logger, events.UserRegistered, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})

	return s.authResponse(user)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	ok, err := utils.VerifyPassword(req.Password, user.Password)
	if err != nil {
		s.logger.Warn("Stored password hash is unreadable", "user_id", user.ID, "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return s.authResponse(user)
}

// normalizeEmail trims and lowercases so validation and lookups see the stored form
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) authResponse(user *models.User) (*models.AuthResponse, error) {
	token, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user.Summary(), AccessToken: token}, nil
}

func (s *authService) IssueToken(user *models.User) (string, error) {
	now := s.now()
	claims := TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwt.ExpiresIn)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

func (s *authService) parseToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwt.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Authenticate accepts local tokens first and falls back to the SSO provider when configured
func (s *authService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims, err := s.parseToken(token)
	if err == nil {
		return s.activeUser(ctx, claims.UserID)
	}

	if s.identity == nil {
		return nil, ErrInvalidToken
	}

	identity, idErr := s.identity.VerifyToken(ctx, token)
	if idErr != nil {
		s.logger.Debug("Token rejected", "local_error", err, "sso_error", idErr)
		return nil, ErrInvalidToken
	}
	return s.linkIdentity(ctx, identity)
}

func (s *authService) activeUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}
	return user, nil
}

// linkIdentity maps an SSO account to a local user by subject, then by email, creating it on first login
func (s *authService) linkIdentity(ctx context.Context, identity *repositories.ExternalIdentity) (*models.User, error) {
	users := s.repo.User()

	user, err := users.GetByExternalID(ctx, identity.Subject)
	if err == nil {
		if !user.IsActive {
			return nil, ErrAccountInactive
		}
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}

	subject := identity.Subject
	user, err = users.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if !user.IsActive {
			return nil, ErrAccountInactive
		}
		user.ExternalID = &subject
		if err := users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to link user: %w", err)
		}
		s.logger.Info("Linked SSO identity to existing user", "user_id", user.ID)
		return user, nil
	case !repositories.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// SSO accounts never sign in with a password; store an unguessable one
	hash, err := utils.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user = &models.User{
		Email:      identity.Email,
		Password:   hash,
		FullName:   identity.FullName,
		Role:       identity.Role,
		IsActive:   true,
		ExternalID: &subject,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create SSO user: %w", err)
	}

	s.logger.Info("Created user from SSO identity", "user_id", user.ID, "email", user.Email)
	publishEvent(ctx, s.publisher, s.logger, events.UserRegistered, map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"sso":     true,
	})
	return user, nil
}

// SeedAdmin creates the configured admin account when it is missing
func (s *authService) SeedAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	_, err := s.repo.User().GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &models.User{
		Email:    email,
		Password: hash,
		FullName: "Administrator",
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := s.repo.User().Create(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("Admin account created", "email", email)
	return nil
}
