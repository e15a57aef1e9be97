package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) GetByID(ctx context.Context, id uint, actor *models.User) (*models.User, error) {
	if actor == nil || (actor.ID != id && !actor.IsAdmin()) {
		return nil, RequireAdmin(actor, "user", "read")
	}
	return s.getUser(ctx, id)
}

func (s *userService) getUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, params models.UserListParams, actor *models.User) (*UserPage, error) {
	if err := RequireAdmin(actor, "user", "list"); err != nil {
		return nil, err
	}

	params.Page, params.Limit = normalizePage(params.Page, params.Limit, 10)
	users, total, err := s.repo.User().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserPage{
		Data: users,
		Meta: pageMeta(params.Page, params.Limit, total),
	}, nil
}

func (s *userService) Update(ctx context.Context, id uint, req *models.UserUpdateRequest, actor *models.User) (*models.User, error) {
	if err := RequireAdmin(actor, "user", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.ID == actor.ID && ((req.Role != nil && *req.Role != models.RoleAdmin) || (req.IsActive != nil && !*req.IsActive)) {
		return nil, NewBusinessRuleError("self_demotion", "Admins cannot demote or deactivate themselves", map[string]interface{}{
			"user_id": user.ID,
		})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", "user_id", user.ID, "by", actor.ID)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if err := RequireAdmin(actor, "user", "delete"); err != nil {
		return err
	}
	if actor.ID == id {
		return NewBusinessRuleError("self_delete", "Admins cannot delete their own account", map[string]interface{}{
			"user_id": id,
		})
	}

	if err := s.repo.User().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id, "by", actor.ID)
	return nil
}
