package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/storage"
	"github.com/darab-cement/cms-service/internal/validator"
)

const landingFolder = "landing"

type landingSettingService struct {
	repo      repositories.Repository
	store     storage.FileStore
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLandingSettingService(repo repositories.Repository, store storage.FileStore, logger *slog.Logger, validator *validator.Validator) LandingSettingService {
	return &landingSettingService{
		repo:      repo,
		store:     store,
		logger:    logger,
		validator: validator,
	}
}

func (s *landingSettingService) Create(ctx context.Context, req *models.LandingSettingRequest, image *multipart.FileHeader, actor *models.User) (*models.LandingSetting, error) {
	if err := RequireUser(actor, "landing_setting", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkKeyFree(ctx, req.Key); err != nil {
		return nil, err
	}

	setting := &models.LandingSetting{
		Key:         req.Key,
		Title:       req.Title,
		Description: req.Description,
	}
	if image != nil {
		stored, err := saveUpload(ctx, s.store, storage.ImageRules, landingFolder, image)
		if err != nil {
			return nil, err
		}
		setting.Image = ptr(stored.URL)
	}

	if err := s.repo.LandingSetting().Create(ctx, setting); err != nil {
		removeStoredURL(ctx, s.store, s.logger, setting.Image)
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("landing setting", "key", req.Key)
		}
		return nil, fmt.Errorf("failed to create landing setting: %w", err)
	}

	s.logger.Info("Landing setting created", "setting_id", setting.ID, "key", setting.Key)
	return setting, nil
}

func (s *landingSettingService) checkKeyFree(ctx context.Context, key string) error {
	_, err := s.repo.LandingSetting().GetByKey(ctx, key)
	switch {
	case err == nil:
		return NewConflictError("landing setting", "key", key)
	case repositories.IsNotFoundError(err):
		return nil
	default:
		return fmt.Errorf("failed to check landing setting key: %w", err)
	}
}

func (s *landingSettingService) GetByID(ctx context.Context, id uint) (*models.LandingSetting, error) {
	setting, err := s.repo.LandingSetting().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get landing setting: %w", err)
	}
	return setting, nil
}

func (s *landingSettingService) GetByKey(ctx context.Context, key string) (*models.LandingSetting, error) {
	setting, err := s.repo.LandingSetting().GetByKey(ctx, key)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSettingNotFound
		}
		return nil, fmt.Errorf("failed to get landing setting: %w", err)
	}
	return setting, nil
}

func (s *landingSettingService) List(ctx context.Context) ([]models.LandingSetting, error) {
	settings, err := s.repo.LandingSetting().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list landing settings: %w", err)
	}
	return settings, nil
}

func (s *landingSettingService) Update(ctx context.Context, id uint, req *models.LandingSettingUpdateRequest, image *multipart.FileHeader, actor *models.User) (*models.LandingSetting, error) {
	if err := RequireUser(actor, "landing_setting", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	setting, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Key != nil && *req.Key != setting.Key {
		if err := s.checkKeyFree(ctx, *req.Key); err != nil {
			return nil, err
		}
		setting.Key = *req.Key
	}
	if req.Title != nil {
		setting.Title = *req.Title
	}
	if req.Description != nil {
		setting.Description = *req.Description
	}

	previous := setting.Image
	if image != nil {
		stored, err := saveUpload(ctx, s.store, storage.ImageRules, landingFolder, image)
		if err != nil {
			return nil, err
		}
		setting.Image = ptr(stored.URL)
	}

	if err := s.repo.LandingSetting().Update(ctx, setting); err != nil {
		if image != nil {
			removeStoredURL(ctx, s.store, s.logger, setting.Image)
		}
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("landing setting", "key", setting.Key)
		}
		return nil, fmt.Errorf("failed to update landing setting: %w", err)
	}

	if image != nil {
		removeStoredURL(ctx, s.store, s.logger, previous)
	}

	s.logger.Info("Landing setting updated", "setting_id", id)
	return setting, nil
}

func (s *landingSettingService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if err := RequireUser(actor, "landing_setting", "delete"); err != nil {
		return err
	}

	setting, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.LandingSetting().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to delete landing setting: %w", err)
	}

	removeStoredURL(ctx, s.store, s.logger, setting.Image)
	s.logger.Info("Landing setting deleted", "setting_id", id, "key", setting.Key)
	return nil
}
