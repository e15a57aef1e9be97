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

const (
	defaultPersonnelPageLimit = 10
	personnelFolder           = "personnel"
)

type personnelService struct {
	repo      repositories.Repository
	store     storage.FileStore
	logger    *slog.Logger
	validator *validator.Validator
}

func NewPersonnelService(repo repositories.Repository, store storage.FileStore, logger *slog.Logger, validator *validator.Validator) PersonnelService {
	return &personnelService{
		repo:      repo,
		store:     store,
		logger:    logger,
		validator: validator,
	}
}

func (s *personnelService) Create(ctx context.Context, req *models.PersonnelRequest, image *multipart.FileHeader, actor *models.User) (*models.Personnel, error) {
	if err := RequireAdmin(actor, "personnel", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	person := &models.Personnel{Type: models.PersonnelAssistant}
	applyPersonnel(person, req)

	if image != nil {
		stored, err := saveUpload(ctx, s.store, storage.PersonnelImageRules, personnelFolder, image)
		if err != nil {
			return nil, err
		}
		person.Image = ptr(stored.URL)
	}

	if err := s.repo.Personnel().Create(ctx, person); err != nil {
		removeStoredURL(ctx, s.store, s.logger, person.Image)
		return nil, fmt.Errorf("failed to create personnel: %w", err)
	}

	s.logger.Info("Personnel created", "personnel_id", person.ID, "type", person.Type)
	return person, nil
}

func applyPersonnel(p *models.Personnel, req *models.PersonnelRequest) {
	p.Name = req.Name
	p.Position = req.Position
	p.Education = req.Education
	p.Workplace = req.Workplace
	p.Experience = req.Experience
	p.Phone = req.Phone
	p.Email = req.Email
	p.Resume = req.Resume
	p.AdditionalInfo = req.AdditionalInfo
	if req.Type != "" {
		p.Type = req.Type
	}
}

func (s *personnelService) GetByID(ctx context.Context, id string) (*models.Personnel, error) {
	person, err := s.repo.Personnel().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPersonnelNotFound
		}
		return nil, fmt.Errorf("failed to get personnel: %w", err)
	}
	return person, nil
}

func (s *personnelService) List(ctx context.Context, params models.PersonnelListParams) (*models.PersonnelPage, error) {
	params.Page, params.Limit = normalizePage(params.Page, params.Limit, defaultPersonnelPageLimit)

	people, total, err := s.repo.Personnel().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list personnel: %w", err)
	}
	if people == nil {
		people = []models.Personnel{}
	}

	return &models.PersonnelPage{
		Data: people,
		Meta: pageMeta(params.Page, params.Limit, total),
	}, nil
}

// Update replaces the record fields; a new image replaces and removes the old one
func (s *personnelService) Update(ctx context.Context, id string, req *models.PersonnelRequest, image *multipart.FileHeader, actor *models.User) (*models.Personnel, error) {
	if err := RequireAdmin(actor, "personnel", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	person, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPersonnel(person, req)

	previous := person.Image
	if image != nil {
		stored, err := saveUpload(ctx, s.store, storage.PersonnelImageRules, personnelFolder, image)
		if err != nil {
			return nil, err
		}
		person.Image = ptr(stored.URL)
	}

	if err := s.repo.Personnel().Update(ctx, person); err != nil {
		if image != nil {
			removeStoredURL(ctx, s.store, s.logger, person.Image)
		}
		return nil, fmt.Errorf("failed to update personnel: %w", err)
	}

	if image != nil {
		removeStoredURL(ctx, s.store, s.logger, previous)
	}

	s.logger.Info("Personnel updated", "personnel_id", id)
	return person, nil
}

func (s *personnelService) Delete(ctx context.Context, id string, actor *models.User) error {
	if err := RequireAdmin(actor, "personnel", "delete"); err != nil {
		return err
	}

	person, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Personnel().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPersonnelNotFound
		}
		return fmt.Errorf("failed to delete personnel: %w", err)
	}

	removeStoredURL(ctx, s.store, s.logger, person.Image)
	s.logger.Info("Personnel deleted", "personnel_id", id)
	return nil
}
