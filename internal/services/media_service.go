package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/lib/pq"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/storage"
	"github.com/darab-cement/cms-service/internal/validator"
)

const (
	defaultMediaPageLimit = 20
	maxGalleryFiles       = 10
	galleryFolder         = "gallery"
)

type mediaService struct {
	repo      repositories.Repository
	store     storage.FileStore
	logger    *slog.Logger
	validator *validator.Validator
}

func NewMediaService(repo repositories.Repository, store storage.FileStore, logger *slog.Logger, validator *validator.Validator) MediaService {
	return &mediaService{
		repo:      repo,
		store:     store,
		logger:    logger,
		validator: validator,
	}
}

// Upload stores a single image or video; the file doubles as its own cover
func (s *mediaService) Upload(ctx context.Context, file *multipart.FileHeader, title string, actor *models.User) (*models.Media, error) {
	if err := RequireUser(actor, "media", "upload"); err != nil {
		return nil, err
	}

	stored, err := saveUpload(ctx, s.store, storage.MediaRules, "", file)
	if err != nil {
		return nil, err
	}

	mediaType := models.MediaImage
	if strings.HasPrefix(stored.MimeType, "video/") {
		mediaType = models.MediaVideo
	}
	if title == "" {
		title = stored.OriginalName
	}

	media := mediaFromStored(stored, mediaType, title)
	if err := s.repo.Media().Create(ctx, media); err != nil {
		s.discard(ctx, stored.Path)
		return nil, fmt.Errorf("failed to create media: %w", err)
	}

	s.logger.Info("Media uploaded", "media_id", media.ID, "type", media.Type, "backend", stored.Backend)
	return media, nil
}

func mediaFromStored(stored *storage.StoredFile, mediaType models.MediaType, title string) *models.Media {
	return &models.Media{
		Filename:     stored.Filename,
		OriginalName: stored.OriginalName,
		Path:         stored.Path,
		URL:          stored.URL,
		MimeType:     stored.MimeType,
		Size:         stored.Size,
		Type:         mediaType,
		Title:        title,
		CoverImage:   ptr(stored.URL),
		Storage:      stored.Backend,
	}
}

// CreateExternal registers a link, an iframe embed or an uploaded gallery
func (s *mediaService) CreateExternal(ctx context.Context, req *models.MediaExternalRequest, files []*multipart.FileHeader, actor *models.User) (*models.Media, error) {
	if err := RequireUser(actor, "media", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var media *models.Media
	switch req.Type {
	case models.MediaURL, models.MediaIframe:
		if strings.TrimSpace(req.URL) == "" {
			return nil, ErrMediaURLRequired
		}
		media = &models.Media{
			URL:        req.URL,
			Type:       req.Type,
			Title:      req.Title,
			CoverImage: req.CoverImage,
		}
	case models.MediaGallery:
		var err error
		if media, err = s.storeGallery(ctx, req.Title, files); err != nil {
			return nil, err
		}
	default:
		return nil, validator.ValidationErrors{{Field: "type", Message: "must be url, iframe or gallery", Value: req.Type, Rule: "media_type"}}
	}

	media.Description = req.Description
	media.Tags = pq.StringArray(cleanTags(req.Tags))

	if err := s.repo.Media().Create(ctx, media); err != nil {
		for _, url := range media.GalleryURLs {
			removeStoredURL(ctx, s.store, s.logger, ptr(url))
		}
		return nil, fmt.Errorf("failed to create media: %w", err)
	}

	s.logger.Info("External media created", "media_id", media.ID, "type", media.Type)
	return media, nil
}

// storeGallery saves every file; the first one is the primary entry and the cover
func (s *mediaService) storeGallery(ctx context.Context, title string, files []*multipart.FileHeader) (*models.Media, error) {
	if len(files) == 0 || len(files) > maxGalleryFiles {
		return nil, ErrGalleryFiles
	}
	for _, f := range files {
		if _, err := storage.MediaRules.Check(f); err != nil {
			return nil, err
		}
	}

	var (
		media *models.Media
		saved []string
	)
	for i, f := range files {
		stored, err := saveUpload(ctx, s.store, storage.MediaRules, galleryFolder, f)
		if err != nil {
			for _, path := range saved {
				s.discard(ctx, path)
			}
			return nil, err
		}
		saved = append(saved, stored.Path)

		if i == 0 {
			media = mediaFromStored(stored, models.MediaGallery, title)
		}
		media.GalleryURLs = append(media.GalleryURLs, stored.URL)
	}
	return media, nil
}

func (s *mediaService) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	media, err := s.repo.Media().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrMediaNotFound
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	return media, nil
}

func (s *mediaService) List(ctx context.Context, params models.MediaListParams) (*models.MediaPage, error) {
	params.Page, params.Limit = normalizePage(params.Page, params.Limit, defaultMediaPageLimit)

	items, total, err := s.repo.Media().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}

	page := &models.MediaPage{Data: make([]models.MediaItem, 0, len(items))}
	for i := range items {
		page.Data = append(page.Data, items[i].Item())
	}
	page.Meta.TotalItems = total
	page.Meta.TotalPages = models.TotalPages(total, params.Limit)
	page.Meta.CurrentPage = params.Page
	return page, nil
}

// Delete always removes the row; stored files are cleaned up best effort
func (s *mediaService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if err := RequireUser(actor, "media", "delete"); err != nil {
		return err
	}

	media, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Media().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrMediaNotFound
		}
		return fmt.Errorf("failed to delete media: %w", err)
	}

	if media.Path != "" {
		s.discard(ctx, media.Path)
	}
	for _, url := range media.GalleryURLs {
		if url != media.URL {
			removeStoredURL(ctx, s.store, s.logger, ptr(url))
		}
	}

	s.logger.Info("Media deleted", "media_id", id)
	return nil
}

func (s *mediaService) discard(ctx context.Context, path string) {
	if err := s.store.Delete(ctx, path); err != nil {
		s.logger.Warn("Failed to delete stored file", "path", path, "error", err)
	}
}
