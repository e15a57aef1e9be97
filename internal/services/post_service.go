package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/darab-cement/cms-service/internal/events"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/storage"
	"github.com/darab-cement/cms-service/internal/validator"
)

const (
	defaultReadingTime   = 3
	maxContentImages     = 10
	contentImagesFolder  = "posts"
	defaultPostPageLimit = 10
)

type postService struct {
	repo      repositories.Repository
	store     storage.FileStore
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewPostService(repo repositories.Repository, store storage.FileStore, publisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) PostService {
	return &postService{
		repo:      repo,
		store:     store,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *postService) Create(ctx context.Context, req *models.PostCreateRequest, actor *models.User) (*models.Post, error) {
	if err := RequireUser(actor, "post", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	section := req.Section
	if section == "" {
		section = models.SectionNews
	}

	post := &models.Post{
		Title:       req.Title,
		Description: req.Description,
		Tags:        pq.StringArray(cleanTags(req.Tags)),
		Section:     section,
		Content:     req.Content,
		LeadPicture: req.LeadPicture,
		AuthorID:    &actor.ID,
		IsActive:    deref(req.IsActive, true),
		ReadingTime: deref(req.ReadingTime, defaultReadingTime),
		CategoryID:  req.CategoryID,
		Gallery:     datatypes.JSONSlice[string](req.Gallery),
		Attachments: attachmentRows(req.Attachments),
	}

	if err := s.repo.Post().Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info("Post created", "post_id", post.ID, "section", post.Section, "author_id", actor.ID)
	return s.GetByID(ctx, post.ID)
}

func (s *postService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.repo.Category().GetByID(ctx, *id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}
	return nil
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func attachmentRows(in []models.AttachmentInput) []models.PostAttachment {
	rows := make([]models.PostAttachment, 0, len(in))
	for _, a := range in {
		rows = append(rows, models.PostAttachment{Name: a.Name, URL: a.URL})
	}
	return rows
}

func (s *postService) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.repo.Post().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, params models.PostListParams) (*models.PostPage, error) {
	params.Page, params.Limit = normalizePage(params.Page, params.Limit, defaultPostPageLimit)
	params.Tags = cleanTags(params.Tags)

	posts, total, err := s.repo.Post().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	return &models.PostPage{
		Data: posts,
		Meta: pageMeta(params.Page, params.Limit, total),
	}, nil
}

func (s *postService) Update(ctx context.Context, id uint, req *models.PostUpdateRequest, actor *models.User) (*models.Post, error) {
	if err := RequireUser(actor, "post", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	post, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Description != nil {
		post.Description = *req.Description
	}
	if req.Tags != nil {
		post.Tags = pq.StringArray(cleanTags(req.Tags))
	}
	if req.Section != nil {
		post.Section = *req.Section
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.LeadPicture != nil {
		post.LeadPicture = req.LeadPicture
	}
	if req.IsActive != nil {
		post.IsActive = *req.IsActive
	}
	if req.ReadingTime != nil {
		post.ReadingTime = *req.ReadingTime
	}
	if req.CategoryID != nil {
		post.CategoryID = req.CategoryID
		post.Category = nil
	}
	if req.Gallery != nil {
		post.Gallery = datatypes.JSONSlice[string](req.Gallery)
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Post().Update(ctx, post); err != nil {
			return err
		}
		if req.Attachments != nil {
			return tx.Post().ReplaceAttachments(ctx, post.ID, attachmentRows(req.Attachments))
		}
		return nil
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	s.logger.Info("Post updated", "post_id", id, "by", actor.ID)
	return s.GetByID(ctx, id)
}

func (s *postService) Delete(ctx context.Context, id uint, actor *models.User) error {
	if err := RequireUser(actor, "post", "delete"); err != nil {
		return err
	}
	if err := s.repo.Post().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}
	s.logger.Info("Post deleted", "post_id", id, "by", actor.ID)
	return nil
}

func (s *postService) RecordView(ctx context.Context, id uint) error {
	if err := s.repo.Post().IncrementViews(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to record post view: %w", err)
	}
	return nil
}

// AddComment stores the comment and refreshes the post's rating aggregates
func (s *postService) AddComment(ctx context.Context, postID uint, req *models.CommentCreateRequest) (*models.Comment, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:  postID,
		Content: req.Content,
		Author:  datatypes.NewJSONType(req.Author),
		Rating:  req.Rating,
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Comment().Create(ctx, comment); err != nil {
			return err
		}
		average, total, err := tx.Comment().RatingSummary(ctx, postID)
		if err != nil {
			return err
		}
		return tx.Post().UpdateRating(ctx, postID, average, int(total))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	publishEvent(ctx, s.publisher, s.logger, events.PostCommented, map[string]interface{}{
		"post_id":    postID,
		"comment_id": comment.ID,
		"rating":     comment.Rating,
	})
	return comment, nil
}

func (s *postService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	if _, err := s.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.repo.Comment().ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// UploadContentImages stores images embedded in post bodies and returns their public URLs
func (s *postService) UploadContentImages(ctx context.Context, files []*multipart.FileHeader, actor *models.User) (*UploadedImages, error) {
	if err := RequireUser(actor, "post", "upload"); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, storage.ErrNoFile
	}
	if len(files) > maxContentImages {
		return nil, ErrTooManyFiles
	}

	// Validate everything before storing anything
	for _, f := range files {
		if _, err := storage.ImageRules.Check(f); err != nil {
			return nil, err
		}
	}

	result := &UploadedImages{URLs: make([]string, 0, len(files))}
	for _, f := range files {
		stored, err := saveUpload(ctx, s.store, storage.ImageRules, contentImagesFolder, f)
		if err != nil {
			return nil, err
		}
		result.URLs = append(result.URLs, stored.URL)
	}

	s.logger.Info("Post content images uploaded", "count", len(result.URLs), "by", actor.ID)
	return result, nil
}
