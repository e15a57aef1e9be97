package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
	"github.com/darab-cement/cms-service/internal/validator"
)

const defaultProductPageLimit = 10

type catalogService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCatalogService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CatalogService {
	return &catalogService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== CATEGORIES =====

func (s *catalogService) CreateCategory(ctx context.Context, req *models.CategoryCreateRequest, actor *models.User) (*models.Category, error) {
	if err := RequireUser(actor, "category", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.checkSlugFree(ctx, req.Slug, 0); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.GetCategory(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	}
	if err := s.repo.Category().Create(ctx, category); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("category", "name", req.Name)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", "category_id", category.ID, "slug", category.Slug)
	return category, nil
}

// checkSlugFree fails with a conflict when another category already uses slug
func (s *catalogService) checkSlugFree(ctx context.Context, slug string, selfID uint) error {
	existing, err := s.repo.Category().GetBySlug(ctx, slug)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return NewConflictError("category", "slug", slug)
		}
		return nil
	case repositories.IsNotFoundError(err):
		return nil
	default:
		return fmt.Errorf("failed to check category slug: %w", err)
	}
}

func (s *catalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.repo.Category().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *catalogService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.repo.Category().GetBySlug(ctx, slug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.Category().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *catalogService) CategoryChildren(ctx context.Context, parentID uint) ([]models.Category, error) {
	if _, err := s.GetCategory(ctx, parentID); err != nil {
		return nil, err
	}
	children, err := s.repo.Category().Children(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child categories: %w", err)
	}
	return children, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uint, req *models.CategoryUpdateRequest, actor *models.User) (*models.Category, error) {
	if err := RequireUser(actor, "category", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, ErrInvalidParent
		}
		if _, err := s.GetCategory(ctx, *req.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = req.ParentID
		category.Parent = nil
	}
	if req.Slug != nil && *req.Slug != category.Slug {
		if err := s.checkSlugFree(ctx, *req.Slug, id); err != nil {
			return nil, err
		}
		category.Slug = *req.Slug
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	category.Children = nil

	if err := s.repo.Category().Update(ctx, category); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, NewConflictError("category", "name", category.Name)
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("Category updated", "category_id", id)
	return s.GetCategory(ctx, id)
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uint, actor *models.User) error {
	if err := RequireUser(actor, "category", "delete"); err != nil {
		return err
	}
	if err := s.repo.Category().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.logger.Info("Category deleted", "category_id", id)
	return nil
}

// ===== PRODUCTS =====

func (s *catalogService) CreateProduct(ctx context.Context, req *models.ProductCreateRequest, actor *models.User) (*models.Product, error) {
	if err := RequireUser(actor, "product", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		if _, err := s.GetCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
	}

	productType := req.Type
	if productType == "" {
		productType = models.ProductCement
	}

	product := &models.Product{
		Name:           req.Name,
		Description:    req.Description,
		Type:           productType,
		Image:          req.Image,
		Features:       pq.StringArray(req.Features),
		Advantages:     pq.StringArray(req.Advantages),
		Applications:   pq.StringArray(req.Applications),
		TechnicalSpecs: pq.StringArray(req.TechnicalSpecs),
		CategoryID:     req.CategoryID,
	}
	if err := s.repo.Product().Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created", "product_id", product.ID, "type", product.Type)
	return s.GetProduct(ctx, product.ID)
}

func (s *catalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.Product().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context, params models.ProductListParams) (*models.ProductPage, error) {
	params.Page, params.Limit = normalizePage(params.Page, params.Limit, defaultProductPageLimit)

	products, total, err := s.repo.Product().List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}

	return &models.ProductPage{
		Items: products,
		Pagination: models.Pagination{
			Total: total,
			Page:  params.Page,
			Limit: params.Limit,
			Pages: models.TotalPages(total, params.Limit),
		},
	}, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint, req *models.ProductUpdateRequest, actor *models.User) (*models.Product, error) {
	if err := RequireUser(actor, "product", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if _, err := s.GetCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		product.CategoryID = req.CategoryID
		product.Category = nil
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Type != nil {
		product.Type = *req.Type
	}
	if req.Image != nil {
		product.Image = req.Image
	}
	if req.Features != nil {
		product.Features = pq.StringArray(req.Features)
	}
	if req.Advantages != nil {
		product.Advantages = pq.StringArray(req.Advantages)
	}
	if req.Applications != nil {
		product.Applications = pq.StringArray(req.Applications)
	}
	if req.TechnicalSpecs != nil {
		product.TechnicalSpecs = pq.StringArray(req.TechnicalSpecs)
	}

	if err := s.repo.Product().Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("Product updated", "product_id", id)
	return s.GetProduct(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uint, actor *models.User) error {
	if err := RequireUser(actor, "product", "delete"); err != nil {
		return err
	}
	if err := s.repo.Product().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("Product deleted", "product_id", id)
	return nil
}
