package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

type CategoryPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCategoryPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CategoryRepository {
	return &CategoryPostgreSQL{db: db, cacheManager: cacheManager}
}

func (c *CategoryPostgreSQL) Create(ctx context.Context, category *models.Category) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Create(category).Error; err != nil {
		return wrapError("create category", err)
	}
	cache.InvalidateCategoryCache(ctx, c.cacheManager)
	return nil
}

func (c *CategoryPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	err := c.cacheManager.Catalog.CacheOrExecute(ctx, cache.CategoryKey(id), &category, func() (interface{}, error) {
		return c.find(ctx, "id = ?", id)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *CategoryPostgreSQL) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := c.cacheManager.Catalog.CacheOrExecute(ctx, cache.CategorySlugKey(slug), &category, func() (interface{}, error) {
		return c.find(ctx, "slug = ?", slug)
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *CategoryPostgreSQL) find(ctx context.Context, cond string, arg interface{}) (*models.Category, error) {
	var category models.Category
	err := c.db.WithContext(ctx).
		Preload("Parent").
		Preload("Children", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where(cond, arg).
		First(&category).Error
	if err != nil {
		return nil, wrapError("get category", err)
	}
	return &category, nil
}

func (c *CategoryPostgreSQL) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := c.db.WithContext(ctx).
		Preload("Parent").
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, wrapError("list categories", err)
	}
	return categories, nil
}

func (c *CategoryPostgreSQL) Children(ctx context.Context, parentID uint) ([]models.Category, error) {
	var categories []models.Category
	err := c.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, wrapError("list child categories", err)
	}
	return categories, nil
}

func (c *CategoryPostgreSQL) Update(ctx context.Context, category *models.Category) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations, "created_at").Save(category).Error; err != nil {
		return wrapError("update category", err)
	}
	cache.InvalidateCategoryCache(ctx, c.cacheManager)
	return nil
}

// Delete sets parent_id of the children to NULL, then removes the category
func (c *CategoryPostgreSQL) Delete(ctx context.Context, id uint) error {
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Category{}).
			Where("parent_id = ?", id).
			Update("parent_id", nil).Error
		if err != nil {
			return wrapError("detach child categories", err)
		}
		return requireAffected("delete category", tx.Delete(&models.Category{}, id))
	})
	if err != nil {
		return err
	}
	cache.InvalidateCategoryCache(ctx, c.cacheManager)
	return nil
}

type ProductPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewProductPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ProductRepository {
	return &ProductPostgreSQL{db: db, cacheManager: cacheManager}
}

func (p *ProductPostgreSQL) Create(ctx context.Context, product *models.Product) error {
	return wrapError("create product", p.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error)
}

func (p *ProductPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := p.cacheManager.Catalog.CacheOrExecute(ctx, cache.ProductKey(id), &product, func() (interface{}, error) {
		var dbProduct models.Product
		if err := p.db.WithContext(ctx).Preload("Category").First(&dbProduct, id).Error; err != nil {
			return nil, wrapError("get product", err)
		}
		return &dbProduct, nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (p *ProductPostgreSQL) Update(ctx context.Context, product *models.Product) error {
	if err := p.db.WithContext(ctx).Omit(clause.Associations, "created_at").Save(product).Error; err != nil {
		return wrapError("update product", err)
	}
	cache.InvalidateProductCache(ctx, p.cacheManager, product.ID)
	return nil
}

func (p *ProductPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := requireAffected("delete product", p.db.WithContext(ctx).Delete(&models.Product{}, id)); err != nil {
		return err
	}
	cache.InvalidateProductCache(ctx, p.cacheManager, id)
	return nil
}

func (p *ProductPostgreSQL) List(ctx context.Context, params models.ProductListParams) ([]models.Product, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.Product{})
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Name != "" {
		query = query.Where("name ILIKE ?", containsPattern(params.Name))
	}
	if params.Search != "" {
		pattern := containsPattern(params.Search)
		query = query.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapError("count products", err)
	}

	var products []models.Product
	err := applyPage(query.Order("created_at DESC"), params.Page, params.Limit).
		Preload("Category").
		Find(&products).Error
	if err != nil {
		return nil, 0, wrapError("list products", err)
	}
	return products, total, nil
}
