package postgres

import (
	"context"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

var postSortColumns = map[string]string{
	string(models.SortNewest):     "created_at DESC",
	string(models.SortOldest):     "created_at ASC",
	string(models.SortMostViewed): "views DESC, created_at DESC",
}

type PostPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewPostPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.PostRepository {
	return &PostPostgreSQL{db: db, cacheManager: cacheManager}
}

// Create inserts the post together with its attachment rows
func (p *PostPostgreSQL) Create(ctx context.Context, post *models.Post) error {
	return wrapError("create post", p.db.WithContext(ctx).Omit("Author", "Category", "Comments").Create(post).Error)
}

// GetByID retrieves a post with author, category, attachments and comments, with caching
func (p *PostPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post

	err := p.cacheManager.Post.CacheOrExecute(ctx, cache.PostKey(id), &post, func() (interface{}, error) {
		var dbPost models.Post
		err := p.db.WithContext(ctx).
			Preload("Author").
			Preload("Category").
			Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
			First(&dbPost, id).Error
		if err != nil {
			return nil, wrapError("get post", err)
		}
		return &dbPost, nil
	})
	if err != nil {
		return nil, err
	}

	return &post, nil
}

// Update saves the post columns; views and rating aggregates have their own statements
func (p *PostPostgreSQL) Update(ctx context.Context, post *models.Post) error {
	err := p.db.WithContext(ctx).
		Omit(clause.Associations, "views", "average_rating", "total_ratings", "created_at").
		Save(post).Error
	if err != nil {
		return wrapError("update post", err)
	}
	cache.InvalidatePostCache(ctx, p.cacheManager, post.ID)
	return nil
}

func (p *PostPostgreSQL) ReplaceAttachments(ctx context.Context, postID uint, attachments []models.PostAttachment) error {
	db := p.db.WithContext(ctx)
	if err := db.Where("post_id = ?", postID).Delete(&models.PostAttachment{}).Error; err != nil {
		return wrapError("delete post attachments", err)
	}
	if len(attachments) > 0 {
		for i := range attachments {
			attachments[i].ID = 0
			attachments[i].PostID = postID
		}
		if err := db.Create(&attachments).Error; err != nil {
			return wrapError("create post attachments", err)
		}
	}
	cache.InvalidatePostCache(ctx, p.cacheManager, postID)
	return nil
}

func (p *PostPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := requireAffected("delete post", p.db.WithContext(ctx).Delete(&models.Post{}, id)); err != nil {
		return err
	}
	cache.InvalidatePostCache(ctx, p.cacheManager, id)
	return nil
}

// List returns one page of posts; tags match when they overlap the post tags
func (p *PostPostgreSQL) List(ctx context.Context, params models.PostListParams) ([]models.Post, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.Post{})
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.Section != "" {
		query = query.Where("section = ?", params.Section)
	}
	if params.Title != "" {
		query = query.Where("title ILIKE ?", containsPattern(params.Title))
	}
	if len(params.Tags) > 0 {
		query = query.Where("tags && ?", pq.Array(params.Tags))
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapError("count posts", err)
	}

	var posts []models.Post
	query = applySort(query, string(params.Sort), postSortColumns)
	err := applyPage(query, params.Page, params.Limit).
		Preload("Category").
		Preload("Attachments").
		Find(&posts).Error
	if err != nil {
		return nil, 0, wrapError("list posts", err)
	}
	return posts, total, nil
}

func (p *PostPostgreSQL) IncrementViews(ctx context.Context, id uint) error {
	result := p.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if err := requireAffected("increment post views", result); err != nil {
		return err
	}
	cache.InvalidatePostCache(ctx, p.cacheManager, id)
	return nil
}

func (p *PostPostgreSQL) UpdateRating(ctx context.Context, id uint, average float64, total int) error {
	result := p.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"average_rating": average,
			"total_ratings":  total,
		})
	if err := requireAffected("update post rating", result); err != nil {
		return err
	}
	cache.InvalidatePostCache(ctx, p.cacheManager, id)
	return nil
}

type CommentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCommentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CommentRepository {
	return &CommentPostgreSQL{db: db, cacheManager: cacheManager}
}

func (c *CommentPostgreSQL) Create(ctx context.Context, comment *models.Comment) error {
	if err := c.db.WithContext(ctx).Create(comment).Error; err != nil {
		return wrapError("create comment", err)
	}
	cache.InvalidatePostCache(ctx, c.cacheManager, comment.PostID)
	return nil
}

func (c *CommentPostgreSQL) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := c.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, wrapError("list comments", err)
	}
	return comments, nil
}

func (c *CommentPostgreSQL) RatingSummary(ctx context.Context, postID uint) (float64, int64, error) {
	var row struct {
		Average float64
		Total   int64
	}
	err := c.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS total").
		Where("post_id = ? AND rating > 0", postID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, wrapError("summarize post ratings", err)
	}
	return row.Average, row.Total, nil
}
