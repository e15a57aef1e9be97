package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

type MediaPostgreSQL struct {
	db *gorm.DB
}

func NewMediaPostgreSQL(db *gorm.DB) repositories.MediaRepository {
	return &MediaPostgreSQL{db: db}
}

func (m *MediaPostgreSQL) Create(ctx context.Context, media *models.Media) error {
	return wrapError("create media", m.db.WithContext(ctx).Create(media).Error)
}

func (m *MediaPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Media, error) {
	var media models.Media
	if err := m.db.WithContext(ctx).First(&media, id).Error; err != nil {
		return nil, wrapError("get media", err)
	}
	return &media, nil
}

func (m *MediaPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected("delete media", m.db.WithContext(ctx).Delete(&models.Media{}, id))
}

func (m *MediaPostgreSQL) List(ctx context.Context, params models.MediaListParams) ([]models.Media, int64, error) {
	query := m.db.WithContext(ctx).Model(&models.Media{})
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapError("count media", err)
	}

	var items []models.Media
	err := applyPage(query.Order("created_at DESC"), params.Page, params.Limit).Find(&items).Error
	if err != nil {
		return nil, 0, wrapError("list media", err)
	}
	return items, total, nil
}

type PersonnelPostgreSQL struct {
	db *gorm.DB
}

func NewPersonnelPostgreSQL(db *gorm.DB) repositories.PersonnelRepository {
	return &PersonnelPostgreSQL{db: db}
}

func (p *PersonnelPostgreSQL) Create(ctx context.Context, person *models.Personnel) error {
	return wrapError("create personnel", p.db.WithContext(ctx).Create(person).Error)
}

func (p *PersonnelPostgreSQL) GetByID(ctx context.Context, id string) (*models.Personnel, error) {
	var person models.Personnel
	if err := p.db.WithContext(ctx).Where("id = ?", id).First(&person).Error; err != nil {
		return nil, wrapError("get personnel", err)
	}
	return &person, nil
}

func (p *PersonnelPostgreSQL) Update(ctx context.Context, person *models.Personnel) error {
	return wrapError("update personnel", p.db.WithContext(ctx).Omit("created_at").Save(person).Error)
}

func (p *PersonnelPostgreSQL) Delete(ctx context.Context, id string) error {
	return requireAffected("delete personnel", p.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Personnel{}))
}

// List filters by type, name and position; search matches any of name, position, education or workplace
func (p *PersonnelPostgreSQL) List(ctx context.Context, params models.PersonnelListParams) ([]models.Personnel, int64, error) {
	query := p.db.WithContext(ctx).Model(&models.Personnel{})
	if params.Type != "" {
		query = query.Where("type = ?", params.Type)
	}
	if params.Name != "" {
		query = query.Where("name ILIKE ?", containsPattern(params.Name))
	}
	if params.Position != "" {
		query = query.Where("position ILIKE ?", containsPattern(params.Position))
	}
	if params.Search != "" {
		pattern := containsPattern(params.Search)
		query = query.Where("name ILIKE ? OR position ILIKE ? OR education ILIKE ? OR workplace ILIKE ?",
			pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapError("count personnel", err)
	}

	var people []models.Personnel
	err := applyPage(query.Order("created_at DESC"), params.Page, params.Limit).Find(&people).Error
	if err != nil {
		return nil, 0, wrapError("list personnel", err)
	}
	return people, total, nil
}
