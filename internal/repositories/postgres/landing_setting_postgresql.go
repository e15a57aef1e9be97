package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/darab-cement/cms-service/internal/cache"
	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

type LandingSettingPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewLandingSettingPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.LandingSettingRepository {
	return &LandingSettingPostgreSQL{db: db, cacheManager: cacheManager}
}

func (l *LandingSettingPostgreSQL) Create(ctx context.Context, setting *models.LandingSetting) error {
	if err := l.db.WithContext(ctx).Create(setting).Error; err != nil {
		return wrapError("create landing setting", err)
	}
	cache.InvalidateSettingCache(ctx, l.cacheManager, setting.Key)
	return nil
}

func (l *LandingSettingPostgreSQL) GetByID(ctx context.Context, id uint) (*models.LandingSetting, error) {
	var setting models.LandingSetting
	if err := l.db.WithContext(ctx).First(&setting, id).Error; err != nil {
		return nil, wrapError("get landing setting", err)
	}
	return &setting, nil
}

// GetByKey serves the public landing page, so it goes through the cache
func (l *LandingSettingPostgreSQL) GetByKey(ctx context.Context, key string) (*models.LandingSetting, error) {
	var setting models.LandingSetting
	err := l.cacheManager.Setting.CacheOrExecute(ctx, cache.SettingKey(key), &setting, func() (interface{}, error) {
		var dbSetting models.LandingSetting
		if err := l.db.WithContext(ctx).Where("key = ?", key).First(&dbSetting).Error; err != nil {
			return nil, wrapError("get landing setting by key", err)
		}
		return &dbSetting, nil
	})
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (l *LandingSettingPostgreSQL) List(ctx context.Context) ([]models.LandingSetting, error) {
	var settings []models.LandingSetting
	if err := l.db.WithContext(ctx).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, wrapError("list landing settings", err)
	}
	return settings, nil
}

// Update saves the setting; every cached key is dropped since the key itself may have changed
func (l *LandingSettingPostgreSQL) Update(ctx context.Context, setting *models.LandingSetting) error {
	if err := l.db.WithContext(ctx).Omit("created_at").Save(setting).Error; err != nil {
		return wrapError("update landing setting", err)
	}
	cache.SafeInvalidatePattern(ctx, l.cacheManager.Setting, "key:*")
	return nil
}

func (l *LandingSettingPostgreSQL) Delete(ctx context.Context, id uint) error {
	if err := requireAffected("delete landing setting", l.db.WithContext(ctx).Delete(&models.LandingSetting{}, id)); err != nil {
		return err
	}
	cache.SafeInvalidatePattern(ctx, l.cacheManager.Setting, "key:*")
	return nil
}
