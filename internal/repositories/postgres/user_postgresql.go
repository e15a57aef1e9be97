package postgres

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/darab-cement/cms-service/internal/models"
	"github.com/darab-cement/cms-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return wrapError("create user", u.db.WithContext(ctx).Create(user).Error)
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, wrapError("get user", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := u.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, wrapError("get user by email", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("external_id = ?", externalID).First(&user).Error; err != nil {
		return nil, wrapError("get user by external id", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	return wrapError("update user", u.db.WithContext(ctx).Save(user).Error)
}

func (u *UserPostgreSQL) Delete(ctx context.Context, id uint) error {
	return requireAffected("delete user", u.db.WithContext(ctx).Delete(&models.User{}, id))
}

// List returns one page of users, newest first
func (u *UserPostgreSQL) List(ctx context.Context, params models.UserListParams) ([]models.User, int64, error) {
	query := u.db.WithContext(ctx).Model(&models.User{})
	if params.Search != "" {
		pattern := containsPattern(params.Search)
		query = query.Where("email ILIKE ? OR full_name ILIKE ?", pattern, pattern)
	}
	if params.Role != "" {
		query = query.Where("role = ?", params.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapError("count users", err)
	}

	var users []models.User
	err := applyPage(query.Order("created_at DESC"), params.Page, params.Limit).Find(&users).Error
	if err != nil {
		return nil, 0, wrapError("list users", err)
	}
	return users, total, nil
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if err != nil {
		return false, wrapError("check user email", err)
	}
	return count > 0, nil
}
