package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *GormRepo) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"verified": true, "verification_code": ""}).Error
}
