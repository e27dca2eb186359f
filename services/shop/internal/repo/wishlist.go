package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
)

func (r *GormRepo) GetWishlist(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	items := make([]models.WishlistItem, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist is idempotent per (user, product).
func (r *GormRepo) AddToWishlist(ctx context.Context, item *models.WishlistItem) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(item).Error
}

func (r *GormRepo) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearWishlist(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.WishlistItem{}).Error
}
