package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, category string, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := q.Order("created_at ASC, id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uuid.UUID) (*models.Product, error) {
	var prod models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&prod, "id = ?", id).Error; err != nil {
			return err
		}

		if req.Name != nil {
			prod.Name = *req.Name
		}
		if req.Description != nil {
			prod.Description = *req.Description
		}
		if req.Category != nil {
			prod.Category = *req.Category
		}
		if req.Price != nil {
			prod.Price = *req.Price
		}
		if req.Stock != nil {
			prod.Stock = *req.Stock
		}
		if req.Images != nil {
			prod.Images = *req.Images
		}

		return tx.Save(&prod).Error
	})
	if err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// SearchProducts is the SQL fallback used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(q) + "%"
	where := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)

	var total int64
	if err := where.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := where.Order("name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	items := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
