package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, owner string) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("owner = ?", owner).
		Order("created_at ASC, id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart increments the line when the product is already in the cart and
// creates it otherwise.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return addTx(tx, item)
	})
}

// addTx upserts on (owner, product_id) so concurrent adds of a new product
// sum instead of racing to a unique violation.
func addTx(tx *gorm.DB, item *models.CartItem) error {
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
		}),
	}).Create(item).Error
	if err != nil {
		return err
	}
	var stored models.CartItem
	if err := tx.Where("owner = ? AND product_id = ?", item.Owner, item.ProductID).First(&stored).Error; err != nil {
		return err
	}
	*item = stored
	return nil
}

func (r *GormRepo) IncreaseOne(ctx context.Context, owner string, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("owner = ? AND product_id = ?", owner, productID).
			Update("quantity", gorm.Expr("quantity + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("owner = ? AND product_id = ?", owner, productID).First(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DecreaseOne removes one unit; the row is deleted instead of reaching zero.
func (r *GormRepo) DecreaseOne(ctx context.Context, owner string, productID uuid.UUID) (bool, *models.CartItem, error) {
	var item models.CartItem
	deleted := false

	if err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx).Where("owner = ? AND product_id = ?", owner, productID).First(&item).Error; err != nil {
			return err
		}
		if item.Quantity > 1 {
			if err := tx.Model(&item).Update("quantity", gorm.Expr("quantity - 1")).Error; err != nil {
				return err
			}
			return tx.Where("owner = ? AND product_id = ?", owner, productID).First(&item).Error
		}
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	}); err != nil {
		return false, nil, err
	}
	return deleted, &item, nil
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, owner string, productID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("owner = ? AND product_id = ?", owner, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, owner string) error {
	return r.DB.WithContext(ctx).Where("owner = ?", owner).Delete(&models.CartItem{}).Error
}

// MergeCarts moves every line of from into to, summing quantities of products
// present in both, and leaves from empty.
func (r *GormRepo) MergeCarts(ctx context.Context, from, to string) (int, error) {
	moved := 0
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var src []models.CartItem
		if err := lockRow(tx).Where("owner = ?", from).Find(&src).Error; err != nil {
			return err
		}
		for _, line := range src {
			item := models.CartItem{Owner: to, ProductID: line.ProductID, Quantity: line.Quantity}
			if err := addTx(tx, &item); err != nil {
				return err
			}
			moved++
		}
		return tx.Where("owner = ?", from).Delete(&models.CartItem{}).Error
	})
	return moved, err
}

// lockRow adds FOR UPDATE on dialects that support it.
func lockRow(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
