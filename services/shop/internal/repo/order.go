package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// CreateOrderOnce returns the existing order for the session if there is one.
func (r *GormRepo) CreateOrderOnce(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	created := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		err := tx.Preload("Items").First(&existing, "session_id = ?", order.SessionID).Error
		if err == nil {
			*order = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return order, created, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
			return err
		}
		if !models.CanTransition(order.Status, status) {
			return ErrInvalidTransition
		}
		order.Status = status
		order.History = append(order.History, models.StatusChange{Status: status, At: time.Now().UTC()})
		return tx.Omit("Items").Save(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
