package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.CheckoutSession) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) GetSession(ctx context.Context, id, userID uuid.UUID) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	if err := r.DB.WithContext(ctx).First(&s, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) MarkSessionPaid(ctx context.Context, id, userID uuid.UUID) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx).First(&s, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return err
		}
		s.Status = models.SessionStatusComplete
		s.PaymentStatus = models.PaymentStatusPaid
		return tx.Save(&s).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}
