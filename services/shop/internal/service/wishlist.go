package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
)

type WishlistService struct {
	Repo *repo.GormRepo
}

func (s *WishlistService) Get(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	items, err := s.Repo.GetWishlist(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(items))
	for _, it := range items {
		out = append(out, it.Product)
	}
	return out, nil
}

func (s *WishlistService) Add(ctx context.Context, userID, productID uuid.UUID) ([]models.Product, error) {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}
		return nil, err
	}
	if err := s.Repo.AddToWishlist(ctx, &models.WishlistItem{UserID: userID, ProductID: productID}); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *WishlistService) Remove(ctx context.Context, userID, productID uuid.UUID) ([]models.Product, error) {
	if err := s.Repo.RemoveFromWishlist(ctx, userID, productID); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("product %s not in wishlist: %w", productID, ErrNotFound)
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *WishlistService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.Repo.ClearWishlist(ctx, userID)
}
