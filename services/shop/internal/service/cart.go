package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/events"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CartService) GetCart(ctx context.Context, owner string) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, owner)
}

func (s *CartService) AddToCart(ctx context.Context, owner string, productID uuid.UUID, quantity int) ([]models.CartItem, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id must be set: %w", ErrValidation)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be more than zero: %w", ErrValidation)
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	item := &models.CartItem{Owner: owner, ProductID: productID, Quantity: quantity}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}

	s.publish(ctx, "cart_item_added", owner, productID, item.Quantity)
	return s.Repo.GetCart(ctx, owner)
}

func (s *CartService) Increase(ctx context.Context, owner string, productID uuid.UUID) ([]models.CartItem, error) {
	item, err := s.Repo.IncreaseOne(ctx, owner, productID)
	if notFound(err) {
		return nil, fmt.Errorf("product %s not in cart: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "cart_item_increased", owner, productID, item.Quantity)
	return s.Repo.GetCart(ctx, owner)
}

// Decrease removes one unit and drops the line when it was the last one.
func (s *CartService) Decrease(ctx context.Context, owner string, productID uuid.UUID) ([]models.CartItem, error) {
	deleted, item, err := s.Repo.DecreaseOne(ctx, owner, productID)
	if notFound(err) {
		return nil, fmt.Errorf("product %s not in cart: %w", productID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if deleted {
		s.publish(ctx, "cart_item_removed", owner, productID, 0)
	} else {
		s.publish(ctx, "cart_item_decreased", owner, productID, item.Quantity)
	}
	return s.Repo.GetCart(ctx, owner)
}

func (s *CartService) Remove(ctx context.Context, owner string, productID uuid.UUID) ([]models.CartItem, error) {
	if err := s.Repo.RemoveFromCart(ctx, owner, productID); err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("product %s not in cart: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	s.publish(ctx, "cart_item_removed", owner, productID, 0)
	return s.Repo.GetCart(ctx, owner)
}

func (s *CartService) Clear(ctx context.Context, owner string) error {
	if err := s.Repo.ClearCart(ctx, owner); err != nil {
		return err
	}
	s.publish(ctx, "cart_cleared", owner, uuid.Nil, 0)
	return nil
}

// Merge folds the guest cart into the user's cart, summing quantities of
// products present in both.
func (s *CartService) Merge(ctx context.Context, guestID string, userID uuid.UUID) (int, []models.CartItem, error) {
	if guestID == "" {
		return 0, nil, fmt.Errorf("guest id required: %w", ErrValidation)
	}
	to := models.UserOwner(userID)
	moved, err := s.Repo.MergeCarts(ctx, models.GuestOwner(guestID), to)
	if err != nil {
		return 0, nil, err
	}
	if moved > 0 {
		s.publish(ctx, "cart_merged", to, uuid.Nil, moved)
	}
	items, err := s.Repo.GetCart(ctx, to)
	return moved, items, err
}

func (s *CartService) publish(ctx context.Context, eventType, owner string, productID uuid.UUID, qty int) {
	ev := events.CartEvent{Type: eventType, Owner: owner, Quantity: qty}
	if productID != uuid.Nil {
		ev.ProductID = productID.String()
	}
	if err := s.Events.Publish(ctx, events.TopicCart, owner, ev); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "topic", events.TopicCart, "error", err)
	}
}
