package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/events"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// CreateFromSession turns a paid checkout session into an order. Calling it
// twice for the same session returns the first order.
func (s *OrderService) CreateFromSession(ctx context.Context, userID, sessionID uuid.UUID) (*models.Order, bool, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	sess, err := s.Repo.GetSession(ctx, sessionID, userID)
	if err != nil {
		if notFound(err) {
			return nil, false, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
		}
		return nil, false, err
	}
	if sess.PaymentStatus != models.PaymentStatusPaid {
		return nil, false, fmt.Errorf("payment not completed: %w", ErrValidation)
	}
	if len(sess.LineItems) == 0 {
		return nil, false, fmt.Errorf("items required: %w", ErrValidation)
	}

	var total decimal.Decimal
	items := make([]models.OrderItem, 0, len(sess.LineItems))
	for _, it := range sess.LineItems {
		lineTotal := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, models.OrderItem{
			Name:      it.Name,
			Image:     it.Image,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			LineTotal: lineTotal,
		})
	}

	order := &models.Order{
		UserID:    userID,
		SessionID: sessionID,
		Status:    models.OrderStatusProcessing,
		Total:     total,
		Items:     items,
		History:   []models.StatusChange{{Status: models.OrderStatusProcessing, At: time.Now().UTC()}},
	}

	order, created, err := s.Repo.CreateOrderOnce(ctx, order)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.publish(ctx, "order_created", order)
		l.Info("order_created", "order_id", order.ID, "total", order.Total.StringFixed(2))
	}
	return order, created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if notFound(err) {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if !isAdmin && order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown status %q: %w", status, ErrValidation)
	}
	order, err := s.Repo.UpdateOrderStatus(ctx, id, status)
	switch {
	case notFound(err):
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	case errors.Is(err, repo.ErrInvalidTransition):
		return nil, fmt.Errorf("cannot move order to %s: %w", status, ErrConflict)
	case err != nil:
		return nil, err
	}

	s.publish(ctx, "order_status_changed", order)
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, o *models.Order) {
	if err := s.Events.Publish(ctx, events.TopicOrder, o.ID.String(), events.OrderEvent{
		Type:    eventType,
		OrderID: o.ID.String(),
		UserID:  o.UserID.String(),
		Status:  o.Status,
		Total:   o.Total.StringFixed(2),
	}); err != nil {
		logging.FromContext(ctx).Warn("publish_error", "topic", events.TopicOrder, "error", err)
	}
}
