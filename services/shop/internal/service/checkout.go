package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/shop/internal/models"
	"github.com/Skotchmaster/storefront/services/shop/internal/repo"
	"github.com/Skotchmaster/storefront/services/shop/internal/transport"
)

var hundred = decimal.NewFromInt(100)

// CheckoutService simulates the hosted payment page: it records the line
// items, prices them in cents and hands back the page URL.
type CheckoutService struct {
	Repo      *repo.GormRepo
	PublicURL string
	Currency  string
}

func (s *CheckoutService) CreateSession(ctx context.Context, userID uuid.UUID, verified bool, req transport.CreateSessionRequest) (*models.CheckoutSession, error) {
	l := logging.FromContext(ctx).With("svc", "checkout.create")

	if !verified {
		return nil, ErrNotVerified
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("items required: %w", ErrValidation)
	}

	var total decimal.Decimal
	items := make([]models.SessionLineItem, 0, len(req.Items))
	for _, it := range req.Items {
		if strings.TrimSpace(it.Name) == "" {
			return nil, fmt.Errorf("item name required: %w", ErrValidation)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("quantity must be > 0: %w", ErrValidation)
		}
		if it.Price.IsNegative() {
			return nil, fmt.Errorf("price must be >= 0: %w", ErrValidation)
		}
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		items = append(items, models.SessionLineItem{
			Name:      it.Name,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
		})
	}

	currency := s.Currency
	if currency == "" {
		currency = "usd"
	}
	sess := &models.CheckoutSession{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        models.SessionStatusOpen,
		PaymentStatus: models.PaymentStatusUnpaid,
		Currency:      currency,
		AmountTotal:   total.Mul(hundred).Round(0).IntPart(),
		LineItems:     items,
		SuccessURL:    req.SuccessURL,
		CancelURL:     req.CancelURL,
	}
	if sess.SuccessURL == "" {
		sess.SuccessURL = s.PublicURL + "/checkout/success?session_id=" + sess.ID.String()
	}
	if sess.CancelURL == "" {
		sess.CancelURL = s.PublicURL + "/checkout/cancel"
	}

	if err := s.Repo.CreateSession(ctx, sess); err != nil {
		return nil, err
	}

	l.Info("checkout_session_created", "session_id", sess.ID, "amount_total", sess.AmountTotal)
	return sess, nil
}

// PaymentURL is where the customer completes payment for the session.
func (s *CheckoutService) PaymentURL(sess *models.CheckoutSession) string {
	return s.PublicURL + "/checkout/session/" + sess.ID.String() + "/pay"
}

func (s *CheckoutService) GetSession(ctx context.Context, id, userID uuid.UUID) (*models.CheckoutSession, error) {
	sess, err := s.Repo.GetSession(ctx, id, userID)
	if notFound(err) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess, err
}

// Pay stands in for the provider confirming payment.
func (s *CheckoutService) Pay(ctx context.Context, id, userID uuid.UUID) (*models.CheckoutSession, error) {
	sess, err := s.Repo.MarkSessionPaid(ctx, id, userID)
	if notFound(err) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	return sess, err
}
