package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	Username         string    `gorm:"uniqueIndex;not null"      json:"username"`
	PasswordHash     string    `gorm:"not null"                  json:"-"`
	Role             string    `gorm:"not null;default:customer" json:"role"`
	Verified         bool      `gorm:"not null;default:false"    json:"verified"`
	VerificationCode string    `gorm:"size:16"                   json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"              json:"id"`
	Name        string          `gorm:"not null;index"                    json:"name"`
	Description string          `gorm:"not null;default:''"               json:"description"`
	Category    string          `gorm:"index"                             json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null"       json:"price"`
	Stock       int             `gorm:"not null;default:0;check:stock>=0" json:"stock"`
	Images      []string        `gorm:"serializer:json;type:text"         json:"images"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CartItem rows belong either to a user ("user:<id>") or to a guest
// ("guest:<id>"); see OwnerKey.
type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                  json:"id"`
	Owner     string    `gorm:"uniqueIndex:idx_owner_product;not null" json:"owner"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_owner_product;not null" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	Quantity  int       `gorm:"not null;default:1;check:quantity>0"   json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}

func UserOwner(userID uuid.UUID) string { return "user:" + userID.String() }
func GuestOwner(guestID string) string  { return "guest:" + guestID }

type WishlistItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"                     json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wish_user_product;not null" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_wish_user_product;not null" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"

	PaymentStatusUnpaid = "unpaid"
	PaymentStatusPaid   = "paid"
)

type SessionLineItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

// CheckoutSession is the simulated payment-provider session.
type CheckoutSession struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"    json:"id"`
	UserID        uuid.UUID         `gorm:"type:uuid;index;not null" json:"user_id"`
	Status        string            `gorm:"not null"                json:"status"`
	PaymentStatus string            `gorm:"not null"                json:"payment_status"`
	Currency      string            `gorm:"not null;default:usd"    json:"currency"`
	AmountTotal   int64             `gorm:"not null"                json:"amount_total"`
	LineItems     []SessionLineItem `gorm:"serializer:json;type:text" json:"line_items"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	CreatedAt     time.Time         `json:"created_at"`
}

func (s *CheckoutSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

const (
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusOutForDelivery = "outForDelivery"
	OrderStatusDelivered      = "delivered"
)

var orderFlow = []string{
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

func statusIndex(s string) int {
	for i, v := range orderFlow {
		if v == s {
			return i
		}
	}
	return -1
}

func ValidOrderStatus(s string) bool {
	return statusIndex(s) >= 0
}

// CanTransition allows exactly one step forward in the delivery flow.
func CanTransition(from, to string) bool {
	i, j := statusIndex(from), statusIndex(to)
	return i >= 0 && j == i+1
}

type StatusChange struct {
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type Order struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"         json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;index;not null"     json:"user_id"`
	SessionID uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"session_id"`
	Status    string          `gorm:"not null"                     json:"status"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null"  json:"total"`
	Items     []OrderItem     `gorm:"constraint:OnDelete:CASCADE"  json:"items"`
	History   []StatusChange  `gorm:"serializer:json;type:text"    json:"history"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"        json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"    json:"order_id"`
	Name      string          `gorm:"not null"                    json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Quantity  int             `gorm:"not null;check:quantity>0"   json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func All() []any {
	return []any{
		&User{},
		&Product{},
		&CartItem{},
		&WishlistItem{},
		&CheckoutSession{},
		&Order{},
		&OrderItem{},
	}
}
