// Package model holds the storefront client's view of shop entities.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleGuest    Role = "guest"
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Verified bool   `json:"verified"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
}

// Image is the first product image or "".
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

type Cart struct {
	GuestID  string     `json:"guest_id,omitempty"`
	Products []CartLine `json:"products"`
}

func (c Cart) Empty() bool {
	return len(c.Products) == 0
}

func (c Cart) Quantity(productID string) int {
	for _, l := range c.Products {
		if l.Product.ID == productID {
			return l.Quantity
		}
	}
	return 0
}

// Units is the total number of items across lines.
func (c Cart) Units() int {
	n := 0
	for _, l := range c.Products {
		n += l.Quantity
	}
	return n
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Totals is display arithmetic only; the server prices the order.
func (c Cart) Totals(taxRate decimal.Decimal) Totals {
	var sub decimal.Decimal
	for _, l := range c.Products {
		sub = sub.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := sub.Mul(taxRate).Round(2)
	return Totals{Subtotal: sub, Tax: tax, Total: sub.Add(tax)}
}

type OrderStatus string

const (
	OrderProcessing     OrderStatus = "processing"
	OrderShipped        OrderStatus = "shipped"
	OrderOutForDelivery OrderStatus = "outForDelivery"
	OrderDelivered      OrderStatus = "delivered"
)

type StatusChange struct {
	Status OrderStatus `json:"status"`
	At     time.Time   `json:"at"`
}

type OrderItem struct {
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Order struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Status    OrderStatus     `json:"status"`
	Total     decimal.Decimal `json:"total"`
	Items     []OrderItem     `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderTracking struct {
	OrderID   string         `json:"order_id"`
	Status    OrderStatus    `json:"status"`
	UpdatedAt time.Time      `json:"updated_at"`
	History   []StatusChange `json:"history"`
}

// LineItem is what the payment collaborator charges for.
type LineItem struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

const PaymentPaid = "paid"

type SessionDetails struct {
	ID            string     `json:"id"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	Currency      string     `json:"currency"`
	AmountTotal   int64      `json:"amount_total"`
	LineItems     []LineItem `json:"line_items"`
	URL           string     `json:"url"`
}

func (s SessionDetails) Paid() bool {
	return s.PaymentStatus == PaymentPaid
}
