package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/services/shop/internal/models"
)

type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

type VerifyRequest struct {
	Code string `json:"code" validate:"required"`
}

type UserDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Verified bool      `json:"verified"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserDTO   `json:"user"`
}

type RegisterResponse struct {
	User UserDTO `json:"user"`
	// Only filled in dev mode; otherwise the code travels through user_events.
	VerificationCode string `json:"verification_code,omitempty"`
}

type CreateProductRequest struct {
	Name        string          `json:"name"        validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Category    string          `json:"category"    validate:"max=100"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"       validate:"gte=0"`
	Images      []string        `json:"images"      validate:"dive,url"`
}

type PatchProductRequest struct {
	Name        *string          `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Category    *string          `json:"category"    validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"       validate:"omitempty,gte=0"`
	Images      *[]string        `json:"images"`
}

type DeleteImageRequest struct {
	Image string `json:"image" validate:"required"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}

type PageMeta struct {
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Total int64 `json:"total"`
}

type ProductPage struct {
	Data []models.Product `json:"data"`
	Meta PageMeta         `json:"meta"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,gte=1,lte=1000"`
}

type CartLine struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type CartResponse struct {
	GuestID  string     `json:"guest_id,omitempty"`
	Products []CartLine `json:"products"`
}

type MergeCartResponse struct {
	Merged int          `json:"merged"`
	Cart   CartResponse `json:"cart"`
}

type WishlistRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type WishlistResponse struct {
	Products []models.Product `json:"products"`
}

type CheckoutItem struct {
	Name     string          `json:"name"     validate:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=1"`
	Image    string          `json:"image"`
}

type CreateSessionRequest struct {
	Items      []CheckoutItem `json:"items"       validate:"required,min=1,dive"`
	SuccessURL string         `json:"success_url" validate:"omitempty,url"`
	CancelURL  string         `json:"cancel_url"  validate:"omitempty,url"`
}

type CreateSessionResponse struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}

type CreateOrderRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderStatusResponse struct {
	OrderID   uuid.UUID             `json:"order_id"`
	Status    string                `json:"status"`
	UpdatedAt time.Time             `json:"updated_at"`
	History   []models.StatusChange `json:"history"`
}

type SessionResponse struct {
	ID            uuid.UUID                `json:"id"`
	Status        string                   `json:"status"`
	PaymentStatus string                   `json:"payment_status"`
	Currency      string                   `json:"currency"`
	AmountTotal   int64                    `json:"amount_total"`
	LineItems     []models.SessionLineItem `json:"line_items"`
	URL           string                   `json:"url"`
}
