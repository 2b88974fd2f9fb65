package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"size:32;not null;uniqueIndex" json:"order_number"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`

	Items        []OrderItem  `json:"items"`
	ShippingInfo ShippingInfo `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_info"`
	PaymentInfo  PaymentInfo  `gorm:"embedded;embeddedPrefix:payment_" json:"payment_info"`

	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Status       OrderStatus     `gorm:"size:20;not null;index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// OrderItem keeps the unit price captured when the order was placed.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"order_id"`
	ProductID uint            `gorm:"index;not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type ShippingInfo struct {
	Name    string `gorm:"size:100" json:"name" validate:"required"`
	Email   string `gorm:"size:100" json:"email" validate:"required,email"`
	Address string `gorm:"size:255" json:"address" validate:"required"`
	City    string `gorm:"size:100" json:"city" validate:"required"`
	State   string `gorm:"size:100" json:"state" validate:"required"`
	ZipCode string `gorm:"size:20" json:"zip_code" validate:"required"`
}

// PaymentInfo is the redacted payment record. Only the last four card digits
// are kept and the CVC is always masked.
type PaymentInfo struct {
	CardLast4  string `gorm:"size:4" json:"card_number"`
	ExpiryDate string `gorm:"size:10" json:"expiry_date"`
	CVC        string `gorm:"size:3" json:"cvc"`
}
