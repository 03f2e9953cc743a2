package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShoppingCart belongs to exactly one user. Items are hard-deleted.
type ShoppingCart struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	CartItems []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID             uint `gorm:"primaryKey"`
	ShoppingCartID uint `gorm:"index;not null"`
	BookID         uint `gorm:"index;not null"`
	Book           Book
	Quantity       int `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

func ParseOrderStatus(name string) (OrderStatus, bool) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, s := range OrderStatuses {
		if string(s) == n {
			return s, true
		}
	}
	return "", false
}

// Order is immutable after placement except for Status. Item prices are
// copied from the book at placement time.
type Order struct {
	ID              uint `gorm:"primaryKey"`
	UserID          uint `gorm:"index;not null"`
	OrderItems      []OrderItem
	OrderDate       time.Time       `gorm:"not null"`
	Total           decimal.Decimal `gorm:"type:decimal(19,2);not null"`
	Status          OrderStatus     `gorm:"size:20;not null"`
	ShippingAddress string          `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID       uint            `gorm:"primaryKey"`
	OrderID  uint            `gorm:"index;not null"`
	BookID   uint            `gorm:"index;not null"`
	Quantity int             `gorm:"not null"`
	Price    decimal.Decimal `gorm:"type:decimal(19,2);not null"`
}

// Subtotal is price × quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
