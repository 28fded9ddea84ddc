package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountPercentage  DiscountType = "percentage"
	DiscountFixedAmount DiscountType = "fixed_amount"
	DiscountFreeQty     DiscountType = "free_qty"
)

type OrderStatus string

const (
	OrderPending          OrderStatus = "pending"
	OrderConfirmed        OrderStatus = "confirmed"
	OrderApproved         OrderStatus = "approved"
	OrderPicked           OrderStatus = "picked"
	OrderLoaded           OrderStatus = "loaded"
	OrderReadyForDelivery OrderStatus = "ready_for_delivery"
	OrderOutForDelivery   OrderStatus = "delivering"
	OrderDelivered        OrderStatus = "delivered"
	OrderPartial          OrderStatus = "partial"
	OrderCancelled        OrderStatus = "cancelled"
	OrderReturned         OrderStatus = "returned"
)

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderApproved, OrderPicked,
		OrderLoaded, OrderReadyForDelivery, OrderOutForDelivery,
		OrderDelivered, OrderPartial, OrderCancelled, OrderReturned:
		return true
	}
	return false
}

type Discount struct {
	ID             int64            `gorm:"primaryKey;autoIncrement"`
	TenantID       int64            `gorm:"not null;index:idx_discount_tenant_code,unique"`
	Code           string           `gorm:"type:varchar(32);not null;index:idx_discount_tenant_code,unique"`
	Name           string           `gorm:"type:varchar(128);not null"`
	Type           DiscountType     `gorm:"type:varchar(16);not null"`
	Value          decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	MinOrderAmount *decimal.Decimal `gorm:"type:decimal(18,2)"`
	MinQty         *int
	ExpiresAt      *time.Time
	Active         bool `gorm:"not null;default:true"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Expired reports whether the discount is past its expiry at the given
// instant. Discounts without an expiry never expire.
func (d Discount) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && now.After(*d.ExpiresAt)
}

type Order struct {
	ID              int64           `gorm:"primaryKey;autoIncrement"`
	TenantID        int64           `gorm:"index;not null"`
	OrderNumber     string          `gorm:"type:varchar(32);uniqueIndex;not null"`
	CustomerID      int64           `gorm:"index;not null"`
	Status          OrderStatus     `gorm:"type:varchar(24);not null;default:'pending'"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(16);not null;default:'unpaid'"`
	SubtotalAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountID      *int64
	Notes           *string `gorm:"type:text"`
	DeliveryAddress string  `gorm:"type:text;not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Items    []OrderItem `gorm:"foreignKey:OrderID"`
	Customer *Customer   `gorm:"foreignKey:CustomerID"`
	Discount *Discount   `gorm:"foreignKey:DiscountID"`
}

type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"index;not null"`
	ProductID   int64           `gorm:"not null"`
	ProductName string          `gorm:"type:varchar(128);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity    int             `gorm:"not null"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
