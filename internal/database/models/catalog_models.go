package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	TenantID  int64           `gorm:"not null;index:idx_product_tenant_sku,unique"`
	SKU       string          `gorm:"type:varchar(64);not null;index:idx_product_tenant_sku,unique"`
	Barcode   *string         `gorm:"type:varchar(64);index"`
	Name      string          `gorm:"type:varchar(128);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsActive  bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Stock *Stock `gorm:"foreignKey:ProductID"`
}

type Stock struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	TenantID  int64 `gorm:"not null;index:idx_stock_tenant_product,unique"`
	ProductID int64 `gorm:"not null;index:idx_stock_tenant_product,unique"`
	Quantity  int   `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
