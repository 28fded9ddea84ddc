package models

import "time"

type UserRole string

const (
	RoleCustomer  UserRole = "customer"
	RoleSales     UserRole = "sales"
	RoleWarehouse UserRole = "warehouse"
	RoleAdmin     UserRole = "admin"
)

type Tenant struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Code      string `gorm:"type:varchar(32);uniqueIndex;not null"`
	Name      string `gorm:"type:varchar(128);not null"`
	IsActive  bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	TenantID     int64  `gorm:"index;not null"`
	Username     string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Email        string `gorm:"type:varchar(128);not null"`
	PasswordHash string `gorm:"type:varchar(128);not null"`
	Role         string `gorm:"type:varchar(16);not null"`
	CustomerID   *int64 `gorm:"index"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Tenant   *Tenant   `gorm:"foreignKey:TenantID"`
	Customer *Customer `gorm:"foreignKey:CustomerID"`
}

type Customer struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	TenantID  int64   `gorm:"not null;index:idx_customer_tenant_code,unique"`
	Code      string  `gorm:"type:varchar(32);not null;index:idx_customer_tenant_code,unique"`
	Name      string  `gorm:"type:varchar(128);not null"`
	Address   *string `gorm:"type:text"`
	Phone     *string `gorm:"type:varchar(32)"`
	IsActive  bool    `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
