package models

import "time"

type POStatus string

const (
	PODraft           POStatus = "draft"
	POOrdered         POStatus = "ordered"
	POPartialReceived POStatus = "partial_received"
	POReceived        POStatus = "received"
	POCancelled       POStatus = "cancelled"
)

type PurchaseOrder struct {
	ID           int64    `gorm:"primaryKey;autoIncrement"`
	TenantID     int64    `gorm:"not null;index:idx_po_tenant_number,unique"`
	PONumber     string   `gorm:"type:varchar(32);not null;index:idx_po_tenant_number,unique"`
	SupplierName string   `gorm:"type:varchar(128);not null"`
	Status       POStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	Notes        *string  `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Lines []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID"`
}

type PurchaseOrderLine struct {
	ID              int64 `gorm:"primaryKey;autoIncrement"`
	PurchaseOrderID int64 `gorm:"index;not null"`
	ProductID       int64 `gorm:"not null"`
	QtyOrdered      int   `gorm:"not null"`
	QtyReceived     int   `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// OverReceived reports whether more units were received than ordered.
// Over-receipt is flagged, never blocked.
func (l PurchaseOrderLine) OverReceived() bool {
	return l.QtyReceived > l.QtyOrdered
}

// DerivePOStatus computes the PO-level receiving status from its lines.
// Draft and cancelled orders keep their status until explicitly moved.
func DerivePOStatus(lines []PurchaseOrderLine) POStatus {
	totalReceived := 0
	allFull := len(lines) > 0
	for _, l := range lines {
		totalReceived += l.QtyReceived
		if l.QtyReceived < l.QtyOrdered {
			allFull = false
		}
	}
	switch {
	case totalReceived == 0:
		return POOrdered
	case allFull:
		return POReceived
	default:
		return POPartialReceived
	}
}
